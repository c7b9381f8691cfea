package pg

import (
	"context"
	"fmt"

	"trade_engine/internal/models"
	"trade_engine/pkg/db"
)

// Candles implement store.CandleStore
type Candles struct {
	tx db.TxManager
}

func NewCandles(tx db.TxManager) *Candles {
	return &Candles{tx: tx}
}

func (c *Candles) History(ctx context.Context, instrument, period string, from int64, limit int) (candles []models.Candle, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("Candles.History: %w", err)
		}
	}()

	rows, err := c.tx.Conn().Query(ctx, `
		SELECT instrument, period, bar_time, open, high, low, close,
			volume, vol_currency, vol_currency_quote, completed
		FROM candle
		WHERE instrument = $1 AND period = $2 AND bar_time <= $3
		ORDER BY bar_time DESC LIMIT $4`,
		instrument, period, from, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var candle models.Candle
		if err = rows.Scan(
			&candle.Instrument, &candle.Period, &candle.BarTime, &candle.Open, &candle.High,
			&candle.Low, &candle.Close, &candle.Volume, &candle.VolCurrency,
			&candle.VolCurrencyQuote, &candle.Completed,
		); err != nil {
			return nil, err
		}
		candles = append(candles, candle)
	}
	return candles, rows.Err()
}

func (c *Candles) Insert(ctx context.Context, candles []models.Candle) (affected int64, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("Candles.Insert: %w", err)
		}
	}()

	for _, candle := range candles {
		tag, err := c.tx.Conn().Exec(ctx, `
			INSERT INTO candle (instrument, period, bar_time, open, high, low, close,
				volume, vol_currency, vol_currency_quote, completed)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
			ON CONFLICT (instrument, period, bar_time) DO NOTHING`,
			candle.Instrument, candle.Period, candle.BarTime, candle.Open, candle.High,
			candle.Low, candle.Close, candle.Volume, candle.VolCurrency,
			candle.VolCurrencyQuote, candle.Completed)
		if err != nil {
			return affected, err
		}
		affected += tag.RowsAffected()
	}
	return affected, nil
}

func (c *Candles) Update(ctx context.Context, candle models.Candle) (affected int64, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("Candles.Update: %w", err)
		}
	}()

	tag, err := c.tx.Conn().Exec(ctx, `
		UPDATE candle SET open = $4, high = $5, low = $6, close = $7,
			volume = $8, vol_currency = $9, vol_currency_quote = $10, completed = $11
		WHERE instrument = $1 AND period = $2 AND bar_time = $3`,
		candle.Instrument, candle.Period, candle.BarTime, candle.Open, candle.High,
		candle.Low, candle.Close, candle.Volume, candle.VolCurrency,
		candle.VolCurrencyQuote, candle.Completed)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

package pg

import (
	"context"
	"fmt"

	"trade_engine/internal/models"
	"trade_engine/pkg/db"

	"github.com/jackc/pgx/v5"
)

// Positions implement store.PositionStore
type Positions struct {
	tx db.TxManager
}

func NewPositions(tx db.TxManager) *Positions {
	return &Positions{tx: tx}
}

const positionColumns = `instrument_position, instrument, symbol, position, account,
	status, auto_status, leverage, timeframe`

func (p *Positions) scanOne(row pgx.Row) (*models.InstrumentPosition, error) {
	var pos models.InstrumentPosition
	if err := row.Scan(
		&pos.ID, &pos.Instrument, &pos.Symbol, &pos.Position, &pos.Account,
		&pos.Status, &pos.AutoStatus, &pos.Leverage, &pos.Timeframe,
	); err != nil {
		return nil, err
	}
	return &pos, nil
}

func (p *Positions) Fetch(ctx context.Context, id string) (pos *models.InstrumentPosition, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("Positions.Fetch: %w", err)
		}
	}()

	return p.scanOne(p.tx.Conn().QueryRow(ctx,
		`SELECT `+positionColumns+` FROM instrument_position WHERE instrument_position = $1`, id))
}

func (p *Positions) FetchBySymbol(ctx context.Context, account, symbol string) (pos *models.InstrumentPosition, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("Positions.FetchBySymbol: %w", err)
		}
	}()

	return p.scanOne(p.tx.Conn().QueryRow(ctx,
		`SELECT `+positionColumns+` FROM instrument_position WHERE account = $1 AND symbol = $2`,
		account, symbol))
}

func (p *Positions) FetchOpen(ctx context.Context, account string) (positions []models.InstrumentPosition, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("Positions.FetchOpen: %w", err)
		}
	}()

	rows, err := p.tx.Conn().Query(ctx,
		`SELECT `+positionColumns+` FROM instrument_position WHERE account = $1 AND status = 'Open'`,
		account)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		pos, err := p.scanOne(rows)
		if err != nil {
			return nil, err
		}
		positions = append(positions, *pos)
	}
	return positions, rows.Err()
}

// Provision — идемпотентная заготовка строки из seed'а; живые поля
// (status) конфликтом не трогаются.
func (p *Positions) Provision(ctx context.Context, pos models.InstrumentPosition) (affected int64, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("Positions.Provision: %w", err)
		}
	}()

	tag, err := p.tx.Conn().Exec(ctx, `
		INSERT INTO instrument_position (instrument_position, instrument, symbol, position,
			account, status, auto_status, leverage, timeframe)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (instrument_position) DO UPDATE SET
			auto_status = EXCLUDED.auto_status,
			leverage    = EXCLUDED.leverage,
			timeframe   = EXCLUDED.timeframe`,
		pos.ID, pos.Instrument, pos.Symbol, pos.Position, pos.Account,
		pos.Status, pos.AutoStatus, pos.Leverage, pos.Timeframe)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (p *Positions) Close(ctx context.Context, ids []string) (affected int64, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("Positions.Close: %w", err)
		}
	}()

	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := p.tx.Conn().Exec(ctx,
		`UPDATE instrument_position SET status = 'Closed', update_time = now()
		 WHERE instrument_position = ANY($1) AND status = 'Open'`, ids)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

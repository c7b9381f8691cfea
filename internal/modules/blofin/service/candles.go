package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"trade_engine/internal/models"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

// CandleQuery — параметры выборки свечей.
type CandleQuery struct {
	InstID string
	Bar    string // "1m", "15m", "1h" ...
	Limit  int
	After  int64 // unix ms; 0 — без пагинации
	Before int64
}

// Candles тянет OHLCV-бары; биржа отдаёт их массивами строк по убыванию ts.
func (c *Client) Candles(ctx context.Context, q CandleQuery) ([]models.Candle, error) {
	path := fmt.Sprintf("/api/v1/market/candles?instId=%s&bar=%s&limit=%d",
		url.QueryEscape(q.InstID), url.QueryEscape(q.Bar), q.Limit)
	if q.After > 0 {
		path += "&after=" + strconv.FormatInt(q.After, 10)
	}
	if q.Before > 0 {
		path += "&before=" + strconv.FormatInt(q.Before, 10)
	}

	data, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var env candlesEnvelope
	if err := sonic.Unmarshal(data, &env); err != nil {
		return nil, errors.Wrap(err, "decode candles")
	}
	if env.Code != "0" {
		return nil, errors.Errorf("candles rejected: code=%s msg=%s", env.Code, env.Msg)
	}

	candles := make([]models.Candle, 0, len(env.Data))
	for _, field := range env.Data {
		if len(field) < 9 {
			continue
		}
		ts, _ := strconv.ParseInt(field[0], 10, 64)
		open, _ := strconv.ParseFloat(field[1], 64)
		high, _ := strconv.ParseFloat(field[2], 64)
		low, _ := strconv.ParseFloat(field[3], 64)
		closePx, _ := strconv.ParseFloat(field[4], 64)
		vol, _ := strconv.ParseFloat(field[5], 64)
		volCcy, _ := strconv.ParseFloat(field[6], 64)
		volCcyQuote, _ := strconv.ParseFloat(field[7], 64)

		candles = append(candles, models.Candle{
			BarTime:          ts,
			Open:             open,
			High:             high,
			Low:              low,
			Close:            closePx,
			Volume:           vol,
			VolCurrency:      volCcy,
			VolCurrencyQuote: volCcyQuote,
			Completed:        field[8] == "1",
		})
	}
	return candles, nil
}

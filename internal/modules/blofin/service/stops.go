package service

import (
	"context"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

// SubmitStops ставит TP/SL; эндпоинт одиночный, поэтому шлём по одному,
// но наружу отдаём тот же пер-элементный срез Result.
func (c *Client) SubmitStops(ctx context.Context, requests []StopOrderRequest) ([]Result, error) {
	results := make([]Result, 0, len(requests))

	for _, request := range requests {
		payload, err := sonic.Marshal(request)
		if err != nil {
			return nil, errors.Wrap(err, "marshal tpsl")
		}

		data, err := c.do(ctx, http.MethodPost, "/api/v1/trade/order-tpsl", payload)
		if err != nil {
			// сетевой сбой по одному стопу не роняет остальные
			results = append(results, Result{
				Code:          "-1",
				Msg:           err.Error(),
				ClientOrderID: request.ClientOrderID,
			})
			continue
		}

		var env struct {
			Code string `json:"code"`
			Msg  string `json:"msg"`
			Data Result `json:"data"`
		}
		if err := sonic.Unmarshal(data, &env); err != nil {
			return nil, errors.Wrap(err, "decode order-tpsl")
		}

		result := env.Data
		if result.Code == "" {
			result.Code = env.Code
		}
		if result.Msg == "" {
			result.Msg = env.Msg
		}
		if result.ClientOrderID == "" {
			result.ClientOrderID = request.ClientOrderID
		}
		results = append(results, result)
	}

	return results, nil
}

// CancelStops отменяет TP/SL батчем.
func (c *Client) CancelStops(ctx context.Context, requests []CancelStopRequest) ([]Result, error) {
	if len(requests) == 0 {
		return nil, nil
	}
	return c.batch(ctx, "/api/v1/trade/cancel-tpsl", requests)
}

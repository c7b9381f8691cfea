package service

import (
	"context"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

// SetLeverage синхронизирует плечо; биржа не примет ордер с чужим плечом,
// поэтому хендлер Queued вызывает это до сабмита.
func (c *Client) SetLeverage(ctx context.Context, request LeverageRequest) error {
	payload, err := sonic.Marshal(request)
	if err != nil {
		return errors.Wrap(err, "marshal leverage")
	}

	data, err := c.do(ctx, http.MethodPost, "/api/v1/account/set-leverage", payload)
	if err != nil {
		return err
	}

	var env envelope
	if err := sonic.Unmarshal(data, &env); err != nil {
		return errors.Wrap(err, "decode set-leverage")
	}
	if env.Code != "0" {
		return errors.Errorf("set-leverage rejected: code=%s msg=%s", env.Code, env.Msg)
	}
	return nil
}

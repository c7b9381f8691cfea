package service

import (
	"context"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

// Positions — снапшот живых позиций; авторитетный источник для сверки
// локальных Open/Closed.
func (c *Client) Positions(ctx context.Context) ([]Position, error) {
	data, err := c.do(ctx, http.MethodGet, "/api/v1/account/positions", nil)
	if err != nil {
		return nil, err
	}

	var env positionsEnvelope
	if err := sonic.Unmarshal(data, &env); err != nil {
		return nil, errors.Wrap(err, "decode positions")
	}
	if env.Code != "0" {
		return nil, errors.Errorf("positions rejected: code=%s msg=%s", env.Code, env.Msg)
	}
	return env.Data, nil
}

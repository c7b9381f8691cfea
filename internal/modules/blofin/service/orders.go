package service

import (
	"context"
)

// SubmitOrders отправляет батч ордеров; accept/reject решается по каждому
// элементу ответа, один отказ не блокирует соседей.
func (c *Client) SubmitOrders(ctx context.Context, requests []OrderRequest) ([]Result, error) {
	if len(requests) == 0 {
		return nil, nil
	}
	return c.batch(ctx, "/api/v1/trade/batch-orders", requests)
}

// CancelOrders отправляет батч отмен.
func (c *Client) CancelOrders(ctx context.Context, requests []CancelRequest) ([]Result, error) {
	if len(requests) == 0 {
		return nil, nil
	}
	return c.batch(ctx, "/api/v1/trade/cancel-batch-orders", requests)
}

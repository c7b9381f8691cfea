package engine

import (
	"context"
	"fmt"

	"trade_engine/internal/models"
	blofin "trade_engine/internal/modules/blofin/service"
	"trade_engine/pkg/logger"
)

// Canceled доводит отменённые запросы до подтверждения биржей. Строки, чья
// позиция уже закрыта или которые не дошли до биржи, закрываются локально —
// cancel несуществующего ордера дал бы только мусорные ошибки.
func (e *Engine) Canceled(ctx context.Context) []Outcome {
	const op = "Requests.Canceled"

	orders, err := e.requests.Fetch(ctx, e.account, models.StatusCanceled)
	if err != nil {
		logger.Error("%s: fetch failed: %v", op, err)
		return []Outcome{{Context: op, State: "error", Success: false, Count: 1}}
	}
	if len(orders) == 0 {
		return nil
	}
	logger.Info("-> %s: Processing %d canceled orders", op, len(orders))

	open, err := e.openPositionKeys(ctx)
	if err != nil {
		logger.Error("%s: open positions: %v", op, err)
		return []Outcome{{Context: op, State: "error", Success: false, Count: 1}}
	}

	var cancel []models.Request
	var closed, errors int
	for _, order := range orders {
		positionOpen := open[positionKey{order.Symbol, order.PositionSide}]
		if order.OrderID == "" || !positionOpen {
			order.Status = models.StatusClosed
			order.Memo = "[Info] Requests.Canceled: position closed; local state Closed"
			if _, err := e.requests.Submit(ctx, order); err != nil {
				logger.Error("%s: close %s: %v", op, order.ID, err)
				errors++
				continue
			}
			closed++
			continue
		}
		cancel = append(cancel, order)
	}

	var confirmed, rejected int
	if len(cancel) > 0 {
		batch := make([]blofin.CancelRequest, 0, len(cancel))
		byClientID := make(map[string]models.Request, len(cancel))
		for _, order := range cancel {
			byClientID[order.ID] = order
			batch = append(batch, blofin.CancelRequest{
				InstID:        order.Symbol,
				OrderID:       order.OrderID,
				ClientOrderID: order.ID,
			})
		}

		results, err := e.exchange.CancelOrders(ctx, batch)
		if err != nil {
			logger.Error("%s: cancel batch failed: %v", op, err)
			return []Outcome{
				{Context: op, State: "closed", Success: true, Count: closed},
				{Context: op, State: "error", Success: false, Count: len(batch) + errors},
			}
		}

		for _, result := range results {
			order, ok := byClientID[result.ClientOrderID]
			if !ok {
				errors++
				continue
			}
			if !result.Ok() {
				// Останется Canceled без подтверждения — ретрай следующим циклом
				logger.Warn("%s: cancel rejected for %s: [%s] %s", op, order.ID, result.Code, result.Msg)
				rejected++
				continue
			}
			order.Status = models.StatusClosed
			order.Memo = fmt.Sprintf("[%s]: cancel confirmed; %s", result.Code, result.Msg)
			if _, err := e.requests.Submit(ctx, order); err != nil {
				logger.Error("%s: close %s: %v", op, order.ID, err)
				errors++
				continue
			}
			confirmed++
		}
	}

	return []Outcome{
		{Context: op, State: "closed", Success: true, Count: closed + confirmed},
		{Context: op, State: "rejected", Success: false, Count: rejected},
		{Context: op, State: "error", Success: false, Count: errors},
	}
}

type positionKey struct{ symbol, position string }

// openPositionKeys — локальный снапшот открытых позиций аккаунта.
func (e *Engine) openPositionKeys(ctx context.Context) (map[positionKey]bool, error) {
	positions, err := e.positions.FetchOpen(ctx, e.account)
	if err != nil {
		return nil, err
	}
	open := make(map[positionKey]bool, len(positions))
	for _, pos := range positions {
		open[positionKey{pos.Symbol, pos.Position}] = true
	}
	return open, nil
}

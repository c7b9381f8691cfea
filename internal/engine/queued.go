package engine

import (
	"context"
	"fmt"

	"trade_engine/internal/models"
	blofin "trade_engine/internal/modules/blofin/service"
	"trade_engine/pkg/logger"
)

// Queued сабмитит свежесозданные запросы на биржу. Просроченные строки
// экспайрятся локально, без сетевого вызова. Перед сабмитом по каждой
// уникальной паре инструмент/позиция синхронизируется плечо: биржа не
// примет ордер с несовпадающим плечом.
func (e *Engine) Queued(ctx context.Context) []Outcome {
	const op = "Requests.Queued"

	requests, err := e.requests.Fetch(ctx, e.account, models.StatusQueued)
	if err != nil {
		logger.Error("%s: fetch failed: %v", op, err)
		return []Outcome{{Context: op, State: "error", Success: false, Count: 1}}
	}
	if len(requests) == 0 {
		return nil
	}
	logger.Info("-> %s: Processing %d queued requests", op, len(requests))

	now := e.now()
	var queue []models.Request
	var expired, errors int

	for _, request := range requests {
		if request.Expired(now) {
			request.Status = models.StatusExpired
			request.Memo = "[Expired]: Queued request changed to Expired"
			if _, err := e.requests.Submit(ctx, request); err != nil {
				logger.Error("%s: expire %s: %v", op, request.ID, err)
				errors++
				continue
			}
			expired++
			continue
		}
		queue = append(queue, request)
	}

	// Плечо — до сабмита, по одному разу на инструмент/позицию
	type leverageKey struct{ symbol, position string }
	synced := make(map[leverageKey]bool)
	for _, request := range queue {
		key := leverageKey{request.Symbol, request.PositionSide}
		if synced[key] {
			continue
		}
		if err := e.exchange.SetLeverage(ctx, blofin.LeverageRequest{
			InstID:       request.Symbol,
			Leverage:     request.Leverage,
			MarginMode:   request.MarginMode,
			PositionSide: request.PositionSide,
		}); err != nil {
			logger.Warn("%s: leverage sync %s/%s: %v", op, request.Symbol, request.PositionSide, err)
		}
		synced[key] = true
	}

	if len(queue) == 0 {
		return []Outcome{
			{Context: op, State: "expired", Success: true, Count: expired},
			{Context: op, State: "error", Success: false, Count: errors},
		}
	}

	batch := make([]blofin.OrderRequest, 0, len(queue))
	byClientID := make(map[string]models.Request, len(queue))
	for _, request := range queue {
		byClientID[request.ID] = request
		batch = append(batch, blofin.OrderRequest{
			InstID:        request.Symbol,
			MarginMode:    request.MarginMode,
			PositionSide:  request.PositionSide,
			Side:          request.Side,
			OrderType:     request.OrderType,
			Price:         request.Price,
			Size:          request.Size,
			ReduceOnly:    boolString(request.ReduceOnly),
			ClientOrderID: request.ID,
		})
	}

	results, err := e.exchange.SubmitOrders(ctx, batch)
	if err != nil {
		logger.Error("%s: batch submit failed: %v", op, err)
		return []Outcome{
			{Context: op, State: "expired", Success: true, Count: expired},
			{Context: op, State: "error", Success: false, Count: len(batch) + errors},
		}
	}

	// Accept/reject решается по каждому элементу: один отказ не блокирует соседей
	var submitted, rejected int
	for _, result := range results {
		request, ok := byClientID[result.ClientOrderID]
		if !ok {
			logger.Warn("%s: unknown clientOrderId in response: %s", op, result.ClientOrderID)
			errors++
			continue
		}
		if result.Ok() {
			request.Status = models.StatusPending
			request.OrderID = result.OrderID
			request.Memo = fmt.Sprintf("[%s]: %s; %s", result.Code, result.Msg, result.OrderID)
			submitted++
		} else {
			request.Status = models.StatusRejected
			request.Memo = fmt.Sprintf("[%s]: %s", result.Code, result.Msg)
			rejected++
		}
		if _, err := e.requests.Submit(ctx, request); err != nil {
			logger.Error("%s: update %s: %v", op, request.ID, err)
			errors++
		}
	}

	return []Outcome{
		{Context: op, State: "submitted", Success: true, Count: submitted},
		{Context: op, State: "rejected", Success: false, Count: rejected},
		{Context: op, State: "expired", Success: true, Count: expired},
		{Context: op, State: "error", Success: false, Count: errors},
	}
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

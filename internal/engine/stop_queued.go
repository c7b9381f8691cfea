package engine

import (
	"context"
	"fmt"

	"trade_engine/internal/models"
	blofin "trade_engine/internal/modules/blofin/service"
	"trade_engine/pkg/logger"
)

// StopQueued сабмитит TP/SL на биржу. Гейт: позиция должна быть Open;
// очередь на закрытой позиции — зомби, закрываем локально без сети.
func (e *Engine) StopQueued(ctx context.Context) []Outcome {
	const op = "Stops.Queued"

	stops, err := e.stops.Fetch(ctx, e.account, models.StatusQueued)
	if err != nil {
		logger.Error("%s: fetch failed: %v", op, err)
		return []Outcome{{Context: op, State: "error", Success: false, Count: 1}}
	}
	if len(stops) == 0 {
		return nil
	}
	logger.Info("-> %s: Processing %d stop requests", op, len(stops))

	var queue []models.StopRequest
	var closed, errors int
	for _, stop := range stops {
		if stop.PositionStatus != models.PositionOpen {
			stop.Status = models.StatusClosed
			stop.Memo = "[Info]: Queued request on closed position; local state Closed"
			if _, err := e.stops.Submit(ctx, stop); err != nil {
				logger.Error("%s: close %s: %v", op, stop.ID, err)
				errors++
				continue
			}
			closed++
			continue
		}
		queue = append(queue, stop)
	}

	batch := make([]blofin.StopOrderRequest, 0, len(queue))
	byClientID := make(map[string]models.StopRequest, len(queue))
	for _, stop := range queue {
		byClientID[stop.ID] = stop
		order := blofin.StopOrderRequest{
			InstID:        stop.Symbol,
			MarginMode:    stop.MarginMode,
			PositionSide:  stop.PositionSide,
			Side:          stop.Side,
			Size:          stop.Size,
			ClientOrderID: stop.ID,
			ReduceOnly:    boolString(stop.ReduceOnly),
		}
		switch stop.StopType {
		case models.StopTakeProfit:
			order.TpTriggerPrice = stop.TriggerPrice
			order.TpOrderPrice = stop.OrderPrice
		case models.StopLoss:
			order.SlTriggerPrice = stop.TriggerPrice
			order.SlOrderPrice = stop.OrderPrice
		}
		batch = append(batch, order)
	}

	var submitted, rejected int
	if len(batch) > 0 {
		results, err := e.exchange.SubmitStops(ctx, batch)
		if err != nil {
			logger.Error("%s: submit failed: %v", op, err)
			return []Outcome{
				{Context: op, State: "closed", Success: true, Count: closed},
				{Context: op, State: "error", Success: false, Count: len(batch) + errors},
			}
		}

		for _, result := range results {
			stop, ok := byClientID[result.ClientOrderID]
			if !ok {
				logger.Warn("%s: unknown clientOrderId in response: %s", op, result.ClientOrderID)
				errors++
				continue
			}
			if result.Ok() {
				stop.Status = models.StatusPending
				stop.TpslID = result.TpslID
				stop.Memo = fmt.Sprintf("[%s]: %s; %s", result.Code, result.Msg, result.TpslID)
				submitted++
			} else {
				stop.Status = models.StatusRejected
				stop.Memo = fmt.Sprintf("[%s]: %s", result.Code, result.Msg)
				rejected++
			}
			if _, err := e.stops.Submit(ctx, stop); err != nil {
				logger.Error("%s: update %s: %v", op, stop.ID, err)
				errors++
			}
		}
	}

	return []Outcome{
		{Context: op, State: "submitted", Success: true, Count: submitted},
		{Context: op, State: "rejected", Success: false, Count: rejected},
		{Context: op, State: "closed", Success: true, Count: closed},
		{Context: op, State: "error", Success: false, Count: errors},
	}
}

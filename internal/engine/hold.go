package engine

import (
	"context"
	"fmt"

	"trade_engine/internal/models"
	blofin "trade_engine/internal/modules/blofin/service"
	"trade_engine/pkg/logger"
)

// Hold — cancel-then-resubmit для отредактированных запросов. Отмена обязана
// пройти через биржу; при отказе отмены строка остаётся в Hold до следующего
// цикла (at-least-once, идемпотентно за счёт стабильного ID). Ресабмит идёт
// условным апдейтом по ревизии: гонка с restart-веткой Watchdog'а
// разрешается fencing-токеном, проигравшая запись не проходит.
func (e *Engine) Hold(ctx context.Context) []Outcome {
	const op = "Requests.Hold"

	holds, err := e.requests.Fetch(ctx, e.account, models.StatusHold)
	if err != nil {
		logger.Error("%s: fetch failed: %v", op, err)
		return []Outcome{{Context: op, State: "error", Success: false, Count: 1}}
	}
	if len(holds) == 0 {
		return nil
	}
	logger.Info("-> %s: Processing %d hold orders", op, len(holds))

	// Строки без биржевого ордера отменять нечего — сразу в очередь
	var cancel []models.Request
	var requeued, held, stale, errors int
	for _, hold := range holds {
		if hold.OrderID == "" {
			hold.Status = models.StatusQueued
			hold.Memo = "[Info] Requests.Hold: Hold request without live order requeued"
			rows, err := e.requests.SubmitFenced(ctx, hold, hold.Revision)
			switch {
			case err != nil:
				logger.Error("%s: requeue %s: %v", op, hold.ID, err)
				errors++
			case rows == 0:
				stale++
			default:
				requeued++
			}
			continue
		}
		cancel = append(cancel, hold)
	}

	if len(cancel) > 0 {
		batch := make([]blofin.CancelRequest, 0, len(cancel))
		byClientID := make(map[string]models.Request, len(cancel))
		for _, hold := range cancel {
			byClientID[hold.ID] = hold
			batch = append(batch, blofin.CancelRequest{
				InstID:        hold.Symbol,
				OrderID:       hold.OrderID,
				ClientOrderID: hold.ID,
			})
		}

		results, err := e.exchange.CancelOrders(ctx, batch)
		if err != nil {
			logger.Error("%s: cancel batch failed: %v", op, err)
			return []Outcome{
				{Context: op, State: "requeued", Success: true, Count: requeued},
				{Context: op, State: "stale", Success: false, Count: stale},
				{Context: op, State: "error", Success: false, Count: len(batch) + errors},
			}
		}

		for _, result := range results {
			hold, ok := byClientID[result.ClientOrderID]
			if !ok {
				errors++
				continue
			}
			if !result.Ok() {
				// Отмена не прошла — оставляем Hold, попробуем в следующем цикле
				logger.Warn("%s: cancel rejected for %s: [%s] %s", op, hold.ID, result.Code, result.Msg)
				held++
				continue
			}

			hold.Status = models.StatusQueued
			hold.Memo = fmt.Sprintf("[Info] Requests.Hold: Hold request successfully resubmitted; cancel [%s]", result.Code)
			rows, err := e.requests.SubmitFenced(ctx, hold, hold.Revision)
			switch {
			case err != nil:
				logger.Error("%s: resubmit %s: %v", op, hold.ID, err)
				errors++
			case rows == 0:
				// Кто-то успел сдвинуть ревизию — нашу запись молча роняем
				stale++
			default:
				requeued++
			}
		}
	}

	return []Outcome{
		{Context: op, State: "requeued", Success: true, Count: requeued},
		{Context: op, State: "hold", Success: false, Count: held},
		{Context: op, State: "stale", Success: false, Count: stale},
		{Context: op, State: "error", Success: false, Count: errors},
	}
}

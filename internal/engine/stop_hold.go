package engine

import (
	"context"
	"fmt"

	"trade_engine/internal/models"
	blofin "trade_engine/internal/modules/blofin/service"
	"trade_engine/pkg/logger"
)

// StopHold — cancel-then-resubmit для отредактированных стопов. Стоп без
// tpslId отменять нечего — сразу в очередь; живой стоп сперва отменяется на
// бирже, при отказе остаётся Hold до следующего цикла.
func (e *Engine) StopHold(ctx context.Context) []Outcome {
	const op = "Stops.Hold"

	holds, err := e.stops.Fetch(ctx, e.account, models.StatusHold)
	if err != nil {
		logger.Error("%s: fetch failed: %v", op, err)
		return []Outcome{{Context: op, State: "error", Success: false, Count: 1}}
	}
	if len(holds) == 0 {
		return nil
	}
	logger.Info("-> %s: Processing %d hold stops", op, len(holds))

	var cancel []models.StopRequest
	var requeued, held, closed, errors int
	for _, hold := range holds {
		if hold.PositionStatus != models.PositionOpen {
			hold.Status = models.StatusClosed
			hold.Memo = "[Info] Stops.Hold: Hold request on closed position; state changed to Closed"
			if _, err := e.stops.Submit(ctx, hold); err != nil {
				logger.Error("%s: close %s: %v", op, hold.ID, err)
				errors++
				continue
			}
			closed++
			continue
		}
		if hold.TpslID == "" {
			hold.Status = models.StatusQueued
			hold.Memo = "[Info] Stops.Hold: Hold request without live order requeued"
			if _, err := e.stops.Submit(ctx, hold); err != nil {
				logger.Error("%s: requeue %s: %v", op, hold.ID, err)
				errors++
				continue
			}
			requeued++
			continue
		}
		cancel = append(cancel, hold)
	}

	if len(cancel) > 0 {
		batch := make([]blofin.CancelStopRequest, 0, len(cancel))
		byClientID := make(map[string]models.StopRequest, len(cancel))
		for _, hold := range cancel {
			byClientID[hold.ID] = hold
			batch = append(batch, blofin.CancelStopRequest{
				InstID:        hold.Symbol,
				TpslID:        hold.TpslID,
				ClientOrderID: hold.ID,
			})
		}

		results, err := e.exchange.CancelStops(ctx, batch)
		if err != nil {
			logger.Error("%s: cancel batch failed: %v", op, err)
			return []Outcome{
				{Context: op, State: "requeued", Success: true, Count: requeued},
				{Context: op, State: "closed", Success: true, Count: closed},
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
				logger.Warn("%s: cancel rejected for %s: [%s] %s", op, hold.ID, result.Code, result.Msg)
				held++
				continue
			}

			hold.Status = models.StatusQueued
			hold.TpslID = ""
			hold.Memo = fmt.Sprintf("[Info] Stops.Hold: Request successfully resubmitted; cancel [%s]", result.Code)
			if _, err := e.stops.Submit(ctx, hold); err != nil {
				logger.Error("%s: resubmit %s: %v", op, hold.ID, err)
				errors++
				continue
			}
			requeued++
		}
	}

	return []Outcome{
		{Context: op, State: "requeued", Success: true, Count: requeued},
		{Context: op, State: "hold", Success: false, Count: held},
		{Context: op, State: "closed", Success: true, Count: closed},
		{Context: op, State: "error", Success: false, Count: errors},
	}
}

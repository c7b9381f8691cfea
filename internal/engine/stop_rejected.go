package engine

import (
	"context"

	"trade_engine/internal/models"
	"trade_engine/pkg/logger"
)

// StopRejected возвращает отклонённые стопы в очередь, пока позиция открыта.
// Реджект на закрытой позиции ретраить бессмысленно — закрываем.
func (e *Engine) StopRejected(ctx context.Context) []Outcome {
	const op = "Stops.Rejected"

	stops, err := e.stops.Fetch(ctx, e.account, models.StatusRejected)
	if err != nil {
		logger.Error("%s: fetch failed: %v", op, err)
		return []Outcome{{Context: op, State: "error", Success: false, Count: 1}}
	}
	if len(stops) == 0 {
		return nil
	}
	logger.Info("-> %s: Processing %d rejected stops", op, len(stops))

	var requeued, closed, errors int
	for _, stop := range stops {
		if stop.PositionStatus == models.PositionOpen {
			stop.Status = models.StatusQueued
			stop.Memo = "[Retry]: Rejected request state changed to Queued and resubmitted"
			if _, err := e.stops.Submit(ctx, stop); err != nil {
				logger.Error("%s: requeue %s: %v", op, stop.ID, err)
				errors++
				continue
			}
			requeued++
			continue
		}

		stop.Status = models.StatusClosed
		stop.Memo = "[Retry]: Rejected request on closed position; state changed to Closed"
		if _, err := e.stops.Submit(ctx, stop); err != nil {
			logger.Error("%s: close %s: %v", op, stop.ID, err)
			errors++
			continue
		}
		closed++
	}

	return []Outcome{
		{Context: op, State: "requeued", Success: true, Count: requeued},
		{Context: op, State: "closed", Success: true, Count: closed},
		{Context: op, State: "error", Success: false, Count: errors},
	}
}

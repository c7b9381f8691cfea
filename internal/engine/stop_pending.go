package engine

import (
	"context"

	"trade_engine/internal/models"
	"trade_engine/pkg/logger"
)

// StopPending верифицирует висящие стопы. У стопа нет собственного expiry —
// его жизнь привязана к позиции: позиция закрылась, стоп уходит в Expired.
func (e *Engine) StopPending(ctx context.Context) []Outcome {
	const op = "Stops.Pending"

	stops, err := e.stops.Fetch(ctx, e.account, models.StatusPending)
	if err != nil {
		logger.Error("%s: fetch failed: %v", op, err)
		return []Outcome{{Context: op, State: "error", Success: false, Count: 1}}
	}
	if len(stops) == 0 {
		return nil
	}
	logger.Info("-> %s: Processing %d pending stops", op, len(stops))

	var verified, expired, errors int
	for _, stop := range stops {
		if stop.PositionStatus == models.PositionOpen {
			if _, err := e.stops.Submit(ctx, stop); err != nil {
				logger.Error("%s: verify %s: %v", op, stop.ID, err)
				errors++
				continue
			}
			verified++
			continue
		}

		stop.Status = models.StatusExpired
		stop.Memo = "[Expired]: Pending order state changed to Expired"
		if _, err := e.stops.Submit(ctx, stop); err != nil {
			logger.Error("%s: expire %s: %v", op, stop.ID, err)
			errors++
			continue
		}
		expired++
	}

	return []Outcome{
		{Context: op, State: "pending", Success: true, Count: verified},
		{Context: op, State: "expired", Success: true, Count: expired},
		{Context: op, State: "error", Success: false, Count: errors},
	}
}

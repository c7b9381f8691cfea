package engine

import (
	"context"

	"trade_engine/internal/models"
	"trade_engine/pkg/logger"
)

// Rejected возвращает отклонённые запросы в очередь, пока не вышло expiry.
// Кэпа на ретраи нет: границей служит только expiry_time, после него строка
// уходит в Expired и больше не крутится.
func (e *Engine) Rejected(ctx context.Context) []Outcome {
	const op = "Requests.Rejected"

	rejects, err := e.requests.Fetch(ctx, e.account, models.StatusRejected)
	if err != nil {
		logger.Error("%s: fetch failed: %v", op, err)
		return []Outcome{{Context: op, State: "error", Success: false, Count: 1}}
	}
	if len(rejects) == 0 {
		return nil
	}
	logger.Info("-> %s: Processing %d rejected orders", op, len(rejects))

	now := e.now()
	var requeued, expired, errors int
	for _, reject := range rejects {
		if reject.Expired(now) {
			reject.Status = models.StatusExpired
			reject.Memo = "[Expired]: Queued and Rejected request changed to Expired"
			if _, err := e.requests.Submit(ctx, reject); err != nil {
				logger.Error("%s: expire %s: %v", op, reject.ID, err)
				errors++
				continue
			}
			expired++
			continue
		}

		reject.Status = models.StatusQueued
		reject.Memo = "[Retry]: Rejected request state changed to Queued and resubmitted"
		if _, err := e.requests.Submit(ctx, reject); err != nil {
			logger.Error("%s: requeue %s: %v", op, reject.ID, err)
			errors++
			continue
		}
		requeued++
	}

	return []Outcome{
		{Context: op, State: "requeued", Success: true, Count: requeued},
		{Context: op, State: "expired", Success: true, Count: expired},
		{Context: op, State: "error", Success: false, Count: errors},
	}
}

package engine

import (
	"context"

	"trade_engine/internal/models"
	blofin "trade_engine/internal/modules/blofin/service"
	"trade_engine/pkg/logger"
)

// Pending закрывает висящие за expiry ордера. Живые строки верифицируются
// (touch update_time), просроченные получают Cancel на бирже и помечаются
// Expired независимо от исхода отмены: идемпотентный expiry побеждает
// латентность cancel'а.
func (e *Engine) Pending(ctx context.Context) []Outcome {
	const op = "Requests.Pending"

	requests, err := e.requests.Fetch(ctx, e.account, models.StatusPending)
	if err != nil {
		logger.Error("%s: fetch failed: %v", op, err)
		return []Outcome{{Context: op, State: "error", Success: false, Count: 1}}
	}
	if len(requests) == 0 {
		return nil
	}
	logger.Info("-> %s: Processing %d pending orders", op, len(requests))

	now := e.now()
	var verify, expire []models.Request
	for _, request := range requests {
		if request.Expired(now) {
			expire = append(expire, request)
		} else {
			verify = append(verify, request)
		}
	}

	var verified, expired, errors int
	for _, request := range verify {
		if _, err := e.requests.Submit(ctx, request); err != nil {
			logger.Error("%s: verify %s: %v", op, request.ID, err)
			errors++
			continue
		}
		verified++
	}

	if len(expire) > 0 {
		cancels := make([]blofin.CancelRequest, 0, len(expire))
		for _, request := range expire {
			cancels = append(cancels, blofin.CancelRequest{
				InstID:        request.Symbol,
				OrderID:       request.OrderID,
				ClientOrderID: request.ID,
			})
		}
		if _, err := e.exchange.CancelOrders(ctx, cancels); err != nil {
			// Expiry всё равно побеждает: строка будет Expired, отмена
			// доиграет на стороне биржи или повторится следующим циклом.
			logger.Warn("%s: cancel batch failed: %v", op, err)
		}

		for _, request := range expire {
			request.Status = models.StatusExpired
			request.Memo = "[Expired]: Pending order changed to Expired"
			if _, err := e.requests.Submit(ctx, request); err != nil {
				logger.Error("%s: expire %s: %v", op, request.ID, err)
				errors++
				continue
			}
			expired++
		}
	}

	return []Outcome{
		{Context: op, State: "pending", Success: true, Count: verified},
		{Context: op, State: "expired", Success: true, Count: expired},
		{Context: op, State: "error", Success: false, Count: errors},
	}
}

package engine

import (
	"context"
	"fmt"

	"trade_engine/internal/models"
	blofin "trade_engine/internal/modules/blofin/service"
	"trade_engine/pkg/logger"
)

// StopCanceled подтверждает отмену стопов на бирже. Стопы, не дошедшие до
// биржи, закрываются локально.
func (e *Engine) StopCanceled(ctx context.Context) []Outcome {
	const op = "Stops.Canceled"

	stops, err := e.stops.Fetch(ctx, e.account, models.StatusCanceled)
	if err != nil {
		logger.Error("%s: fetch failed: %v", op, err)
		return []Outcome{{Context: op, State: "error", Success: false, Count: 1}}
	}
	if len(stops) == 0 {
		return nil
	}
	logger.Info("-> %s: Processing %d canceled stops", op, len(stops))

	var cancel []models.StopRequest
	var closed, errors int
	for _, stop := range stops {
		if stop.TpslID == "" {
			stop.Status = models.StatusClosed
			stop.Memo = "[Info] Stops.Canceled: no live order; local state Closed"
			if _, err := e.stops.Submit(ctx, stop); err != nil {
				logger.Error("%s: close %s: %v", op, stop.ID, err)
				errors++
				continue
			}
			closed++
			continue
		}
		cancel = append(cancel, stop)
	}

	var confirmed, rejected int
	if len(cancel) > 0 {
		batch := make([]blofin.CancelStopRequest, 0, len(cancel))
		byClientID := make(map[string]models.StopRequest, len(cancel))
		for _, stop := range cancel {
			byClientID[stop.ID] = stop
			batch = append(batch, blofin.CancelStopRequest{
				InstID:        stop.Symbol,
				TpslID:        stop.TpslID,
				ClientOrderID: stop.ID,
			})
		}

		results, err := e.exchange.CancelStops(ctx, batch)
		if err != nil {
			logger.Error("%s: cancel batch failed: %v", op, err)
			return []Outcome{
				{Context: op, State: "closed", Success: true, Count: closed},
				{Context: op, State: "error", Success: false, Count: len(batch) + errors},
			}
		}

		for _, result := range results {
			stop, ok := byClientID[result.ClientOrderID]
			if !ok {
				errors++
				continue
			}
			if !result.Ok() {
				logger.Warn("%s: cancel rejected for %s: [%s] %s", op, stop.ID, result.Code, result.Msg)
				rejected++
				continue
			}
			stop.Status = models.StatusClosed
			stop.Memo = fmt.Sprintf("[%s]: cancel confirmed; %s", result.Code, result.Msg)
			if _, err := e.stops.Submit(ctx, stop); err != nil {
				logger.Error("%s: close %s: %v", op, stop.ID, err)
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

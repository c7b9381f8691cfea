package engine

import (
	"context"

	"github.com/opentracing/opentracing-go"

	"trade_engine/pkg/logger"
)

// Trades — один цикл сверки аккаунта. Порядок фиксирован и важен:
// сперва импорт позиций (биржа — источник правды), затем хендлеры
// запросов и стопов от чувствительных к expiry к наименее срочным.
// Цикл никогда не возвращает ошибку: всё складывается в Summary.
func (e *Engine) Trades(ctx context.Context) *Summary {
	span, ctx := opentracing.StartSpanFromContext(ctx, "engine.trades")
	defer span.Finish()

	summary := NewSummary()
	summary.Add(e.importPositions(ctx)...)

	summary.Add(e.Queued(ctx)...)
	summary.Add(e.Pending(ctx)...)
	summary.Add(e.Rejected(ctx)...)
	summary.Add(e.Hold(ctx)...)
	summary.Add(e.Canceled(ctx)...)

	summary.Add(e.StopQueued(ctx)...)
	summary.Add(e.StopPending(ctx)...)
	summary.Add(e.StopRejected(ctx)...)
	summary.Add(e.StopHold(ctx)...)
	summary.Add(e.StopCanceled(ctx)...)

	span.SetTag("outcomes", summary.Total())
	span.SetTag("failures", summary.Failures())
	if summary.Failures() > 0 {
		logger.Warn("Trades cycle completed with failures: %s", summary)
	} else {
		logger.Info("Trades cycle: %s", summary)
	}
	return summary
}

// importPositions сверяет локальные открытые позиции со снапшотом биржи.
// Локально Open, на бирже отсутствует — закрываем: намерение не пережило
// реальность.
func (e *Engine) importPositions(ctx context.Context) []Outcome {
	const op = "Positions.Import"

	snapshot, err := e.exchange.Positions(ctx)
	if err != nil {
		logger.Error("%s: exchange snapshot: %v", op, err)
		return []Outcome{{Context: op, State: "error", Success: false, Count: 1}}
	}

	live := make(map[positionKey]bool, len(snapshot))
	for _, pos := range snapshot {
		live[positionKey{pos.InstID, pos.PositionSide}] = true
	}

	local, err := e.positions.FetchOpen(ctx, e.account)
	if err != nil {
		logger.Error("%s: local positions: %v", op, err)
		return []Outcome{{Context: op, State: "error", Success: false, Count: 1}}
	}

	var stale []string
	for _, pos := range local {
		if !live[positionKey{pos.Symbol, pos.Position}] {
			stale = append(stale, pos.ID)
		}
	}
	if len(stale) == 0 {
		return []Outcome{{Context: op, State: "synced", Success: true, Count: len(local)}}
	}

	closed, err := e.positions.Close(ctx, stale)
	if err != nil {
		logger.Error("%s: close stale: %v", op, err)
		return []Outcome{{Context: op, State: "error", Success: false, Count: 1}}
	}
	logger.Info("-> %s: closed %d stale positions", op, closed)

	return []Outcome{
		{Context: op, State: "synced", Success: true, Count: len(local) - int(closed)},
		{Context: op, State: "closed", Success: true, Count: int(closed)},
	}
}

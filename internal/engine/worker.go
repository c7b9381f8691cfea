package engine

import (
	"context"
	"time"

	"trade_engine/internal/candles"
	"trade_engine/pkg/logger"
)

// Cycler — то, что контроллер дёргает каждый heartbeat.
type Cycler interface {
	Trades(ctx context.Context) *Summary
}

// Connectivity — гейт связности: без живого WSS не торгуем.
type Connectivity interface {
	Connected() bool
}

// CandleSync — сверка свечей инструмента перед торговым циклом.
type CandleSync interface {
	Sync(ctx context.Context, instrument, period string) (candles.Diff, error)
}

// Worker — heartbeat одного инструмента. Single-flight: семафор ёмкости 1,
// занято — пропускаем тик с предупреждением о лаге, никаких перекрытий циклов.
type Worker struct {
	symbol    string
	timeframe string
	conn      Connectivity
	cycler    Cycler
	syncer    CandleSync // nil — воркер без свечной сверки
	interval  time.Duration

	busy chan struct{}
}

func NewWorker(symbol, timeframe string, conn Connectivity, cycler Cycler, syncer CandleSync, interval time.Duration) *Worker {
	return &Worker{
		symbol:    symbol,
		timeframe: timeframe,
		conn:      conn,
		cycler:    cycler,
		syncer:    syncer,
		interval:  interval,
		busy:      make(chan struct{}, 1),
	}
}

// Tick — один heartbeat; true, если цикл действительно прошёл.
func (w *Worker) Tick(ctx context.Context) bool {
	if !w.conn.Connected() {
		return false
	}

	select {
	case w.busy <- struct{}{}:
	default:
		logger.Warn("[Controller] Lag detected for %s. Previous cycle still active. Skipping heartbeat.", w.symbol)
		return false
	}
	defer func() { <-w.busy }()

	// Свечи перед торговым циклом: решения принимаются на свежей истории
	if w.syncer != nil && w.timeframe != "" {
		if _, err := w.syncer.Sync(ctx, w.symbol, w.timeframe); err != nil {
			logger.Warn("[Controller] %s candle sync failed: %v", w.symbol, err)
		}
	}

	w.cycler.Trades(ctx)
	return true
}

// Run — цикл heartbeat'ов до отмены ctx.
func (w *Worker) Run(ctx context.Context) {
	logger.Info("[Controller] %s heartbeat started: %s", w.symbol, w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("[Controller] %s heartbeat stopped", w.symbol)
			return
		case <-ticker.C:
			w.Tick(ctx)
		}
	}
}

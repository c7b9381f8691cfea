package engine

import (
	"context"
	"time"

	"trade_engine/internal/notify"
	"trade_engine/pkg/logger"
)

// Master — глобальная сверка всего аккаунта, тот же single-flight что у
// Worker'а, но свой семафор и свой ритм: глобальный цикл не должен
// блокироваться лагом отдельного инструмента.
type Master struct {
	conn     Connectivity
	cycler   Cycler
	notifier notify.Notifier
	interval time.Duration

	busy chan struct{}
}

func NewMaster(conn Connectivity, cycler Cycler, notifier notify.Notifier, interval time.Duration) *Master {
	return &Master{
		conn:     conn,
		cycler:   cycler,
		notifier: notifier,
		interval: interval,
		busy:     make(chan struct{}, 1),
	}
}

func (m *Master) Tick(ctx context.Context) bool {
	if !m.conn.Connected() {
		return false
	}

	select {
	case m.busy <- struct{}{}:
	default:
		logger.Warn("[Master] Lag detected. Previous cycle still active. Skipping heartbeat.")
		return false
	}
	defer func() { <-m.busy }()

	summary := m.cycler.Trades(ctx)
	if summary.Failures() > 0 {
		m.notifier.Sendf("⚠️ reconciliation failures: %s", summary)
	}
	return true
}

func (m *Master) Run(ctx context.Context) {
	logger.Info("[Master] Reconciling all instruments every %s", m.interval)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("[Master] stopped")
			return
		case <-ticker.C:
			m.Tick(ctx)
		}
	}
}

package engine

import (
	"context"
	"time"

	"trade_engine/internal/models"
	"trade_engine/internal/notify"
	"trade_engine/internal/store"
	"trade_engine/pkg/logger"
)

// Watchdog сводит intent (job_control.command) с реальностью
// (Manager.IsActive). Команда сбрасывается в none сразу после диспатча
// независимо от исхода: at-most-once, без double-fire на медленном старте.
type Watchdog struct {
	jobs      store.JobStore
	positions store.PositionStore
	manager   *Manager
	notifier  notify.Notifier
	account   string
	interval  time.Duration
}

func NewWatchdog(jobs store.JobStore, positions store.PositionStore, manager *Manager, notifier notify.Notifier, account string, interval time.Duration) *Watchdog {
	return &Watchdog{
		jobs:      jobs,
		positions: positions,
		manager:   manager,
		notifier:  notifier,
		account:   account,
		interval:  interval,
	}
}

// Tick — один проход по строкам с command <> none.
func (w *Watchdog) Tick(ctx context.Context) {
	jobs, err := w.jobs.FetchCommands(ctx, w.account)
	if err != nil {
		logger.Error("[Watchdog] fetch commands: %v", err)
		return
	}

	for _, job := range jobs {
		if job.Symbol == "" {
			continue
		}
		w.dispatch(ctx, job)

		if _, err := w.jobs.ClearCommand(ctx, job.InstrumentPosition); err != nil {
			logger.Error("[Watchdog] clear command %s: %v", job.InstrumentPosition, err)
		}
	}
}

func (w *Watchdog) dispatch(ctx context.Context, job models.JobControl) {
	running := w.manager.IsActive(job.Symbol)

	switch {
	case job.Command == models.CommandStart && !running:
		w.start(ctx, job)
	case job.Command == models.CommandStop && running:
		if w.manager.Stop(job.Symbol) {
			w.notifier.Sendf("⏹ worker %s stopped", job.Symbol)
		}
	case job.Command == models.CommandRestart:
		// restart = stop, затем start в одном диспатче
		if running {
			w.manager.Stop(job.Symbol)
		}
		w.start(ctx, job)
	}
}

func (w *Watchdog) start(ctx context.Context, job models.JobControl) {
	pos, err := w.positions.Fetch(ctx, job.InstrumentPosition)
	if err != nil {
		logger.Error("[Watchdog] fetch position %s: %v", job.InstrumentPosition, err)
		return
	}
	if pos == nil {
		logger.Warn("[Watchdog] start %s: instrument position not found", job.InstrumentPosition)
		return
	}
	if w.manager.Start(ctx, pos) {
		w.notifier.Sendf("▶️ worker %s started", job.Symbol)
	}
}

// Run — опрос каждые watchdog_time_ms до отмены ctx.
func (w *Watchdog) Run(ctx context.Context) {
	logger.Info("[Watchdog] polling job_control every %s", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Tick(ctx)
		}
	}
}

package engine

import (
	"context"

	"go.uber.org/fx"

	"trade_engine/internal/candles"
	"trade_engine/internal/models"
	blofin "trade_engine/internal/modules/blofin/service"
	"trade_engine/internal/modules/config"
	session "trade_engine/internal/modules/session/service"
	"trade_engine/internal/notify"
	"trade_engine/internal/store"
	"trade_engine/pkg/logger"
)

// Module собирает движок сверки и контроллеры вокруг него.
func Module() fx.Option {
	return fx.Module("engine",
		fx.Provide(
			func(cfg *config.Config, client *blofin.Client, requests store.RequestStore, stops store.StopStore, positions store.PositionStore) *Engine {
				return New(cfg.Account, client, requests, stops, positions)
			},
			func(cfg *config.Config, client *blofin.Client, cs store.CandleStore) *candles.Syncer {
				return candles.NewSyncer(client, cs, cfg.CandleMaxFetch)
			},
			func(cfg *config.Config, sess *session.Session, eng *Engine, syncer *candles.Syncer, jobs store.JobStore) *Manager {
				factory := func(pos *models.InstrumentPosition) Runner {
					return NewWorker(pos.Symbol, pos.Timeframe, sess, eng, syncer, cfg.WorkerInterval())
				}
				return NewManager(factory, jobs)
			},
			func(cfg *config.Config, sess *session.Session, eng *Engine, notifier notify.Notifier) *Master {
				return NewMaster(sess, eng, notifier, cfg.MasterInterval())
			},
			func(cfg *config.Config, jobs store.JobStore, positions store.PositionStore, manager *Manager, notifier notify.Notifier) *Watchdog {
				return NewWatchdog(jobs, positions, manager, notifier, cfg.Account, cfg.WatchdogInterval())
			},
			NewDispatcher,
		),
		fx.Invoke(func(lc fx.Lifecycle, ctx context.Context, cfg *config.Config, master *Master, watchdog *Watchdog, manager *Manager, jobs store.JobStore) {
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					// auto_start строки получают intent, исполняет его Watchdog
					if n, err := jobs.AutoStart(ctx, cfg.Account); err != nil {
						logger.Error("engine: autostart: %v", err)
					} else if n > 0 {
						logger.Info("engine: %d workers queued for autostart", n)
					}

					go master.Run(ctx)
					go watchdog.Run(ctx)
					return nil
				},
				OnStop: func(_ context.Context) error {
					manager.Shutdown()
					return nil
				},
			})
		}),
	)
}

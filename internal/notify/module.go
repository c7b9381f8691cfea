package notify

import (
	"context"

	"go.uber.org/fx"

	"trade_engine/internal/modules/config"
	"trade_engine/internal/store"
	"trade_engine/pkg/logger"
)

func Module() fx.Option {
	return fx.Module("notify",
		fx.Provide(
			func(cfg *config.Config, positions store.PositionStore) (Notifier, error) {
				if cfg.Telegram.Token == "" {
					logger.Info("notify: telegram token empty, stdout fallback")
					return NewStdout(), nil
				}
				return NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID, cfg.Account, positions)
			},
		),
		fx.Invoke(func(lc fx.Lifecycle, n Notifier, ctx context.Context) {
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					if tg, ok := n.(*Telegram); ok {
						return tg.Start(ctx)
					}
					return nil
				},
			})
		}),
	)
}

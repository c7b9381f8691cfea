package session

import (
	"context"

	"trade_engine/internal/modules/session/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("session",
		fx.Provide(
			service.NewSession,
		),
		fx.Invoke(func(lc fx.Lifecycle, s *service.Session, ctx context.Context) {
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					go s.Run(ctx)
					return nil
				},
			})
		}),
	)
}

package bootstrap

import (
	"context"

	"go.uber.org/fx"

	"trade_engine/internal/modules/bootstrap/service"
	"trade_engine/pkg/logger"
)

func Module() fx.Option {
	return fx.Module("bootstrap",
		fx.Provide(
			service.NewSeeder,
		),
		fx.Invoke(func(lc fx.Lifecycle, seeder *service.Seeder) {
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					// seed обязан пройти до старта контроллеров
					if err := seeder.Seed(ctx); err != nil {
						return err
					}
					go func() {
						if err := seeder.Warmup(context.Background()); err != nil {
							logger.Error("[Boot] warmup error: %v", err)
						}
					}()
					return nil
				},
			})
		}),
	)
}

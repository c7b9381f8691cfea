package main

import (
	"context"
	"log"

	"go.uber.org/fx"

	"trade_engine/internal/engine"
	"trade_engine/internal/modules/blofin"
	"trade_engine/internal/modules/bootstrap"
	"trade_engine/internal/modules/config"
	"trade_engine/internal/modules/postgres"
	"trade_engine/internal/modules/session"
	"trade_engine/internal/notify"
	"trade_engine/internal/store/pg"
	"trade_engine/pkg/logger"
	"trade_engine/pkg/tracing"
)

func main() {
	logger.SetServiceName("trade_engine")

	app := fx.New(
		fx.Provide(
			func() context.Context {
				return context.Background()
			},
		),
		config.Module(),
		postgres.Module(),
		pg.Module(),
		blofin.Module(),
		session.Module(),
		notify.Module(),
		bootstrap.Module(),
		engine.Module(),
		fx.Invoke(func(lc fx.Lifecycle, cfg *config.Config) error {
			_, closeTracer, err := tracing.InitTracer(tracing.Config{
				Host: cfg.Jaeger.Host,
				Port: cfg.Jaeger.Port,
			})
			if err != nil {
				logger.Warn("tracing disabled: %v", err)
				return nil
			}
			lc.Append(fx.Hook{
				OnStop: func(context.Context) error {
					closeTracer()
					return nil
				},
			})
			return nil
		}),
	)
	if err := app.Start(context.Background()); err != nil {
		log.Fatal(err)
	}

	<-app.Done()

	if err := app.Stop(context.Background()); err != nil {
		log.Fatal(err)
	}
}

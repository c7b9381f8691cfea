package blofin

import (
	"trade_engine/internal/modules/blofin/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("blofin",
		fx.Provide(
			service.NewClient,
		),
	)
}

package pg

import (
	"go.uber.org/fx"

	"trade_engine/internal/store"
	"trade_engine/pkg/db"
)

// Module привязывает pgx-реализации к контрактам store.
func Module() fx.Option {
	return fx.Module("store",
		fx.Provide(
			func(tx *db.PgTxManager) store.RequestStore { return NewRequests(tx) },
			func(tx *db.PgTxManager) store.StopStore { return NewStops(tx) },
			func(tx *db.PgTxManager) store.PositionStore { return NewPositions(tx) },
			func(tx *db.PgTxManager) store.JobStore { return NewJobs(tx) },
			func(tx *db.PgTxManager) store.CandleStore { return NewCandles(tx) },
			func(tx *db.PgTxManager) store.AuthorityStore { return NewAuthority(tx) },
		),
	)
}

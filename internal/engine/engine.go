package engine

import (
	"context"
	"time"

	blofin "trade_engine/internal/modules/blofin/service"
	"trade_engine/internal/store"
)

// Exchange — контракт биржевого клиента, который потребляют хендлеры.
// Код "0" в Result — успех, любой другой — прикладной отказ с msg.
type Exchange interface {
	SubmitOrders(ctx context.Context, requests []blofin.OrderRequest) ([]blofin.Result, error)
	CancelOrders(ctx context.Context, requests []blofin.CancelRequest) ([]blofin.Result, error)
	SubmitStops(ctx context.Context, requests []blofin.StopOrderRequest) ([]blofin.Result, error)
	CancelStops(ctx context.Context, requests []blofin.CancelStopRequest) ([]blofin.Result, error)
	SetLeverage(ctx context.Context, request blofin.LeverageRequest) error
	Positions(ctx context.Context) ([]blofin.Position, error)
}

// Engine гоняет Request/StopRequest по state machine: локальная БД хранит
// намерение, биржа — исполненное состояние, хендлеры сводят одно к другому.
type Engine struct {
	account   string
	exchange  Exchange
	requests  store.RequestStore
	stops     store.StopStore
	positions store.PositionStore

	now func() time.Time // подменяется в тестах
}

func New(account string, exchange Exchange, requests store.RequestStore, stops store.StopStore, positions store.PositionStore) *Engine {
	return &Engine{
		account:   account,
		exchange:  exchange,
		requests:  requests,
		stops:     stops,
		positions: positions,
		now:       time.Now,
	}
}

package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trade_engine/internal/models"
	blofin "trade_engine/internal/modules/blofin/service"
)

func queuedRequest(id string, expiry time.Time) models.Request {
	return models.Request{
		ID:           id,
		Account:      testAccount,
		Symbol:       "XRP-USDT",
		Side:         "sell",
		PositionSide: "short",
		MarginMode:   "cross",
		OrderType:    "limit",
		Price:        "2.85",
		Size:         "100",
		Leverage:     "10",
		ExpiryTime:   expiry,
		Status:       models.StatusQueued,
	}
}

func TestQueuedSubmitsLiveRequests(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	requests := newFakeRequestStore(queuedRequest("r1", now.Add(5*time.Minute)))
	exchange := newFakeExchange()
	e := newTestEngine(requests, newFakeStopStore(), newFakePositionStore(), exchange, now)

	outcomes := e.Queued(context.Background())

	got := requests.get("r1")
	assert.Equal(t, models.StatusPending, got.Status)
	assert.Equal(t, "ex-r1", got.OrderID)
	assert.Contains(t, got.Memo, "[0]")
	assert.Equal(t, 1, exchange.submitCount())
	assert.Equal(t, 1, outcomeCount(outcomes, "submitted"))

	// плечо синхронизировано до сабмита
	require.Len(t, exchange.leverages, 1)
	assert.Equal(t, blofin.LeverageRequest{
		InstID: "XRP-USDT", Leverage: "10", MarginMode: "cross", PositionSide: "short",
	}, exchange.leverages[0])
}

func TestQueuedExpiresLocallyWithoutNetwork(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	requests := newFakeRequestStore(queuedRequest("r1", now.Add(-time.Minute)))
	exchange := newFakeExchange()
	e := newTestEngine(requests, newFakeStopStore(), newFakePositionStore(), exchange, now)

	e.Queued(context.Background())

	got := requests.get("r1")
	assert.Equal(t, models.StatusExpired, got.Status)
	assert.Contains(t, got.Memo, "Expired")
	assert.Zero(t, exchange.submitCount(), "expired request must not reach the exchange")
}

func TestQueuedExpiryIsIdempotent(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	requests := newFakeRequestStore(queuedRequest("r1", now.Add(-time.Minute)))
	exchange := newFakeExchange()
	e := newTestEngine(requests, newFakeStopStore(), newFakePositionStore(), exchange, now)

	e.Queued(context.Background())
	first := requests.get("r1")
	e.Queued(context.Background())
	second := requests.get("r1")

	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.Memo, second.Memo)
	assert.Zero(t, exchange.submitCount())
}

func TestQueuedRejectionKeepsMemo(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	requests := newFakeRequestStore(queuedRequest("r1", now.Add(5*time.Minute)))
	exchange := newFakeExchange()
	exchange.submitResults["r1"] = blofin.Result{Code: "103003", Msg: "insufficient margin", ClientOrderID: "r1"}
	e := newTestEngine(requests, newFakeStopStore(), newFakePositionStore(), exchange, now)

	e.Queued(context.Background())

	got := requests.get("r1")
	assert.Equal(t, models.StatusRejected, got.Status)
	assert.Equal(t, "[103003]: insufficient margin", got.Memo)
	assert.Empty(t, got.OrderID)
}

func TestQueuedLeverageSyncedOncePerInstrument(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	a := queuedRequest("r1", now.Add(5*time.Minute))
	b := queuedRequest("r2", now.Add(5*time.Minute))
	requests := newFakeRequestStore(a, b)
	exchange := newFakeExchange()
	e := newTestEngine(requests, newFakeStopStore(), newFakePositionStore(), exchange, now)

	e.Queued(context.Background())

	assert.Len(t, exchange.leverages, 1)
	assert.Equal(t, 2, exchange.submitCount())
}

func outcomeCount(outcomes []Outcome, state string) int {
	total := 0
	for _, o := range outcomes {
		if o.State == state {
			total += o.Count
		}
	}
	return total
}

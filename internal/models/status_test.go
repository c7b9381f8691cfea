package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionLifecycleGraph(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusQueued, StatusPending},
		{StatusQueued, StatusRejected},
		{StatusQueued, StatusExpired},
		{StatusPending, StatusFulfilled},
		{StatusPending, StatusCanceled},
		{StatusPending, StatusExpired},
		{StatusRejected, StatusQueued},
		{StatusRejected, StatusExpired},
		{StatusHold, StatusQueued},
		{StatusCanceled, StatusClosed},
	}
	for _, tc := range allowed {
		assert.True(t, CanTransition(tc.from, tc.to), "%s -> %s must be allowed", tc.from, tc.to)
	}
}

func TestTerminalStatesAreImmutable(t *testing.T) {
	terminals := []Status{StatusFulfilled, StatusClosed, StatusExpired}
	targets := []Status{StatusQueued, StatusPending, StatusRejected, StatusHold, StatusCanceled}

	for _, from := range terminals {
		assert.True(t, from.Terminal())
		for _, to := range targets {
			assert.False(t, CanTransition(from, to), "%s -> %s must be rejected", from, to)
		}
	}
}

func TestCanTransitionSelfIsNoop(t *testing.T) {
	assert.True(t, CanTransition(StatusPending, StatusPending))
	assert.True(t, CanTransition(StatusExpired, StatusExpired))
}

func TestRequestExpired(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	open := Request{ExpiryTime: now.Add(time.Minute)}
	assert.False(t, open.Expired(now))

	boundary := Request{ExpiryTime: now}
	assert.True(t, boundary.Expired(now), "expiry boundary is inclusive")

	forever := Request{}
	assert.False(t, forever.Expired(now), "zero expiry never expires")
}

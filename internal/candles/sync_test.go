package candles

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trade_engine/internal/models"
	blofin "trade_engine/internal/modules/blofin/service"
)

type fakeFetcher struct {
	pages [][]models.Candle
	calls int
}

func (f *fakeFetcher) Candles(_ context.Context, q blofin.CandleQuery) ([]models.Candle, error) {
	if f.calls >= len(f.pages) {
		return nil, nil
	}
	page := f.pages[f.calls]
	f.calls++
	return page, nil
}

type fakeCandleStore struct {
	history  []models.Candle
	inserted []models.Candle
	updated  []models.Candle
}

func (s *fakeCandleStore) History(_ context.Context, _, _ string, _ int64, _ int) ([]models.Candle, error) {
	return s.history, nil
}

func (s *fakeCandleStore) Insert(_ context.Context, candles []models.Candle) (int64, error) {
	s.inserted = append(s.inserted, candles...)
	return int64(len(candles)), nil
}

func (s *fakeCandleStore) Update(_ context.Context, candle models.Candle) (int64, error) {
	s.updated = append(s.updated, candle)
	return 1, nil
}

func TestSyncPublishesDiff(t *testing.T) {
	store := &fakeCandleStore{history: []models.Candle{bar(2000, 2.84, false), bar(1000, 2.83, true)}}
	fetcher := &fakeFetcher{pages: [][]models.Candle{{bar(3000, 2.86, false), bar(2000, 2.84, true), bar(1000, 2.83, true)}}}
	s := NewSyncer(fetcher, store, 100)

	diff, err := s.Sync(context.Background(), "XRP-USDT", "15m")
	require.NoError(t, err)

	require.Len(t, store.inserted, 1)
	assert.Equal(t, int64(3000), store.inserted[0].BarTime)
	assert.Equal(t, "XRP-USDT", store.inserted[0].Instrument)
	assert.Equal(t, "15m", store.inserted[0].Period)

	require.Len(t, store.updated, 1)
	assert.Equal(t, int64(2000), store.updated[0].BarTime)
	assert.Len(t, diff.Missing, 1)
	assert.Len(t, diff.Modified, 1)
}

func TestBackfillStopsOnShortPage(t *testing.T) {
	store := &fakeCandleStore{}
	fetcher := &fakeFetcher{pages: [][]models.Candle{
		{bar(3000, 2.86, true), bar(2000, 2.84, true)},
	}}
	s := NewSyncer(fetcher, store, 100)

	n, err := s.Backfill(context.Background(), "XRP-USDT", "15m", 0)
	require.NoError(t, err)

	assert.Equal(t, 2, n)
	assert.Equal(t, 1, fetcher.calls, "short page ends the pagination")
}

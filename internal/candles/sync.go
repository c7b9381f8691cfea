package candles

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"trade_engine/internal/models"
	blofin "trade_engine/internal/modules/blofin/service"
	"trade_engine/internal/store"
	"trade_engine/pkg/logger"
)

// Fetcher — источник баров (REST-клиент биржи).
type Fetcher interface {
	Candles(ctx context.Context, q blofin.CandleQuery) ([]models.Candle, error)
}

// Syncer сводит локальную историю свечей с биржевой.
type Syncer struct {
	fetcher  Fetcher
	store    store.CandleStore
	maxFetch int
}

func NewSyncer(fetcher Fetcher, store store.CandleStore, maxFetch int) *Syncer {
	return &Syncer{fetcher: fetcher, store: store, maxFetch: maxFetch}
}

// Sync — один проход: свежее окно с биржи против локальной истории.
// Недостающие бары вставляются пачкой, разошедшиеся обновляются по одному
// (ключ instrument/period/bar_time).
func (s *Syncer) Sync(ctx context.Context, instrument, period string) (Diff, error) {
	remote, err := s.fetcher.Candles(ctx, blofin.CandleQuery{
		InstID: instrument,
		Bar:    period,
		Limit:  s.maxFetch,
	})
	if err != nil {
		return Diff{}, errors.Wrap(err, "Syncer.Sync: fetch")
	}
	for i := range remote {
		remote[i].Instrument = instrument
		remote[i].Period = period
	}

	var from int64
	if len(remote) > 0 {
		from = remote[0].BarTime
	}
	local, err := s.store.History(ctx, instrument, period, from, s.maxFetch)
	if err != nil {
		return Diff{}, errors.Wrap(err, "Syncer.Sync: history")
	}

	diff := Merge(local, remote)
	if err := s.publish(ctx, diff); err != nil {
		return diff, err
	}
	if len(diff.Missing) > 0 || len(diff.Modified) > 0 {
		logger.Info("-> Candles.Sync %s/%s: %d inserted, %d updated",
			instrument, period, len(diff.Missing), len(diff.Modified))
	}
	return diff, nil
}

// Backfill докачивает глубокую историю: пагинация after= назад от самого
// старого полученного бара, пауза между страницами под rate limit биржи.
// Останавливается на неполной странице.
func (s *Syncer) Backfill(ctx context.Context, instrument, period string, pause time.Duration) (int, error) {
	var after int64
	total := 0

	for {
		remote, err := s.fetcher.Candles(ctx, blofin.CandleQuery{
			InstID: instrument,
			Bar:    period,
			Limit:  s.maxFetch,
			After:  after,
		})
		if err != nil {
			return total, errors.Wrap(err, "Syncer.Backfill: fetch")
		}
		if len(remote) == 0 {
			return total, nil
		}
		for i := range remote {
			remote[i].Instrument = instrument
			remote[i].Period = period
		}

		local, err := s.store.History(ctx, instrument, period, remote[0].BarTime, s.maxFetch)
		if err != nil {
			return total, errors.Wrap(err, "Syncer.Backfill: history")
		}
		diff := Merge(local, remote)
		if err := s.publish(ctx, diff); err != nil {
			return total, err
		}
		total += len(diff.Missing)

		if len(remote) < s.maxFetch {
			return total, nil
		}
		after = remote[len(remote)-1].BarTime

		select {
		case <-ctx.Done():
			return total, ctx.Err()
		case <-time.After(pause):
		}
	}
}

func (s *Syncer) publish(ctx context.Context, diff Diff) error {
	if len(diff.Missing) > 0 {
		if _, err := s.store.Insert(ctx, diff.Missing); err != nil {
			return errors.Wrap(err, "Syncer.publish: insert")
		}
	}
	for _, candle := range diff.Modified {
		if _, err := s.store.Update(ctx, candle); err != nil {
			return errors.Wrap(err, "Syncer.publish: update")
		}
	}
	return nil
}

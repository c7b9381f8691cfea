package service

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v2"

	"trade_engine/internal/candles"
	"trade_engine/internal/models"
	"trade_engine/internal/modules/config"
	"trade_engine/internal/notify"
	"trade_engine/internal/store"
	"trade_engine/pkg/logger"
)

// seedFile — схема configs/instruments.yaml.
type seedFile struct {
	Instruments []seedInstrument `yaml:"instruments"`
}

type seedInstrument struct {
	Instrument string `yaml:"instrument"`
	Symbol     string `yaml:"symbol"`
	Position   string `yaml:"position"`
	Leverage   string `yaml:"leverage"`
	Timeframe  string `yaml:"timeframe"`
	AutoStatus string `yaml:"auto_status"`
	AutoStart  bool   `yaml:"auto_start"`
}

// Seeder поднимает стартовое состояние: строки instrument_position и
// job_control из seed-файла плюс докачка свечной истории.
type Seeder struct {
	cfg       *config.Config
	positions store.PositionStore
	jobs      store.JobStore
	syncer    *candles.Syncer
	notifier  notify.Notifier

	// ограничитель параллелизма, чтобы не словить rate limit
	sem chan struct{}
}

func NewSeeder(cfg *config.Config, positions store.PositionStore, jobs store.JobStore, syncer *candles.Syncer, notifier notify.Notifier) *Seeder {
	return &Seeder{
		cfg:       cfg,
		positions: positions,
		jobs:      jobs,
		syncer:    syncer,
		notifier:  notifier,
		sem:       make(chan struct{}, 4),
	}
}

// Seed — идемпотентная инициализация; существующий intent не трогается.
func (s *Seeder) Seed(ctx context.Context) error {
	raw, err := os.ReadFile(s.cfg.InstrumentsSeed)
	if err != nil {
		return fmt.Errorf("Seeder.Seed: read %s: %w", s.cfg.InstrumentsSeed, err)
	}

	var file seedFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("Seeder.Seed: parse: %w", err)
	}

	for _, inst := range file.Instruments {
		id := inst.Symbol + ":" + inst.Position
		if _, err := s.positions.Provision(ctx, models.InstrumentPosition{
			ID:         id,
			Instrument: inst.Instrument,
			Symbol:     inst.Symbol,
			Position:   inst.Position,
			Account:    s.cfg.Account,
			Status:     models.PositionClosed,
			AutoStatus: inst.AutoStatus,
			Leverage:   inst.Leverage,
			Timeframe:  inst.Timeframe,
		}); err != nil {
			return err
		}
		if _, err := s.jobs.Provision(ctx, models.JobControl{
			InstrumentPosition: id,
			Account:            s.cfg.Account,
			Symbol:             inst.Symbol,
			Position:           inst.Position,
			AutoStart:          inst.AutoStart,
		}); err != nil {
			return err
		}
	}

	logger.Info("[Boot] seeded %d instrument positions", len(file.Instruments))
	return nil
}

// Warmup докачивает историю свечей по всем инструментам seed'а параллельно.
func (s *Seeder) Warmup(ctx context.Context) error {
	raw, err := os.ReadFile(s.cfg.InstrumentsSeed)
	if err != nil {
		return fmt.Errorf("Seeder.Warmup: read %s: %w", s.cfg.InstrumentsSeed, err)
	}
	var file seedFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("Seeder.Warmup: parse: %w", err)
	}

	// один символ/таймфрейм докачивается один раз
	type key struct{ symbol, timeframe string }
	seen := make(map[key]bool)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	s.notifier.Sendf("🔥 candle warmup start: %d instruments", len(file.Instruments))
	for _, inst := range file.Instruments {
		k := key{inst.Symbol, inst.Timeframe}
		if seen[k] || inst.Timeframe == "" {
			continue
		}
		seen[k] = true

		inst := inst
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.sem <- struct{}{}
			defer func() { <-s.sem }()

			n, err := s.syncer.Backfill(ctx, inst.Symbol, inst.Timeframe, 250*time.Millisecond)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("warmup %s/%s: %w", inst.Symbol, inst.Timeframe, err)
				}
				mu.Unlock()
				return
			}
			logger.Info("[Boot] warmup %s/%s: %d bars", inst.Symbol, inst.Timeframe, n)
		}()
	}
	wg.Wait()

	if firstErr != nil {
		s.notifier.Send("⚠️ candle warmup finished with error: " + firstErr.Error())
		return firstErr
	}
	s.notifier.Send("✅ candle warmup finished")
	return nil
}

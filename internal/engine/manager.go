package engine

import (
	"context"
	"os"
	"sync"

	"trade_engine/internal/models"
	"trade_engine/internal/store"
	"trade_engine/pkg/logger"
)

// Runner — то, что Manager запускает на инструмент (обычно *Worker).
type Runner interface {
	Run(ctx context.Context)
}

// RunnerFactory собирает воркера под конкретный instrument-position.
type RunnerFactory func(pos *models.InstrumentPosition) Runner

type handle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Manager держит реестр живых воркеров по символу. Воркеры — горутины с
// отменой через контекст; наблюдаемый статус пишется в job_control, чтобы
// оператор видел реальность, а не intent.
type Manager struct {
	factory RunnerFactory
	jobs    store.JobStore

	mu      sync.Mutex
	workers map[string]*handle
}

func NewManager(factory RunnerFactory, jobs store.JobStore) *Manager {
	return &Manager{
		factory: factory,
		jobs:    jobs,
		workers: make(map[string]*handle),
	}
}

// IsActive — публичный type guard для Watchdog'а.
func (m *Manager) IsActive(symbol string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.workers[symbol]
	return ok
}

// Start запускает воркера инструмента; повторный старт — no-op с warn'ом.
func (m *Manager) Start(ctx context.Context, pos *models.InstrumentPosition) bool {
	m.mu.Lock()
	if _, ok := m.workers[pos.Symbol]; ok {
		m.mu.Unlock()
		logger.Warn("[Manager] Start command ignored: %s is already active", pos.Symbol)
		return false
	}

	runCtx, cancel := context.WithCancel(ctx)
	h := &handle{cancel: cancel, done: make(chan struct{})}
	m.workers[pos.Symbol] = h
	m.mu.Unlock()

	runner := m.factory(pos)
	if err := m.jobs.Observe(ctx, pos.ID, os.Getpid(), "running"); err != nil {
		logger.Warn("[Manager] observe %s: %v", pos.Symbol, err)
	}

	go func() {
		defer close(h.done)
		defer func() {
			if r := recover(); r != nil {
				logger.Error("[Manager] worker %s panicked: %v", pos.Symbol, r)
			}
			m.mu.Lock()
			delete(m.workers, pos.Symbol)
			m.mu.Unlock()
			if err := m.jobs.Observe(context.Background(), pos.ID, 0, "stopped"); err != nil {
				logger.Warn("[Manager] observe %s: %v", pos.Symbol, err)
			}
		}()
		runner.Run(runCtx)
	}()

	logger.Info("[Manager] worker %s started", pos.Symbol)
	return true
}

// Stop гасит воркера и дожидается выхода горутины.
func (m *Manager) Stop(symbol string) bool {
	m.mu.Lock()
	h, ok := m.workers[symbol]
	m.mu.Unlock()
	if !ok {
		logger.Warn("[Manager] Stop command failed: %s is not running", symbol)
		return false
	}

	logger.Info("[Manager] stopping worker %s", symbol)
	h.cancel()
	<-h.done
	return true
}

// Shutdown останавливает всех воркеров; вызывается fx.Lifecycle хуком.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	symbols := make([]string, 0, len(m.workers))
	for symbol := range m.workers {
		symbols = append(symbols, symbol)
	}
	m.mu.Unlock()

	for _, symbol := range symbols {
		m.Stop(symbol)
	}
}

package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trade_engine/internal/models"
	"trade_engine/internal/notify"
)

type fakeJobStore struct {
	mu       sync.Mutex
	commands map[string]models.JobControl
	observed []string
	cleared  []string
}

func newFakeJobStore(jobs ...models.JobControl) *fakeJobStore {
	s := &fakeJobStore{commands: make(map[string]models.JobControl)}
	for _, j := range jobs {
		s.commands[j.InstrumentPosition] = j
	}
	return s
}

func (s *fakeJobStore) FetchCommands(_ context.Context, account string) ([]models.JobControl, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.JobControl
	for _, j := range s.commands {
		if j.Account == account && j.Command != models.CommandNone {
			out = append(out, j)
		}
	}
	return out, nil
}

func (s *fakeJobStore) ClearCommand(_ context.Context, instrumentPosition string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j := s.commands[instrumentPosition]
	j.Command = models.CommandNone
	s.commands[instrumentPosition] = j
	s.cleared = append(s.cleared, instrumentPosition)
	return 1, nil
}

func (s *fakeJobStore) Command(_ context.Context, instrumentPosition string, command models.JobCommand) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j := s.commands[instrumentPosition]
	j.InstrumentPosition = instrumentPosition
	j.Command = command
	s.commands[instrumentPosition] = j
	return 1, nil
}

func (s *fakeJobStore) Observe(_ context.Context, instrumentPosition string, _ int, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observed = append(s.observed, instrumentPosition+":"+status)
	return nil
}

func (s *fakeJobStore) Provision(_ context.Context, job models.JobControl) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commands[job.InstrumentPosition] = job
	return 1, nil
}

func (s *fakeJobStore) AutoStart(_ context.Context, account string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, j := range s.commands {
		if j.Account == account && j.AutoStart && j.Command == models.CommandNone {
			j.Command = models.CommandStart
			s.commands[id] = j
			n++
		}
	}
	return n, nil
}

// idleRunner живёт до отмены контекста.
type idleRunner struct{}

func (idleRunner) Run(ctx context.Context) { <-ctx.Done() }

func testJob(command models.JobCommand) models.JobControl {
	return models.JobControl{
		InstrumentPosition: "XRP-USDT:short",
		Account:            testAccount,
		Symbol:             "XRP-USDT",
		Position:           "short",
		Command:            command,
	}
}

func testPosition(autoStatus string) models.InstrumentPosition {
	return models.InstrumentPosition{
		ID: "XRP-USDT:short", Symbol: "XRP-USDT", Position: "short",
		Account: testAccount, Status: models.PositionOpen,
		AutoStatus: autoStatus, Timeframe: "15m",
	}
}

func newTestWatchdog(jobs *fakeJobStore, positions *fakePositionStore) (*Watchdog, *Manager) {
	manager := NewManager(func(*models.InstrumentPosition) Runner { return idleRunner{} }, jobs)
	w := NewWatchdog(jobs, positions, manager, notify.NewStdout(), testAccount, time.Second)
	return w, manager
}

// Команда потребляется ровно один раз: после диспатча intent сброшен в none
// и второй тик не перезапускает воркера.
func TestWatchdogConsumesCommandOnce(t *testing.T) {
	jobs := newFakeJobStore(testJob(models.CommandStart))
	positions := newFakePositionStore(testPosition(models.AutoEnabled))
	w, manager := newTestWatchdog(jobs, positions)
	defer manager.Shutdown()

	w.Tick(context.Background())

	assert.True(t, manager.IsActive("XRP-USDT"))
	require.Len(t, jobs.cleared, 1)
	assert.Equal(t, models.CommandNone, jobs.commands["XRP-USDT:short"].Command)

	w.Tick(context.Background())
	assert.Len(t, jobs.cleared, 1, "cleared command must not be dispatched again")
}

func TestWatchdogStopCommand(t *testing.T) {
	jobs := newFakeJobStore(testJob(models.CommandStart))
	positions := newFakePositionStore(testPosition(models.AutoEnabled))
	w, manager := newTestWatchdog(jobs, positions)
	defer manager.Shutdown()

	w.Tick(context.Background())
	require.True(t, manager.IsActive("XRP-USDT"))

	_, _ = jobs.Command(context.Background(), "XRP-USDT:short", models.CommandStop)
	jobs.mu.Lock()
	j := jobs.commands["XRP-USDT:short"]
	j.Account, j.Symbol = testAccount, "XRP-USDT"
	jobs.commands["XRP-USDT:short"] = j
	jobs.mu.Unlock()

	w.Tick(context.Background())
	assert.False(t, manager.IsActive("XRP-USDT"))
}

func TestWatchdogRestartIsStopThenStart(t *testing.T) {
	jobs := newFakeJobStore(testJob(models.CommandRestart))
	positions := newFakePositionStore(testPosition(models.AutoEnabled))
	w, manager := newTestWatchdog(jobs, positions)
	defer manager.Shutdown()

	w.Tick(context.Background())

	assert.True(t, manager.IsActive("XRP-USDT"), "restart on stopped worker still starts it")
	assert.Equal(t, models.CommandNone, jobs.commands["XRP-USDT:short"].Command)
}

func TestDispatcherFailsClosed(t *testing.T) {
	jobs := newFakeJobStore()
	positions := newFakePositionStore(testPosition(models.AutoDisabled))
	d := NewDispatcher(fakeAuthority{allowed: false}, positions, jobs)

	err := d.Dispatch(context.Background(), "operator", "XRP-USDT:short", models.CommandStart)
	assert.ErrorIs(t, err, ErrUnauthorized)

	// привилегия есть, но инструмент выключен
	d = NewDispatcher(fakeAuthority{allowed: true}, positions, jobs)
	err = d.Dispatch(context.Background(), "operator", "XRP-USDT:short", models.CommandStart)
	assert.ErrorIs(t, err, ErrInstrumentDisabled)
	assert.Empty(t, jobs.commands)
}

func TestDispatcherWritesIntent(t *testing.T) {
	jobs := newFakeJobStore()
	positions := newFakePositionStore(testPosition(models.AutoEnabled))
	d := NewDispatcher(fakeAuthority{allowed: true}, positions, jobs)

	err := d.Dispatch(context.Background(), "operator", "XRP-USDT:short", models.CommandRestart)
	require.NoError(t, err)
	assert.Equal(t, models.CommandRestart, jobs.commands["XRP-USDT:short"].Command)
}

type fakeAuthority struct{ allowed bool }

func (f fakeAuthority) Authorized(context.Context, string, string, string) (bool, error) {
	return f.allowed, nil
}

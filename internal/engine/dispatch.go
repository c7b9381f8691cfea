package engine

import (
	"context"

	"github.com/pkg/errors"

	"trade_engine/internal/models"
	"trade_engine/internal/store"
	"trade_engine/pkg/logger"
)

var (
	ErrUnauthorized       = errors.New("unauthorized access: verify your privileges with your administrator")
	ErrInstrumentDisabled = errors.New("invalid action: instrument must be 'Enabled' to manage jobs")
)

// Dispatcher — путь оператора к job_control. Пишет только intent; исполняет
// его Watchdog. Оба гейта fail-closed: нет привилегии или инструмент
// выключен — команда не записывается.
type Dispatcher struct {
	authority store.AuthorityStore
	positions store.PositionStore
	jobs      store.JobStore
}

func NewDispatcher(authority store.AuthorityStore, positions store.PositionStore, jobs store.JobStore) *Dispatcher {
	return &Dispatcher{authority: authority, positions: positions, jobs: jobs}
}

func (d *Dispatcher) Dispatch(ctx context.Context, user, instrumentPosition string, command models.JobCommand) error {
	ok, err := d.authority.Authorized(ctx, user, "Jobs", "Operate")
	if err != nil {
		return errors.Wrap(err, "Dispatcher.Dispatch: authority check")
	}
	if !ok {
		return ErrUnauthorized
	}

	pos, err := d.positions.Fetch(ctx, instrumentPosition)
	if err != nil {
		return errors.Wrap(err, "Dispatcher.Dispatch: fetch instrument")
	}
	if pos == nil || pos.AutoStatus != models.AutoEnabled {
		return ErrInstrumentDisabled
	}

	if _, err := d.jobs.Command(ctx, instrumentPosition, command); err != nil {
		return errors.Wrap(err, "Dispatcher.Dispatch: write command")
	}

	logger.Info("-> [Queued] Command '%s' for %s", command, pos.Symbol)
	return nil
}

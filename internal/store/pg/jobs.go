package pg

import (
	"context"
	"fmt"

	"trade_engine/internal/models"
	"trade_engine/pkg/db"
)

// Jobs implement store.JobStore
type Jobs struct {
	tx db.TxManager
}

func NewJobs(tx db.TxManager) *Jobs {
	return &Jobs{tx: tx}
}

func (j *Jobs) FetchCommands(ctx context.Context, account string) (jobs []models.JobControl, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("Jobs.FetchCommands: %w", err)
		}
	}()

	rows, err := j.tx.Conn().Query(ctx, `
		SELECT instrument_position, account, symbol, position, command,
			COALESCE(process_pid, 0), COALESCE(process_status, ''), auto_start,
			COALESCE(start_time, to_timestamp(0)), COALESCE(stop_time, to_timestamp(0))
		FROM job_control WHERE account = $1 AND command <> 'none'`, account)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var job models.JobControl
		var command string
		if err = rows.Scan(
			&job.InstrumentPosition, &job.Account, &job.Symbol, &job.Position, &command,
			&job.ProcessPID, &job.ProcessStatus, &job.AutoStart, &job.StartTime, &job.StopTime,
		); err != nil {
			return nil, err
		}
		job.Command = models.JobCommand(command)
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (j *Jobs) ClearCommand(ctx context.Context, instrumentPosition string) (affected int64, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("Jobs.ClearCommand: %w", err)
		}
	}()

	tag, err := j.tx.Conn().Exec(ctx,
		`UPDATE job_control SET command = 'none' WHERE instrument_position = $1`,
		instrumentPosition)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (j *Jobs) Command(ctx context.Context, instrumentPosition string, command models.JobCommand) (affected int64, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("Jobs.Command: %w", err)
		}
	}()

	tag, err := j.tx.Conn().Exec(ctx,
		`UPDATE job_control SET command = $2 WHERE instrument_position = $1`,
		instrumentPosition, string(command))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Provision — строка управления воркером из seed'а; существующий intent
// не перезаписывается.
func (j *Jobs) Provision(ctx context.Context, job models.JobControl) (affected int64, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("Jobs.Provision: %w", err)
		}
	}()

	tag, err := j.tx.Conn().Exec(ctx, `
		INSERT INTO job_control (instrument_position, account, symbol, position, command, auto_start)
		VALUES ($1, $2, $3, $4, 'none', $5)
		ON CONFLICT (instrument_position) DO UPDATE SET
			auto_start = EXCLUDED.auto_start`,
		job.InstrumentPosition, job.Account, job.Symbol, job.Position, job.AutoStart)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// AutoStart переводит intent в start на строках с auto_start; занятые
// команды не перетираются.
func (j *Jobs) AutoStart(ctx context.Context, account string) (affected int64, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("Jobs.AutoStart: %w", err)
		}
	}()

	tag, err := j.tx.Conn().Exec(ctx,
		`UPDATE job_control SET command = 'start'
		 WHERE account = $1 AND auto_start AND command = 'none'`, account)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (j *Jobs) Observe(ctx context.Context, instrumentPosition string, pid int, status string) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("Jobs.Observe: %w", err)
		}
	}()

	column := "start_time"
	if status == "stopped" {
		column = "stop_time"
	}
	_, err = j.tx.Conn().Exec(ctx,
		`UPDATE job_control SET process_pid = $2, process_status = $3, `+column+` = now()
		 WHERE instrument_position = $1`,
		instrumentPosition, pid, status)
	return err
}

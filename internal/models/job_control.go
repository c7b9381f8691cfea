package models

import "time"

// JobCommand — желаемое действие оператора над воркером инструмента.
type JobCommand string

const (
	CommandNone    JobCommand = "none"
	CommandStart   JobCommand = "start"
	CommandStop    JobCommand = "stop"
	CommandRestart JobCommand = "restart"
)

// JobControl — одна строка на instrument-position: intent (command)
// плюс последняя наблюдаемая реальность (pid/status), пишет её Watchdog.
type JobControl struct {
	InstrumentPosition string
	Account            string
	Symbol             string
	Position           string
	Command            JobCommand
	ProcessPID         int
	ProcessStatus      string
	AutoStart          bool
	StartTime          time.Time
	StopTime           time.Time
}

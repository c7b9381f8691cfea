package models

// Status — жизненный цикл Request/StopRequest.
type Status string

const (
	StatusQueued    Status = "Queued"
	StatusPending   Status = "Pending"
	StatusRejected  Status = "Rejected"
	StatusHold      Status = "Hold"
	StatusCanceled  Status = "Canceled"
	StatusFulfilled Status = "Fulfilled"
	StatusClosed    Status = "Closed"
	StatusExpired   Status = "Expired"
)

// Terminal — из терминального статуса переходов нет, только новый Request.
func (s Status) Terminal() bool {
	switch s {
	case StatusFulfilled, StatusClosed, StatusExpired:
		return true
	}
	return false
}

var transitions = map[Status][]Status{
	StatusQueued:   {StatusPending, StatusRejected, StatusExpired, StatusCanceled, StatusHold},
	StatusPending:  {StatusFulfilled, StatusRejected, StatusCanceled, StatusHold, StatusExpired, StatusClosed},
	StatusRejected: {StatusQueued, StatusExpired, StatusClosed},
	StatusHold:     {StatusQueued, StatusCanceled, StatusClosed, StatusExpired},
	StatusCanceled: {StatusClosed, StatusExpired},
}

// CanTransition проверяет допустимость перехода по state machine.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	if from.Terminal() {
		return false
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

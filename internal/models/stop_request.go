package models

import "time"

// StopType — разновидность стопа.
type StopType string

const (
	StopTakeProfit StopType = "tp"
	StopLoss       StopType = "sl"
)

// StopRequest — намерение TP/SL по открытой позиции.
// Статусы те же, что у Request; дополнительный гейт — позиция должна быть Open.
type StopRequest struct {
	ID                 string
	InstrumentPosition string
	Account            string
	Symbol             string
	Side               string
	PositionSide       string
	MarginMode         string
	StopType           StopType
	TriggerPrice       string
	OrderPrice         string // "-1" = market
	Size               string
	ReduceOnly         bool
	Status             Status
	Memo               string
	PositionStatus     string // join из instrument_position: Open/Closed
	TpslID             string // присваивается биржей после акцепта
	CreateTime         time.Time
	UpdateTime         time.Time
}

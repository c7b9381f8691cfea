package models

const (
	PositionOpen   = "Open"
	PositionClosed = "Closed"

	AutoEnabled  = "Enabled"
	AutoDisabled = "Disabled"
)

// InstrumentPosition — связка (инструмент, сторона позиции, аккаунт);
// точка соединения Request'ов, стопов и биржевых снапшотов позиций.
type InstrumentPosition struct {
	ID         string // instrument_position key
	Instrument string
	Symbol     string
	Position   string // long/short/net
	Account    string
	Status     string // Open/Closed
	AutoStatus string // Enabled/Disabled — гейт для Watchdog
	Leverage   string
	Timeframe  string
}

// Open — есть живая позиция на бирже по последнему снапшоту.
func (p *InstrumentPosition) Open() bool { return p.Status == PositionOpen }

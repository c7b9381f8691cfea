package models

import "time"

// Request — локальное намерение ордера; биржа хранит исполненное состояние.
// ID — клиентский идемпотентный ключ (clientOrderId на бирже).
type Request struct {
	ID           string
	Account      string
	Symbol       string // например "XRP-USDT"
	Side         string // buy/sell
	PositionSide string // long/short/net
	MarginMode   string // cross/isolated
	OrderType    string // limit/market/post_only
	Price        string
	Size         string
	Leverage     string
	ReduceOnly   bool
	ExpiryTime   time.Time
	Status       Status
	Memo         string
	// Revision — fencing token: каждый cancel-then-resubmit инкрементирует,
	// условный апдейт по старой ревизии не проходит.
	Revision   int64
	OrderID    string // присваивается биржей после акцепта
	CreateTime time.Time
	UpdateTime time.Time
}

// Expired — время вышло, а ордер так и не исполнен.
func (r *Request) Expired(now time.Time) bool {
	return !r.ExpiryTime.IsZero() && !now.Before(r.ExpiryTime)
}

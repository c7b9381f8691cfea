package service

// OrderRequest — тело /api/v1/trade/batch-orders, всё строками как требует биржа.
type OrderRequest struct {
	InstID        string `json:"instId"`
	MarginMode    string `json:"marginMode"`
	PositionSide  string `json:"positionSide"`
	Side          string `json:"side"`
	OrderType     string `json:"orderType"`
	Price         string `json:"price"`
	Size          string `json:"size"`
	ReduceOnly    string `json:"reduceOnly,omitempty"`
	ClientOrderID string `json:"clientOrderId"`
	BrokerID      string `json:"brokerId,omitempty"`
}

type CancelRequest struct {
	InstID        string `json:"instId"`
	OrderID       string `json:"orderId,omitempty"`
	ClientOrderID string `json:"clientOrderId,omitempty"`
}

type StopOrderRequest struct {
	InstID         string `json:"instId"`
	MarginMode     string `json:"marginMode"`
	PositionSide   string `json:"positionSide"`
	Side           string `json:"side"`
	Size           string `json:"size"`
	ClientOrderID  string `json:"clientOrderId"`
	ReduceOnly     string `json:"reduceOnly,omitempty"`
	TpTriggerPrice string `json:"tpTriggerPrice,omitempty"`
	TpOrderPrice   string `json:"tpOrderPrice,omitempty"`
	SlTriggerPrice string `json:"slTriggerPrice,omitempty"`
	SlOrderPrice   string `json:"slOrderPrice,omitempty"`
	BrokerID       string `json:"brokerId,omitempty"`
}

type CancelStopRequest struct {
	InstID        string `json:"instId"`
	TpslID        string `json:"tpslId,omitempty"`
	ClientOrderID string `json:"clientOrderId,omitempty"`
}

type LeverageRequest struct {
	InstID       string `json:"instId"`
	Leverage     string `json:"leverage"`
	MarginMode   string `json:"marginMode"`
	PositionSide string `json:"positionSide"`
}

// Result — нормализованный ответ по одному элементу батча.
// Биржа отдаёт code строкой; "0" — успех, всё остальное — отказ с msg.
// Никаких duck-typed конвертов выше этого слоя не уходит.
type Result struct {
	Code          string `json:"code"`
	Msg           string `json:"msg"`
	OrderID       string `json:"orderId"`
	TpslID        string `json:"tpslId"`
	ClientOrderID string `json:"clientOrderId"`
}

// Ok — биржа приняла элемент.
func (r Result) Ok() bool { return r.Code == "0" }

// envelope — общий конверт ответов BloFin.
type envelope struct {
	Code string   `json:"code"`
	Msg  string   `json:"msg"`
	Data []Result `json:"data"`
}

// Position — открытая позиция из /api/v1/account/positions.
type Position struct {
	InstID       string `json:"instId"`
	PositionSide string `json:"positionSide"`
	Positions    string `json:"positions"`
	AvgPrice     string `json:"averagePrice"`
	Leverage     string `json:"leverage"`
	MarginMode   string `json:"marginMode"`
	UnrealizedPL string `json:"unrealizedPnl"`
	UpdateTime   string `json:"updateTime"`
}

type positionsEnvelope struct {
	Code string     `json:"code"`
	Msg  string     `json:"msg"`
	Data []Position `json:"data"`
}

// candlesEnvelope — свечи приходят массивами строк:
// [ts, open, high, low, close, vol, volCurrency, volCurrencyQuote, confirm]
type candlesEnvelope struct {
	Code string     `json:"code"`
	Msg  string     `json:"msg"`
	Data [][]string `json:"data"`
}

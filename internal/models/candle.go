package models

// Candle — один OHLCV-бар; не более одной строки на (instrument, period, bar_time).
// Значения приходят с биржи фиксированными десятичными строками и парсятся
// один раз, поэтому сравнение распарсенных полей точное, без эпсилона.
type Candle struct {
	Instrument       string
	Period           string
	BarTime          int64 // unix ms
	Open             float64
	High             float64
	Low              float64
	Close            float64
	Volume           float64
	VolCurrency      float64
	VolCurrencyQuote float64
	Completed        bool
}

// Equal — пополевое сравнение OHLCV и флага завершённости.
func (c Candle) Equal(other Candle) bool {
	return c.Open == other.Open &&
		c.High == other.High &&
		c.Low == other.Low &&
		c.Close == other.Close &&
		c.Volume == other.Volume &&
		c.VolCurrency == other.VolCurrency &&
		c.VolCurrencyQuote == other.VolCurrencyQuote &&
		c.Completed == other.Completed
}

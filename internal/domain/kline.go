package domain

import (
	"math"
	"time"
)

// Kline is one OHLCV bar for a symbol and interval. Series are ordered
// oldest first; IsFinal is false only for a bar that is still forming.
type Kline struct {
	Symbol    string
	Interval  string
	OpenTime  time.Time
	CloseTime time.Time

	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64

	IsFinal bool
}

// TrueRange is the widest of the bar's own range and its distance from the
// previous close, so gaps between bars count toward volatility.
func (k *Kline) TrueRange(prevClose float64) float64 {
	return math.Max(k.High-k.Low, math.Max(math.Abs(k.High-prevClose), math.Abs(k.Low-prevClose)))
}

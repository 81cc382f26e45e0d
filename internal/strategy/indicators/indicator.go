package indicators

import (
	"context"
	"fmt"
	"math"

	"traderBot/internal/domain"
	"traderBot/internal/ports"
)

// Indicator represents a technical indicator that can be calculated from price data
type Indicator interface {
	// Calculate computes the indicator value at the newest kline
	Calculate(ctx context.Context, klines []*domain.Kline) (float64, error)

	// RequiredDataPoints returns the minimum number of klines needed for calculation
	RequiredDataPoints() int

	// Name returns the name of the indicator
	Name() string
}

var (
	_ Indicator = (*MovingAverage)(nil)
	_ Indicator = (*RSI)(nil)
	_ Indicator = (*ATR)(nil)
)

// IndicatorConfig holds common configuration for indicators
type IndicatorConfig struct {
	Period int
}

// BaseIndicator provides common functionality for indicators
type BaseIndicator struct {
	Config IndicatorConfig
}

// RequiredDataPoints returns the minimum number of klines needed for calculation
func (b *BaseIndicator) RequiredDataPoints() int {
	return b.Config.Period
}

// Closes extracts closing prices, oldest first.
func Closes(klines []*domain.Kline) []float64 {
	out := make([]float64, len(klines))
	for i, k := range klines {
		out[i] = k.Close
	}
	return out
}

// LastTwo returns the final defined value of a series and the one before it.
// ok is false when fewer than two defined values exist at the tail.
func LastTwo(series []float64) (prev, cur float64, ok bool) {
	n := len(series)
	if n < 2 {
		return 0, 0, false
	}
	prev, cur = series[n-2], series[n-1]
	if math.IsNaN(prev) || math.IsNaN(cur) {
		return 0, 0, false
	}
	return prev, cur, true
}

func insufficient(name string, need, got int) error {
	return fmt.Errorf("%w: %s needs %d values, got %d", ports.ErrInsufficientData, name, need, got)
}

func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

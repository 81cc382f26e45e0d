package indicators

import (
	"context"

	"traderBot/internal/domain"
)

// ATRConfig holds configuration for the Average True Range indicator
type ATRConfig struct {
	IndicatorConfig
}

// ATR implements the Average True Range indicator
type ATR struct {
	BaseIndicator
}

// NewATR creates a new Average True Range indicator instance
func NewATR(config ATRConfig) *ATR {
	return &ATR{BaseIndicator: BaseIndicator{Config: config.IndicatorConfig}}
}

// Name returns the name of the indicator
func (a *ATR) Name() string {
	return "ATR"
}

// RequiredDataPoints returns period+1 since every true range needs the previous close.
func (a *ATR) RequiredDataPoints() int {
	return a.Config.Period + 1
}

// Calculate computes the Average True Range value for the given klines
func (a *ATR) Calculate(ctx context.Context, klines []*domain.Kline) (float64, error) {
	return AverageTrueRange(klines, a.Config.Period)
}

// TrueRange of cur against the bar before it.
func TrueRange(cur, prev *domain.Kline) float64 {
	return cur.TrueRange(prev.Close)
}

// AverageTrueRange returns the arithmetic mean of the true range over the last
// `period` klines. It needs period+1 klines.
func AverageTrueRange(klines []*domain.Kline, period int) (float64, error) {
	if period <= 0 {
		return 0, insufficient("ATR", 2, len(klines))
	}
	if len(klines) < period+1 {
		return 0, insufficient("ATR", period+1, len(klines))
	}
	sum := 0.0
	for i := len(klines) - period; i < len(klines); i++ {
		sum += TrueRange(klines[i], klines[i-1])
	}
	return sum / float64(period), nil
}

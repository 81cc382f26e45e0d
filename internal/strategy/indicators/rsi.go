package indicators

import (
	"context"
	"fmt"

	"traderBot/internal/domain"
)

// RSIConfig holds configuration for the RSI indicator
type RSIConfig struct {
	IndicatorConfig
	Overbought float64
	Oversold   float64
}

// RSI implements the Relative Strength Index indicator
type RSI struct {
	BaseIndicator
	config RSIConfig
}

// NewRSI creates a new RSI indicator instance
func NewRSI(config RSIConfig) *RSI {
	return &RSI{
		BaseIndicator: BaseIndicator{Config: config.IndicatorConfig},
		config:        config,
	}
}

// Name returns the name of the indicator
func (r *RSI) Name() string {
	return "RSI"
}

// RequiredDataPoints returns period+1: one delta per period plus the base close.
func (r *RSI) RequiredDataPoints() int {
	return r.Config.Period + 1
}

// Calculate computes the RSI value at the newest kline
func (r *RSI) Calculate(ctx context.Context, klines []*domain.Kline) (float64, error) {
	series, err := RSISeries(Closes(klines), r.Config.Period)
	if err != nil {
		return 0, err
	}
	return series[len(series)-1], nil
}

// IsOverbought checks if the RSI value indicates an overbought condition
func (r *RSI) IsOverbought(value float64) bool {
	return value >= r.config.Overbought
}

// IsOversold checks if the RSI value indicates an oversold condition
func (r *RSI) IsOversold(value float64) bool {
	return value <= r.config.Oversold
}

// RSISeries computes RSI with Wilder's smoothing. The first averages are the
// simple means of gains and losses over the first `period` deltas; afterwards
// avg = (prevAvg*(period-1) + current) / period. A zero average loss yields 100.
// Index i holds the RSI of closes[:i+1]; indices before `period` are NaN.
func RSISeries(closes []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, fmt.Errorf("RSI period must be positive, got %d", period)
	}
	if len(closes) < period+1 {
		return nil, insufficient("RSI", period+1, len(closes))
	}
	out := nanSeries(len(closes))
	p := float64(period)

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		gain, loss := split(closes[i] - closes[i-1])
		avgGain += gain
		avgLoss += loss
	}
	avgGain /= p
	avgLoss /= p
	out[period] = rsiValue(avgGain, avgLoss)

	for i := period + 1; i < len(closes); i++ {
		gain, loss := split(closes[i] - closes[i-1])
		avgGain = (avgGain*(p-1) + gain) / p
		avgLoss = (avgLoss*(p-1) + loss) / p
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out, nil
}

func split(delta float64) (gain, loss float64) {
	if delta > 0 {
		return delta, 0
	}
	return 0, -delta
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

package indicators

import (
	"context"
	"fmt"

	"traderBot/internal/domain"
)

// MovingAverageType defines the type of moving average
type MovingAverageType string

const (
	// SimpleMovingAverage represents a simple moving average
	SimpleMovingAverage MovingAverageType = "SMA"
	// ExponentialMovingAverage represents an exponential moving average
	ExponentialMovingAverage MovingAverageType = "EMA"
)

// MovingAverageConfig holds configuration for moving average indicators
type MovingAverageConfig struct {
	IndicatorConfig
	Type MovingAverageType
}

// MovingAverage implements both SMA and EMA indicators
type MovingAverage struct {
	BaseIndicator
	config MovingAverageConfig
}

// NewMovingAverage creates a new moving average indicator instance
func NewMovingAverage(config MovingAverageConfig) *MovingAverage {
	return &MovingAverage{
		BaseIndicator: BaseIndicator{Config: config.IndicatorConfig},
		config:        config,
	}
}

// Name returns the name of the indicator
func (m *MovingAverage) Name() string {
	return string(m.config.Type)
}

// Calculate computes the moving average at the newest kline
func (m *MovingAverage) Calculate(ctx context.Context, klines []*domain.Kline) (float64, error) {
	series, err := m.Series(Closes(klines))
	if err != nil {
		return 0, err
	}
	return series[len(series)-1], nil
}

// Series computes the moving average for every position of values.
// Positions before the first full period are NaN.
func (m *MovingAverage) Series(values []float64) ([]float64, error) {
	switch m.config.Type {
	case SimpleMovingAverage:
		return SMASeries(values, m.Config.Period)
	case ExponentialMovingAverage:
		return EMASeries(values, m.Config.Period)
	default:
		return nil, fmt.Errorf("unsupported moving average type: %s", m.config.Type)
	}
}

// SMASeries returns the arithmetic mean of the trailing `period` values at each index.
func SMASeries(values []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, fmt.Errorf("SMA period must be positive, got %d", period)
	}
	if len(values) < period {
		return nil, insufficient("SMA", period, len(values))
	}
	out := nanSeries(len(values))
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out, nil
}

// EMASeries returns the exponential moving average seeded with the SMA of the
// first `period` values: EMA = (value - prev) * 2/(period+1) + prev.
func EMASeries(values []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, fmt.Errorf("EMA period must be positive, got %d", period)
	}
	if len(values) < period {
		return nil, insufficient("EMA", period, len(values))
	}
	out := nanSeries(len(values))
	multiplier := 2.0 / float64(period+1)

	seed := 0.0
	for i := 0; i < period; i++ {
		seed += values[i]
	}
	ema := seed / float64(period)
	out[period-1] = ema

	for i := period; i < len(values); i++ {
		ema = (values[i]-ema)*multiplier + ema
		out[i] = ema
	}
	return out, nil
}

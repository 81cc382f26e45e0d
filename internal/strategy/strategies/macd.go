package strategies

import (
	"context"
	"fmt"

	"traderBot/internal/domain"
	"traderBot/internal/ports"
	"traderBot/internal/strategy/indicators"
)

// MACDConfig holds configuration for the MACD signal-line crossover strategy
type MACDConfig struct {
	FastPeriod   int `mapstructure:"fast_period"`
	SlowPeriod   int `mapstructure:"slow_period"`
	SignalPeriod int `mapstructure:"signal_period"`
	// Lookback defaults to SlowPeriod+SignalPeriod+20 when zero.
	Lookback int `mapstructure:"lookback"`
}

// DefaultMACDConfig returns the defaults for the MACD strategy.
func DefaultMACDConfig() MACDConfig {
	return MACDConfig{FastPeriod: 12, SlowPeriod: 26, SignalPeriod: 9}
}

// MACDStrategy emits BUY when the MACD line crosses above its signal line and
// SELL on the downward cross.
type MACDStrategy struct {
	*BaseStrategy
	config MACDConfig
}

// NewMACDStrategy creates a MACD strategy.
func NewMACDStrategy(name, timeframe string, config MACDConfig, logger ports.Logger) (*MACDStrategy, error) {
	base, err := NewBaseStrategy(name, timeframe, logger)
	if err != nil {
		return nil, err
	}
	if config.FastPeriod <= 0 || config.SlowPeriod <= 0 || config.SignalPeriod <= 0 {
		return nil, fmt.Errorf("%w: %s periods must be positive", ports.ErrInvalidStrategyConfig, name)
	}
	if config.FastPeriod >= config.SlowPeriod {
		return nil, fmt.Errorf("%w: %s fast period must be less than slow period", ports.ErrInvalidStrategyConfig, name)
	}
	if config.Lookback == 0 {
		config.Lookback = config.SlowPeriod + config.SignalPeriod + 20
	}

	s := &MACDStrategy{BaseStrategy: base, config: config}
	if config.Lookback < s.RequiredDataPoints() {
		return nil, fmt.Errorf("%w: %s lookback %d is below the %d bars required", ports.ErrInvalidStrategyConfig, name, config.Lookback, s.RequiredDataPoints())
	}
	return s, nil
}

// RequiredDataPoints returns slow+signal: the second signal-line point.
func (s *MACDStrategy) RequiredDataPoints() int {
	return indicators.MACDRequired(s.config.FastPeriod, s.config.SlowPeriod, s.config.SignalPeriod) + 1
}

// Lookback returns the number of klines fetched per evaluation
func (s *MACDStrategy) Lookback() int {
	return s.config.Lookback
}

// GenerateSignal compares MACD and signal line on the last two points.
func (s *MACDStrategy) GenerateSignal(ctx context.Context, klines []*domain.Kline) domain.Signal {
	if len(klines) < s.RequiredDataPoints() {
		return domain.SignalNone
	}
	res, err := indicators.MACDSeries(indicators.Closes(klines), s.config.FastPeriod, s.config.SlowPeriod, s.config.SignalPeriod)
	if err != nil {
		return domain.SignalNone
	}
	prevMACD, curMACD, ok := indicators.LastTwo(res.MACD)
	if !ok {
		return domain.SignalNone
	}
	prevSignal, curSignal, ok := indicators.LastTwo(res.Signal)
	if !ok {
		return domain.SignalNone
	}

	fields := map[string]interface{}{"macd": curMACD, "signal": curSignal}
	switch {
	case prevMACD <= prevSignal && curMACD > curSignal:
		s.debug(ctx, "MACD crossed above signal", fields)
		return domain.SignalBuy
	case prevMACD >= prevSignal && curMACD < curSignal:
		s.debug(ctx, "MACD crossed below signal", fields)
		return domain.SignalSell
	default:
		return domain.SignalNone
	}
}

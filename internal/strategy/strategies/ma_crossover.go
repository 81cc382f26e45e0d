package strategies

import (
	"context"
	"fmt"
	"strings"

	"traderBot/internal/domain"
	"traderBot/internal/ports"
	"traderBot/internal/strategy/indicators"
)

// MACrossoverConfig holds configuration for the MA Crossover strategy
type MACrossoverConfig struct {
	FastMAPeriod int                          `mapstructure:"fast_period"`
	SlowMAPeriod int                          `mapstructure:"slow_period"`
	MAType       indicators.MovingAverageType `mapstructure:"ma_type"`
	// Lookback defaults to SlowMAPeriod+10 when zero.
	Lookback int `mapstructure:"lookback"`
}

// DefaultMACrossoverConfig returns the defaults for the MA Crossover strategy.
func DefaultMACrossoverConfig() MACrossoverConfig {
	return MACrossoverConfig{
		FastMAPeriod: 10,
		SlowMAPeriod: 20,
		MAType:       indicators.SimpleMovingAverage,
	}
}

// MACrossover emits BUY on a golden cross and SELL on a death cross of the
// fast moving average through the slow one between the last two bars.
type MACrossover struct {
	*BaseStrategy
	config MACrossoverConfig
	fastMA *indicators.MovingAverage
	slowMA *indicators.MovingAverage
}

// NewMACrossover creates a new MA Crossover strategy instance
func NewMACrossover(name, timeframe string, config MACrossoverConfig, logger ports.Logger) (*MACrossover, error) {
	base, err := NewBaseStrategy(name, timeframe, logger)
	if err != nil {
		return nil, err
	}

	if config.FastMAPeriod <= 0 || config.SlowMAPeriod <= 0 {
		return nil, fmt.Errorf("%w: %s periods must be positive", ports.ErrInvalidStrategyConfig, name)
	}
	if config.FastMAPeriod >= config.SlowMAPeriod {
		return nil, fmt.Errorf("%w: %s fast MA period must be less than slow MA period", ports.ErrInvalidStrategyConfig, name)
	}
	config.MAType = indicators.MovingAverageType(strings.ToUpper(string(config.MAType)))
	if config.MAType == "" {
		config.MAType = indicators.SimpleMovingAverage
	}
	if config.MAType != indicators.SimpleMovingAverage && config.MAType != indicators.ExponentialMovingAverage {
		return nil, fmt.Errorf("%w: %s unsupported ma_type %q", ports.ErrInvalidStrategyConfig, name, config.MAType)
	}
	if config.Lookback == 0 {
		config.Lookback = config.SlowMAPeriod + 10
	}

	s := &MACrossover{
		BaseStrategy: base,
		config:       config,
		fastMA: indicators.NewMovingAverage(indicators.MovingAverageConfig{
			IndicatorConfig: indicators.IndicatorConfig{Period: config.FastMAPeriod},
			Type:            config.MAType,
		}),
		slowMA: indicators.NewMovingAverage(indicators.MovingAverageConfig{
			IndicatorConfig: indicators.IndicatorConfig{Period: config.SlowMAPeriod},
			Type:            config.MAType,
		}),
	}
	if config.Lookback < s.RequiredDataPoints() {
		return nil, fmt.Errorf("%w: %s lookback %d is below the %d bars required", ports.ErrInvalidStrategyConfig, name, config.Lookback, s.RequiredDataPoints())
	}
	return s, nil
}

// RequiredDataPoints returns slow+1: both averages must exist on the last two bars.
func (s *MACrossover) RequiredDataPoints() int {
	return s.config.SlowMAPeriod + 1
}

// Lookback returns the number of klines fetched per evaluation
func (s *MACrossover) Lookback() int {
	return s.config.Lookback
}

// GenerateSignal compares the fast/slow relationship on the previous and current bar.
func (s *MACrossover) GenerateSignal(ctx context.Context, klines []*domain.Kline) domain.Signal {
	if len(klines) < s.RequiredDataPoints() {
		return domain.SignalNone
	}
	closes := indicators.Closes(klines)

	fast, err := s.fastMA.Series(closes)
	if err != nil {
		return domain.SignalNone
	}
	slow, err := s.slowMA.Series(closes)
	if err != nil {
		return domain.SignalNone
	}
	prevFast, curFast, ok := indicators.LastTwo(fast)
	if !ok {
		return domain.SignalNone
	}
	prevSlow, curSlow, ok := indicators.LastTwo(slow)
	if !ok {
		return domain.SignalNone
	}

	fields := map[string]interface{}{"fast": curFast, "slow": curSlow}
	switch {
	case prevFast <= prevSlow && curFast > curSlow:
		s.debug(ctx, "Golden cross", fields)
		return domain.SignalBuy
	case prevFast >= prevSlow && curFast < curSlow:
		s.debug(ctx, "Death cross", fields)
		return domain.SignalSell
	default:
		return domain.SignalNone
	}
}

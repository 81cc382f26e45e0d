package strategies

import (
	"context"
	"fmt"

	"traderBot/internal/domain"
	"traderBot/internal/ports"
	"traderBot/internal/strategy/indicators"
)

// RSIConfig holds configuration for the RSI threshold-crossing strategy
type RSIConfig struct {
	Period     int     `mapstructure:"period"`
	Oversold   float64 `mapstructure:"oversold"`
	Overbought float64 `mapstructure:"overbought"`
	// Lookback defaults to Period+20 when zero.
	Lookback int `mapstructure:"lookback"`
}

// DefaultRSIConfig returns the defaults for the RSI strategy.
func DefaultRSIConfig() RSIConfig {
	return RSIConfig{Period: 14, Oversold: 30, Overbought: 70}
}

// RSIStrategy emits BUY when RSI climbs out of the oversold zone and SELL when
// it falls back out of the overbought zone.
type RSIStrategy struct {
	*BaseStrategy
	config RSIConfig
	rsi    *indicators.RSI
}

// NewRSIStrategy creates an RSI strategy.
func NewRSIStrategy(name, timeframe string, config RSIConfig, logger ports.Logger) (*RSIStrategy, error) {
	base, err := NewBaseStrategy(name, timeframe, logger)
	if err != nil {
		return nil, err
	}
	if config.Period <= 0 {
		return nil, fmt.Errorf("%w: %s period must be positive", ports.ErrInvalidStrategyConfig, name)
	}
	if config.Oversold < 0 || config.Overbought > 100 || config.Oversold >= config.Overbought {
		return nil, fmt.Errorf("%w: %s requires 0 <= oversold < overbought <= 100, got %.2f/%.2f",
			ports.ErrInvalidStrategyConfig, name, config.Oversold, config.Overbought)
	}
	if config.Lookback == 0 {
		config.Lookback = config.Period + 20
	}

	s := &RSIStrategy{
		BaseStrategy: base,
		config:       config,
		rsi: indicators.NewRSI(indicators.RSIConfig{
			IndicatorConfig: indicators.IndicatorConfig{Period: config.Period},
			Overbought:      config.Overbought,
			Oversold:        config.Oversold,
		}),
	}
	if config.Lookback < s.RequiredDataPoints() {
		return nil, fmt.Errorf("%w: %s lookback %d is below the %d bars required", ports.ErrInvalidStrategyConfig, name, config.Lookback, s.RequiredDataPoints())
	}
	return s, nil
}

// RequiredDataPoints returns period+2 so that two RSI values exist.
func (s *RSIStrategy) RequiredDataPoints() int {
	return s.config.Period + 2
}

// Lookback returns the number of klines fetched per evaluation
func (s *RSIStrategy) Lookback() int {
	return s.config.Lookback
}

// GenerateSignal detects a threshold crossing between the previous and current RSI.
func (s *RSIStrategy) GenerateSignal(ctx context.Context, klines []*domain.Kline) domain.Signal {
	if len(klines) < s.RequiredDataPoints() {
		return domain.SignalNone
	}
	series, err := indicators.RSISeries(indicators.Closes(klines), s.config.Period)
	if err != nil {
		return domain.SignalNone
	}
	prev, cur, ok := indicators.LastTwo(series)
	if !ok {
		return domain.SignalNone
	}

	fields := map[string]interface{}{"rsi": cur, "prev_rsi": prev}
	switch {
	case s.rsi.IsOversold(prev) && !s.rsi.IsOversold(cur):
		s.debug(ctx, "RSI crossed above oversold", fields)
		return domain.SignalBuy
	case s.rsi.IsOverbought(prev) && !s.rsi.IsOverbought(cur):
		s.debug(ctx, "RSI crossed below overbought", fields)
		return domain.SignalSell
	default:
		return domain.SignalNone
	}
}

package strategies

import (
	"context"
	"fmt"

	"traderBot/internal/domain"
	"traderBot/internal/ports"
)

// SimpleConfig holds configuration for the momentum strategy
type SimpleConfig struct {
	Lookback int `mapstructure:"lookback"`
}

// DefaultSimpleConfig returns the defaults for the momentum strategy.
func DefaultSimpleConfig() SimpleConfig {
	return SimpleConfig{Lookback: 20}
}

// Simple compares the last two closes: up is BUY, down is SELL, flat is NONE.
type Simple struct {
	*BaseStrategy
	config SimpleConfig
}

// NewSimple creates a momentum strategy.
func NewSimple(name, timeframe string, config SimpleConfig, logger ports.Logger) (*Simple, error) {
	base, err := NewBaseStrategy(name, timeframe, logger)
	if err != nil {
		return nil, err
	}
	if config.Lookback < 2 {
		return nil, fmt.Errorf("%w: %s lookback must be at least 2, got %d", ports.ErrInvalidStrategyConfig, name, config.Lookback)
	}
	return &Simple{BaseStrategy: base, config: config}, nil
}

// RequiredDataPoints returns the minimum number of klines needed for the strategy
func (s *Simple) RequiredDataPoints() int {
	return 2
}

// Lookback returns the number of klines fetched per evaluation
func (s *Simple) Lookback() int {
	return s.config.Lookback
}

// GenerateSignal evaluates momentum over the last two closes.
func (s *Simple) GenerateSignal(ctx context.Context, klines []*domain.Kline) domain.Signal {
	n := len(klines)
	if n < s.RequiredDataPoints() {
		return domain.SignalNone
	}
	last, prev := klines[n-1].Close, klines[n-2].Close

	switch {
	case last > prev:
		s.debug(ctx, "Upward momentum", map[string]interface{}{"last": last, "prev": prev})
		return domain.SignalBuy
	case last < prev:
		s.debug(ctx, "Downward momentum", map[string]interface{}{"last": last, "prev": prev})
		return domain.SignalSell
	default:
		return domain.SignalNone
	}
}

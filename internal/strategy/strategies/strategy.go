package strategies

import (
	"context"
	"fmt"

	"traderBot/internal/ports"
)

// BaseStrategy provides common functionality for strategies
type BaseStrategy struct {
	name      string
	timeframe string
	logger    ports.Logger
}

// NewBaseStrategy creates a new base strategy instance
func NewBaseStrategy(name, timeframe string, logger ports.Logger) (*BaseStrategy, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required for strategy")
	}
	if name == "" {
		return nil, fmt.Errorf("%w: strategy name is required", ports.ErrInvalidStrategyConfig)
	}
	if timeframe == "" {
		return nil, fmt.Errorf("%w: timeframe is required for %s", ports.ErrInvalidStrategyConfig, name)
	}
	return &BaseStrategy{name: name, timeframe: timeframe, logger: logger}, nil
}

// Name returns the name of the strategy
func (b *BaseStrategy) Name() string {
	return b.name
}

// Timeframe returns the kline interval the strategy reads
func (b *BaseStrategy) Timeframe() string {
	return b.timeframe
}

func (b *BaseStrategy) debug(ctx context.Context, msg string, fields map[string]interface{}) {
	fields["strategy"] = b.name
	b.logger.Debug(ctx, msg, fields)
}

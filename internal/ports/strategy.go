package ports

import (
	"context"

	"traderBot/internal/domain"
)

// Strategy turns a window of klines into a signal. Implementations are side-effect
// free and return SignalNone when the window is too short.
type Strategy interface {
	// Name returns the strategy name.
	Name() string

	// Timeframe returns the kline interval the strategy reads.
	Timeframe() string

	// RequiredDataPoints returns the minimum number of klines needed to emit a non-NONE signal.
	RequiredDataPoints() int

	// Lookback returns the number of klines to fetch per evaluation (>= RequiredDataPoints).
	Lookback() int

	// GenerateSignal evaluates the strategy on klines ordered oldest first.
	GenerateSignal(ctx context.Context, klines []*domain.Kline) domain.Signal
}

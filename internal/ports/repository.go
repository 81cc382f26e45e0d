package ports

import (
	"context"
	"time"

	"traderBot/internal/domain"
)

// DailyPnLStore persists the daily P/L map. Save must replace the stored map
// atomically: readers see either the previous map or the new one, never a mix.
type DailyPnLStore interface {
	// Load returns the persisted map, or an empty map if nothing was saved yet.
	Load(ctx context.Context) (domain.DailyPnLMap, error)
	// Save replaces the persisted map with m.
	Save(ctx context.Context, m domain.DailyPnLMap) error
	// Close releases the underlying resources.
	Close() error
}

// TradeLog records closed trades whose realized P/L is durably applied, so
// each trade is applied once across restarts.
type TradeLog interface {
	// HasTrade reports whether a trade with id was recorded.
	HasTrade(ctx context.Context, id int64) (bool, error)
	// RecordTrade stores trade and reports whether it was new.
	RecordTrade(ctx context.Context, trade *domain.Trade) (bool, error)
	// LastExitTime returns the exit time of the newest recorded trade for
	// symbol, or the zero time if none exists.
	LastExitTime(ctx context.Context, symbol string) (time.Time, error)
}

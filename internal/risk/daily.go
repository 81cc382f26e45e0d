package risk

import (
	"context"
	"fmt"

	"traderBot/internal/domain"
	"traderBot/internal/ports"
)

// Load replaces the in-memory daily state with the persisted map.
func (m *Manager) Load(ctx context.Context) error {
	loaded, err := m.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("%w: load daily state: %w", ports.ErrPersistenceFailure, err)
	}
	if loaded == nil {
		loaded = make(domain.DailyPnLMap)
	}

	m.dailyMu.Lock()
	defer m.dailyMu.Unlock()
	m.daily = loaded
	m.persistErr = nil
	rec := m.todayLocked()
	m.metrics.SetDailyPnL(rec.PnL, rec.TradeCount)
	m.logger.Info(ctx, "Daily state loaded", map[string]interface{}{
		"days":         len(loaded),
		"today_pnl":    rec.PnL,
		"today_trades": rec.TradeCount,
	})
	return nil
}

// UpdateDailyPnL adds a realized profit (negative for a loss) to today's
// record, counts the trade and persists the whole map. The write runs to
// completion even if ctx is canceled. A failed write keeps the in-memory
// update, returns ErrPersistenceFailure and halts trading until a later
// write succeeds. After Close it returns ErrClosed and applies nothing.
func (m *Manager) UpdateDailyPnL(ctx context.Context, profit float64) error {
	m.dailyMu.Lock()
	defer m.dailyMu.Unlock()
	if m.closed {
		return fmt.Errorf("%w: risk manager", ports.ErrClosed)
	}

	key := domain.DateKey(m.now())
	rec := m.daily[key]
	rec.Date = key
	rec.PnL += profit
	rec.TradeCount++
	m.daily[key] = rec
	m.metrics.SetDailyPnL(rec.PnL, rec.TradeCount)

	if err := m.saveLocked(ctx); err != nil {
		return err
	}
	m.logger.Info(ctx, "Daily P/L updated", map[string]interface{}{
		"date":   key,
		"pnl":    rec.PnL,
		"trades": rec.TradeCount,
		"profit": profit,
	})
	return nil
}

// Flush persists the current map. It clears a previous persistence failure on success.
func (m *Manager) Flush(ctx context.Context) error {
	m.dailyMu.Lock()
	defer m.dailyMu.Unlock()
	if m.closed {
		return fmt.Errorf("%w: risk manager", ports.ErrClosed)
	}
	return m.saveLocked(ctx)
}

// Close waits for any in-flight daily update, performs a final flush and
// closes the store. It is safe to call more than once.
func (m *Manager) Close(ctx context.Context) error {
	m.dailyMu.Lock()
	defer m.dailyMu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true

	saveErr := m.saveLocked(ctx)
	if err := m.store.Close(); err != nil && saveErr == nil {
		return fmt.Errorf("close daily store: %w", err)
	}
	return saveErr
}

// CanTrade reports whether new trades are allowed by the daily gate.
func (m *Manager) CanTrade() bool {
	ok, _ := m.TradingStatus()
	return ok
}

// TradingStatus reports whether new trades are allowed and why. Both limits
// are inclusive: reaching a limit exactly halts trading.
func (m *Manager) TradingStatus() (bool, string) {
	if !m.config.EnableDailyLimits {
		return true, "daily limits disabled"
	}

	m.dailyMu.Lock()
	defer m.dailyMu.Unlock()
	if m.persistErr != nil {
		return false, fmt.Sprintf("daily state not persisted: %v", m.persistErr)
	}
	pnl := m.todayLocked().PnL
	if pnl <= -m.config.DailyLossLimit {
		return false, fmt.Sprintf("daily loss limit reached: %.2f", pnl)
	}
	if pnl >= m.config.DailyProfitTarget {
		return false, fmt.Sprintf("daily profit target reached: %.2f", pnl)
	}
	return true, fmt.Sprintf("daily P/L: %.2f", pnl)
}

// DailyPnL returns today's realized P/L.
func (m *Manager) DailyPnL() float64 {
	return m.TodayRecord().PnL
}

// TodayRecord returns a copy of today's record, zero-valued if no trade closed today.
func (m *Manager) TodayRecord() domain.DailyPnLRecord {
	m.dailyMu.Lock()
	defer m.dailyMu.Unlock()
	return m.todayLocked()
}

// Snapshot returns a copy of the whole daily map.
func (m *Manager) Snapshot() domain.DailyPnLMap {
	m.dailyMu.Lock()
	defer m.dailyMu.Unlock()
	return m.daily.Clone()
}

func (m *Manager) todayLocked() domain.DailyPnLRecord {
	key := domain.DateKey(m.now())
	rec := m.daily[key]
	rec.Date = key
	return rec
}

func (m *Manager) saveLocked(ctx context.Context) error {
	if err := m.store.Save(context.WithoutCancel(ctx), m.daily.Clone()); err != nil {
		m.persistErr = err
		m.metrics.RecordPersistFailure()
		m.logger.Error(ctx, err, "Failed to persist daily state, trading halted until a write succeeds")
		return fmt.Errorf("%w: %w", ports.ErrPersistenceFailure, err)
	}
	m.persistErr = nil
	return nil
}

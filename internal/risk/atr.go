package risk

import (
	"context"
	"fmt"
	"time"

	"traderBot/internal/domain"
	"traderBot/internal/ports"
	"traderBot/internal/strategy/indicators"
)

type atrKey struct {
	symbol    string
	timeframe string
	period    int
}

type atrEntry struct {
	lastBar time.Time
	value   float64
}

// CalculateATR returns the mean true range over the last `period` klines.
// Results are cached per (symbol, timeframe, period) and reused while the
// newest kline is the same final bar. Fewer than period+1 klines is ErrInsufficientData.
func (m *Manager) CalculateATR(symbol, timeframe string, period int, klines []*domain.Kline) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("%w: ATR period must be positive, got %d", ports.ErrInvalidRiskParameters, period)
	}
	atr := indicators.NewATR(indicators.ATRConfig{IndicatorConfig: indicators.IndicatorConfig{Period: period}})
	if need := atr.RequiredDataPoints(); len(klines) < need {
		return 0, fmt.Errorf("%w: ATR(%d) on %s %s needs %d klines, got %d",
			ports.ErrInsufficientData, period, symbol, timeframe, need, len(klines))
	}

	key := atrKey{symbol: symbol, timeframe: timeframe, period: period}
	newest := klines[len(klines)-1]
	// A forming bar keeps its open time while its range moves, so it is
	// never a cache key.
	if !newest.IsFinal {
		return atr.Calculate(context.Background(), klines)
	}

	m.atrMu.Lock()
	defer m.atrMu.Unlock()
	if cached, ok := m.atrCache[key]; ok && cached.lastBar.Equal(newest.OpenTime) {
		return cached.value, nil
	}

	value, err := atr.Calculate(context.Background(), klines)
	if err != nil {
		return 0, err
	}
	m.atrCache[key] = atrEntry{lastBar: newest.OpenTime, value: value}
	return value, nil
}

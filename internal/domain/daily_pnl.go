package domain

import (
	"sort"
	"time"
)

// DateLayout is the ISO calendar-date layout used as the daily state key.
const DateLayout = "2006-01-02"

// DailyPnLRecord holds the realized P/L for one local calendar day.
type DailyPnLRecord struct {
	Date       string  `json:"-"`
	PnL        float64 `json:"pnl"`
	TradeCount int     `json:"trade_count"`
}

// DailyPnLMap maps an ISO date to its record. The whole map is the unit of persistence.
type DailyPnLMap map[string]DailyPnLRecord

// DateKey returns the local calendar date of t in DateLayout.
func DateKey(t time.Time) string {
	return t.In(time.Local).Format(DateLayout)
}

// Clone returns a deep copy of the map.
func (m DailyPnLMap) Clone() DailyPnLMap {
	out := make(DailyPnLMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// SortedDates returns the keys in ascending order.
func (m DailyPnLMap) SortedDates() []string {
	dates := make([]string, 0, len(m))
	for d := range m {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

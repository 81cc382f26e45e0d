package strategy

import (
	"sync"
	"time"

	"traderBot/internal/domain"
)

// DefaultHistorySize is the number of combined decisions retained for diagnostics.
const DefaultHistorySize = 100

// Decision records one combination round.
type Decision struct {
	ID       string                   `json:"id"`
	Time     time.Time                `json:"time"`
	Symbol   string                   `json:"symbol"`
	Method   domain.CombinationMethod `json:"method"`
	Combined domain.Signal            `json:"combined"`
	Votes    []Vote                   `json:"votes"`
}

// history is a bounded ring of the most recent decisions.
type history struct {
	mu    sync.Mutex
	items []Decision
	next  int
	full  bool
}

func newHistory(size int) *history {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &history{items: make([]Decision, size)}
}

func (h *history) add(d Decision) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.items[h.next] = d
	h.next = (h.next + 1) % len(h.items)
	if h.next == 0 {
		h.full = true
	}
}

// snapshot returns the retained decisions, oldest first.
func (h *history) snapshot() []Decision {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.full {
		out := make([]Decision, h.next)
		copy(out, h.items[:h.next])
		return out
	}
	out := make([]Decision, 0, len(h.items))
	out = append(out, h.items[h.next:]...)
	out = append(out, h.items[:h.next]...)
	return out
}

package domain

import "time"

// Trade represents a closed position as reported by the execution side.
// Only PNL feeds the daily limit state; the rest is kept for logging.
type Trade struct {
	ID          int64       // Exchange transaction ID, if any
	Symbol      string      // Trading symbol (e.g., "ETHUSDT")
	Side        OrderSide   // Side of the position that was closed
	Quantity    float64     // Size of the position traded
	PNL         float64     // Realized profit and loss in account currency
	ExitTime    time.Time   // Timestamp when the position was exited
	CloseReason CloseReason // Reason why the position was closed (SL, TP, etc.)
}

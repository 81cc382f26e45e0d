package domain

// OrderSide represents the side of an order (BUY or SELL).
type OrderSide string

const (
	Buy  OrderSide = "BUY"
	Sell OrderSide = "SELL"
)

// Opposite returns the side that closes a position opened on s.
func (s OrderSide) Opposite() OrderSide {
	if s == Buy {
		return Sell
	}
	return Buy
}

// Signal is the trinary output of a strategy or of the combined decision.
type Signal string

const (
	SignalBuy  Signal = "BUY"
	SignalSell Signal = "SELL"
	SignalNone Signal = "NONE"
)

// Rank orders signals for tie-breaking: BUY > SELL > NONE.
func (s Signal) Rank() int {
	switch s {
	case SignalBuy:
		return 2
	case SignalSell:
		return 1
	default:
		return 0
	}
}

// IsActionable reports whether the signal should lead to an order.
func (s Signal) IsActionable() bool {
	return s == SignalBuy || s == SignalSell
}

// Side maps an actionable signal to an order side. The second value is false for NONE.
func (s Signal) Side() (OrderSide, bool) {
	switch s {
	case SignalBuy:
		return Buy, true
	case SignalSell:
		return Sell, true
	default:
		return "", false
	}
}

// CombinationMethod selects how individual strategy signals are reconciled.
type CombinationMethod string

const (
	MethodUnanimous CombinationMethod = "unanimous"
	MethodMajority  CombinationMethod = "majority"
	MethodWeighted  CombinationMethod = "weighted"
	MethodAny       CombinationMethod = "any"
)

// Valid reports whether m is one of the supported methods.
func (m CombinationMethod) Valid() bool {
	switch m {
	case MethodUnanimous, MethodMajority, MethodWeighted, MethodAny:
		return true
	}
	return false
}

// DistanceMethod selects how a stop-loss or take-profit distance is derived.
type DistanceMethod string

const (
	DistanceATR        DistanceMethod = "atr"
	DistanceFixedPips  DistanceMethod = "fixed_pips"
	DistancePercentage DistanceMethod = "percentage"
)

// Valid reports whether m is one of the supported methods.
func (m DistanceMethod) Valid() bool {
	switch m {
	case DistanceATR, DistanceFixedPips, DistancePercentage:
		return true
	}
	return false
}

// CloseReason indicates why a position was closed. Income history does not
// say which order closed it, so feeds report CloseReasonUnknown.
type CloseReason string

const CloseReasonUnknown CloseReason = "Unknown"

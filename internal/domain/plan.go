package domain

// PositionPlan is the risk-bounded order plan for one trade attempt.
type PositionPlan struct {
	Symbol     string
	Side       OrderSide
	EntryPrice float64
	LotSize    float64
	StopLoss   float64
	TakeProfit float64
}

// StopDistance returns the absolute price distance between entry and stop-loss.
func (p PositionPlan) StopDistance() float64 {
	if p.StopLoss > p.EntryPrice {
		return p.StopLoss - p.EntryPrice
	}
	return p.EntryPrice - p.StopLoss
}

// SymbolSpec describes the trading constraints of an instrument.
type SymbolSpec struct {
	Symbol     string
	Point      float64 // Smallest price increment (tick size)
	VolumeStep float64 // Lot step; zero means unknown
	VolumeMin  float64
	VolumeMax  float64
	Tradable   bool
}

// PipSize returns the pip size for the instrument: point * 10 to account for
// fractional (5-digit style) quoting.
func (s SymbolSpec) PipSize() float64 {
	return s.Point * 10
}

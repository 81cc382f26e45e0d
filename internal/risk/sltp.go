package risk

import (
	"fmt"

	"traderBot/internal/domain"
	"traderBot/internal/ports"
)

// DistanceInputs carries the market facts the distance methods depend on.
type DistanceInputs struct {
	ATR   float64 // Required by the atr method
	Point float64 // Instrument point size, required by the fixed_pips method
}

// CalculateSLTP derives stop-loss and take-profit prices for a position
// entered at entry. Long stops sit below entry and targets above; short
// positions mirror that.
func (m *Manager) CalculateSLTP(entry float64, side domain.OrderSide, in DistanceInputs) (stopLoss, takeProfit float64, err error) {
	if entry <= 0 {
		return 0, 0, fmt.Errorf("%w: entry price must be positive, got %v", ports.ErrInvalidRiskParameters, entry)
	}
	if side != domain.Buy && side != domain.Sell {
		return 0, 0, fmt.Errorf("%w: unknown side %q", ports.ErrInvalidRiskParameters, side)
	}

	slDist, err := m.distance("stop-loss", m.config.SLMethod, entry, m.config.FixedSLPips, m.config.ATRSLMultiplier, m.config.SLPercentage, in)
	if err != nil {
		return 0, 0, err
	}
	tpDist, err := m.distance("take-profit", m.config.TPMethod, entry, m.config.FixedTPPips, m.config.ATRTPMultiplier, m.config.TPPercentage, in)
	if err != nil {
		return 0, 0, err
	}

	if side == domain.Buy {
		return entry - slDist, entry + tpDist, nil
	}
	return entry + slDist, entry - tpDist, nil
}

func (m *Manager) distance(leg string, method domain.DistanceMethod, entry, pips, multiplier, percentage float64, in DistanceInputs) (float64, error) {
	var d float64
	switch method {
	case domain.DistanceATR:
		d = in.ATR * multiplier
	case domain.DistanceFixedPips:
		d = pips * in.Point * 10
	case domain.DistancePercentage:
		d = entry * percentage / 100
	default:
		return 0, fmt.Errorf("%w: unknown %s method %q", ports.ErrInvalidRiskParameters, leg, method)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: %s distance must be positive (method=%s, distance=%v)", ports.ErrInvalidRiskParameters, leg, method, d)
	}
	return d, nil
}

package risk

import (
	"fmt"

	"github.com/shopspring/decimal"

	"traderBot/internal/ports"
)

// CalculateLotSize sizes a position so that hitting the stop loses
// RiskPercentage of balance. The result is clamped to [MinLotSize, MaxLotSize]
// and floored to lotStep (DefaultLotStep when lotStep <= 0); a floor that lands
// below MinLotSize yields MinLotSize. With dynamic sizing disabled the static
// volume is returned without any calculation.
func (m *Manager) CalculateLotSize(balance, slDistance, pipValuePerLot, pipSize, lotStep float64) (float64, error) {
	if !m.config.EnableDynamicLotSizing {
		return m.config.StaticVolume, nil
	}
	if balance <= 0 {
		return 0, fmt.Errorf("%w: account balance unavailable or non-positive (%v)", ports.ErrInvalidRiskParameters, balance)
	}
	if pipSize <= 0 {
		return 0, fmt.Errorf("%w: pip size must be positive, got %v", ports.ErrInvalidRiskParameters, pipSize)
	}
	slPips := slDistance / pipSize
	if slPips <= 0 {
		return 0, fmt.Errorf("%w: stop-loss distance must be positive, got %v pips", ports.ErrInvalidRiskParameters, slPips)
	}
	if pipValuePerLot <= 0 {
		return 0, fmt.Errorf("%w: pip value per lot must be positive, got %v", ports.ErrInvalidRiskParameters, pipValuePerLot)
	}

	riskAmount := balance * m.config.RiskPercentage / 100
	raw := riskAmount / (slPips * pipValuePerLot)
	return m.normalizeLot(raw, lotStep), nil
}

func (m *Manager) normalizeLot(lot, lotStep float64) float64 {
	if lot < m.config.MinLotSize {
		lot = m.config.MinLotSize
	}
	if lot > m.config.MaxLotSize {
		lot = m.config.MaxLotSize
	}
	if lotStep <= 0 {
		lotStep = m.config.DefaultLotStep
	}

	step := decimal.NewFromFloat(lotStep)
	floored := decimal.NewFromFloat(lot).Div(step).Floor().Mul(step)
	minLot := decimal.NewFromFloat(m.config.MinLotSize)
	if floored.LessThan(minLot) {
		floored = minLot
	}
	return floored.InexactFloat64()
}

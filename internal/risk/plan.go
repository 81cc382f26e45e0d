package risk

import (
	"context"
	"errors"
	"fmt"

	"traderBot/internal/domain"
	"traderBot/internal/ports"
)

// CalculatePositionPlan builds the stop-loss, take-profit and lot size for a
// position on symbol entered at entry. Any failure aborts the plan; nothing
// is defaulted.
func (m *Manager) CalculatePositionPlan(ctx context.Context, symbol string, side domain.OrderSide, entry float64) (*domain.PositionPlan, error) {
	plan, err := m.buildPlan(ctx, symbol, side, entry)
	if err != nil {
		m.metrics.RecordPlanOutcome(planOutcome(err))
		return nil, err
	}
	m.metrics.RecordPlanOutcome("ok")
	m.logger.Info(ctx, "Position plan", map[string]interface{}{
		"symbol":      symbol,
		"side":        string(side),
		"entry":       entry,
		"lot_size":    plan.LotSize,
		"stop_loss":   plan.StopLoss,
		"take_profit": plan.TakeProfit,
	})
	return plan, nil
}

func (m *Manager) buildPlan(ctx context.Context, symbol string, side domain.OrderSide, entry float64) (*domain.PositionPlan, error) {
	spec, err := m.account.GetSymbolSpec(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("get symbol spec for %s: %w", symbol, err)
	}

	inputs := DistanceInputs{Point: spec.Point}
	if m.config.usesATR() {
		klines, err := m.market.GetKlines(ctx, symbol, m.config.ATRTimeframe, m.config.ATRPeriod+1)
		if err != nil {
			return nil, fmt.Errorf("fetch ATR klines for %s: %w", symbol, err)
		}
		inputs.ATR, err = m.CalculateATR(symbol, m.config.ATRTimeframe, m.config.ATRPeriod, klines)
		if err != nil {
			return nil, err
		}
	}

	stopLoss, takeProfit, err := m.CalculateSLTP(entry, side, inputs)
	if err != nil {
		return nil, err
	}

	lot := m.config.StaticVolume
	if m.config.EnableDynamicLotSizing {
		balance, err := m.account.GetBalance(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: account balance unavailable: %w", ports.ErrInvalidRiskParameters, err)
		}
		pipValue, err := m.account.GetPipValuePerLot(ctx, symbol)
		if err != nil {
			return nil, fmt.Errorf("%w: pip value unavailable for %s: %w", ports.ErrInvalidRiskParameters, symbol, err)
		}
		slDistance := entry - stopLoss
		if side == domain.Sell {
			slDistance = stopLoss - entry
		}
		lot, err = m.CalculateLotSize(balance, slDistance, pipValue, spec.PipSize(), spec.VolumeStep)
		if err != nil {
			return nil, err
		}
	}

	return &domain.PositionPlan{
		Symbol:     symbol,
		Side:       side,
		EntryPrice: entry,
		LotSize:    lot,
		StopLoss:   stopLoss,
		TakeProfit: takeProfit,
	}, nil
}

func planOutcome(err error) string {
	switch {
	case errors.Is(err, ports.ErrInsufficientData):
		return "insufficient_data"
	case errors.Is(err, ports.ErrInvalidRiskParameters):
		return "invalid_params"
	case errors.Is(err, ports.ErrDataUnavailable):
		return "data_unavailable"
	default:
		return "error"
	}
}

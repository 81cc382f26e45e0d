package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"traderBot/internal/domain"
	"traderBot/internal/ports"
)

func TestCalculateSLTP(t *testing.T) {
	tests := []struct {
		name   string
		sl, tp domain.DistanceMethod
		entry  float64
		side   domain.OrderSide
		inputs DistanceInputs
		wantSL float64
		wantTP float64
	}{
		{"atr long", domain.DistanceATR, domain.DistanceATR, 100, domain.Buy, DistanceInputs{ATR: 2}, 96, 106},
		{"atr short", domain.DistanceATR, domain.DistanceATR, 100, domain.Sell, DistanceInputs{ATR: 2}, 104, 94},
		{"fixed pips long", domain.DistanceFixedPips, domain.DistanceFixedPips, 1.1, domain.Buy, DistanceInputs{Point: 0.00001}, 1.09, 1.12},
		{"fixed pips short", domain.DistanceFixedPips, domain.DistanceFixedPips, 1.1, domain.Sell, DistanceInputs{Point: 0.00001}, 1.11, 1.08},
		{"percentage long", domain.DistancePercentage, domain.DistancePercentage, 200, domain.Buy, DistanceInputs{}, 199, 202},
		{"percentage short", domain.DistancePercentage, domain.DistancePercentage, 200, domain.Sell, DistanceInputs{}, 201, 198},
		{"mixed methods", domain.DistanceFixedPips, domain.DistanceATR, 1.1, domain.Buy, DistanceInputs{ATR: 0.002, Point: 0.00001}, 1.09, 1.106},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.SLMethod, cfg.TPMethod = tt.sl, tt.tp
			m := newTestManager(t, cfg, nil, nil, nil)

			sl, tp, err := m.CalculateSLTP(tt.entry, tt.side, tt.inputs)
			require.NoError(t, err)
			assert.InDelta(t, tt.wantSL, sl, 1e-9)
			assert.InDelta(t, tt.wantTP, tp, 1e-9)
		})
	}
}

func TestCalculateSLTP_NoSilentFallback(t *testing.T) {
	m := newTestManager(t, DefaultConfig(), nil, nil, nil)

	_, _, err := m.CalculateSLTP(100, domain.Buy, DistanceInputs{ATR: 0, Point: 0.01})
	assert.ErrorIs(t, err, ports.ErrInvalidRiskParameters, "zero ATR must not fall back to fixed pips")

	cfg := DefaultConfig()
	cfg.SLMethod = domain.DistanceFixedPips
	m = newTestManager(t, cfg, nil, nil, nil)
	_, _, err = m.CalculateSLTP(100, domain.Buy, DistanceInputs{ATR: 1, Point: 0})
	assert.ErrorIs(t, err, ports.ErrInvalidRiskParameters)

	_, _, err = m.CalculateSLTP(0, domain.Buy, DistanceInputs{ATR: 1, Point: 0.01})
	assert.ErrorIs(t, err, ports.ErrInvalidRiskParameters)

	_, _, err = m.CalculateSLTP(100, "HOLD", DistanceInputs{ATR: 1, Point: 0.01})
	assert.ErrorIs(t, err, ports.ErrInvalidRiskParameters)
}

package strategies

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"traderBot/internal/domain"
	"traderBot/internal/ports"
)

func TestSimple_GenerateSignal(t *testing.T) {
	s, err := NewSimple("momentum", "1m", DefaultSimpleConfig(), &MockLogger{})
	require.NoError(t, err)

	tests := []struct {
		name   string
		closes []float64
		want   domain.Signal
	}{
		{"up", []float64{100, 101}, domain.SignalBuy},
		{"down", []float64{100, 99}, domain.SignalSell},
		{"flat", []float64{100, 100}, domain.SignalNone},
		{"single bar", []float64{100}, domain.SignalNone},
		{"empty", nil, domain.SignalNone},
		{"only last two matter", []float64{50, 200, 100, 101}, domain.SignalBuy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.GenerateSignal(context.Background(), klinesFromCloses(tt.closes...)))
		})
	}
}

func TestSimple_ConstantPricesNeverSignal(t *testing.T) {
	s, err := NewSimple("momentum", "1m", DefaultSimpleConfig(), &MockLogger{})
	require.NoError(t, err)

	for _, price := range []float64{0.0001, 1, 1.23456, 42000} {
		closes := make([]float64, 25)
		for i := range closes {
			closes[i] = price
		}
		fired := signalsByPrefix(s.GenerateSignal, klinesFromCloses(closes...))
		assert.Empty(t, fired, "price %v", price)
	}
}

func TestNewSimple_Validation(t *testing.T) {
	_, err := NewSimple("momentum", "1m", SimpleConfig{Lookback: 1}, &MockLogger{})
	assert.ErrorIs(t, err, ports.ErrInvalidStrategyConfig)

	_, err = NewSimple("momentum", "1m", DefaultSimpleConfig(), nil)
	assert.Error(t, err)

	_, err = NewSimple("momentum", "", DefaultSimpleConfig(), &MockLogger{})
	assert.ErrorIs(t, err, ports.ErrInvalidStrategyConfig)
}

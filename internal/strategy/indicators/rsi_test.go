package indicators

import (
	"context"
	"math"
	"testing"

	"github.com/markcheno/go-talib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"traderBot/internal/ports"
)

func TestRSI_Calculate(t *testing.T) {
	tests := []struct {
		name        string
		period      int
		closes      []float64
		expected    float64
		expectError bool
	}{
		{
			name:     "Wilder smoothing",
			period:   3,
			closes:   []float64{100, 102, 101, 103, 102, 104},
			expected: 77.272727,
		},
		{
			name:        "Insufficient data",
			period:      7,
			closes:      []float64{100, 102, 101, 103, 102, 104},
			expectError: true,
		},
		{
			name:     "All gains",
			period:   3,
			closes:   []float64{100, 102, 104, 106},
			expected: 100,
		},
		{
			name:     "All losses",
			period:   3,
			closes:   []float64{106, 104, 102, 100},
			expected: 0,
		},
		{
			name:     "Flat series",
			period:   3,
			closes:   []float64{100, 100, 100, 100, 100},
			expected: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rsi := NewRSI(RSIConfig{IndicatorConfig: IndicatorConfig{Period: tt.period}, Overbought: 70, Oversold: 30})
			value, err := rsi.Calculate(context.Background(), klinesFromCloses(tt.closes...))
			if tt.expectError {
				assert.ErrorIs(t, err, ports.ErrInsufficientData)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, value, 1e-4)
		})
	}
}

func TestRSISeries_WilderReference(t *testing.T) {
	series, err := RSISeries(wilderCloses, 14)
	require.NoError(t, err)

	for i := 0; i < 14; i++ {
		assert.True(t, math.IsNaN(series[i]))
	}
	assert.InDelta(t, 70.46, series[14], 0.01)
	assert.InDelta(t, 66.25, series[15], 0.01)
	assert.InDelta(t, 66.48, series[16], 0.01)
	assert.InDelta(t, 37.79, series[len(series)-1], 0.01)
}

func TestRSISeries_MatchesTalib(t *testing.T) {
	ours, err := RSISeries(wilderCloses, 14)
	require.NoError(t, err)
	ref := talib.Rsi(wilderCloses, 14)
	for i := 14; i < len(wilderCloses); i++ {
		assert.InDeltaf(t, ref[i], ours[i], 1e-9, "index %d", i)
	}
}

func TestRSI_Thresholds(t *testing.T) {
	rsi := NewRSI(RSIConfig{IndicatorConfig: IndicatorConfig{Period: 14}, Overbought: 70, Oversold: 30})
	assert.True(t, rsi.IsOverbought(70))
	assert.False(t, rsi.IsOverbought(69.9))
	assert.True(t, rsi.IsOversold(30))
	assert.False(t, rsi.IsOversold(30.1))
	assert.Equal(t, 15, rsi.RequiredDataPoints())
}

package indicators

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"traderBot/internal/domain"
	"traderBot/internal/ports"
)

func TestTrueRange(t *testing.T) {
	prev := &domain.Kline{Close: 100}
	assert.Equal(t, 4.0, TrueRange(&domain.Kline{High: 103, Low: 99}, prev))
	assert.Equal(t, 7.0, TrueRange(&domain.Kline{High: 107, Low: 104}, prev), "gap up uses previous close")
	assert.Equal(t, 6.0, TrueRange(&domain.Kline{High: 96, Low: 94}, prev), "gap down uses previous close")
}

func TestAverageTrueRange(t *testing.T) {
	klines := []*domain.Kline{
		{High: 10, Low: 9, Close: 9.5},
		{High: 11, Low: 9, Close: 10},    // 2
		{High: 10.5, Low: 10, Close: 10}, // 0.5
		{High: 13, Low: 11, Close: 12},   // 3
	}

	atr, err := AverageTrueRange(klines, 3)
	require.NoError(t, err)
	assert.InDelta(t, 5.5/3, atr, 1e-12)

	atr, err = AverageTrueRange(klines, 2)
	require.NoError(t, err)
	assert.InDelta(t, 1.75, atr, 1e-12)

	_, err = AverageTrueRange(klines, 4)
	assert.ErrorIs(t, err, ports.ErrInsufficientData)
}

func TestATR_Indicator(t *testing.T) {
	atr := NewATR(ATRConfig{IndicatorConfig: IndicatorConfig{Period: 14}})
	assert.Equal(t, "ATR", atr.Name())
	assert.Equal(t, 15, atr.RequiredDataPoints())

	_, err := atr.Calculate(context.Background(), klinesFromCloses(1, 2, 3))
	assert.Error(t, err)
}

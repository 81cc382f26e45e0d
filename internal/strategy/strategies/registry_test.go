package strategies

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"traderBot/internal/ports"
)

func TestBuild_Defaults(t *testing.T) {
	tests := []struct {
		kind      Kind
		name      string
		timeframe string
		required  int
	}{
		{KindSimple, "SimpleStrategy", "1m", 2},
		{KindMACrossover, "MAStrategy", "5m", 21},
		{KindRSI, "RSIStrategy", "5m", 16},
		{KindMACD, "MACDStrategy", "15m", 35},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			s, err := Build(Spec{Kind: tt.kind, Enabled: true, Weight: 1}, &MockLogger{})
			require.NoError(t, err)
			assert.Equal(t, tt.name, s.Name())
			assert.Equal(t, tt.timeframe, s.Timeframe())
			assert.Equal(t, tt.required, s.RequiredDataPoints())
		})
	}
}

func TestBuild_Params(t *testing.T) {
	s, err := Build(Spec{
		Kind:      KindMACrossover,
		Name:      "fast-ema",
		Timeframe: "1h",
		Params:    map[string]interface{}{"fast_period": 5, "slow_period": "13", "ma_type": "EMA"},
	}, &MockLogger{})
	require.NoError(t, err)
	assert.Equal(t, "fast-ema", s.Name())
	assert.Equal(t, "1h", s.Timeframe())
	assert.Equal(t, 14, s.RequiredDataPoints())
	assert.Equal(t, 23, s.Lookback())
}

func TestBuild_Rejects(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
	}{
		{"unknown kind", Spec{Kind: "bollinger"}},
		{"negative weight", Spec{Kind: KindSimple, Weight: -0.5}},
		{"unknown param", Spec{Kind: KindRSI, Params: map[string]interface{}{"periodd": 14}}},
		{"out of range param", Spec{Kind: KindRSI, Params: map[string]interface{}{"overbought": 120}}},
		{"bad type", Spec{Kind: KindMACD, Params: map[string]interface{}{"fast_period": "twelve"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.spec, &MockLogger{})
			assert.ErrorIs(t, err, ports.ErrInvalidStrategyConfig)
		})
	}
}

func TestKinds(t *testing.T) {
	assert.Equal(t, []Kind{KindMACrossover, KindMACD, KindRSI, KindSimple}, Kinds())
}

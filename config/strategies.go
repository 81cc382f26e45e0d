package config

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"traderBot/internal/domain"
	"traderBot/internal/ports"
	"traderBot/internal/strategy/strategies"
)

// StrategyFile is the decoded strategy list file.
type StrategyFile struct {
	Method      domain.CombinationMethod
	HistorySize int
	Strategies  []strategies.Spec
}

type strategyFileRaw struct {
	CombinationMethod string             `mapstructure:"combination_method"`
	HistorySize       int                `mapstructure:"history_size"`
	Strategies        []strategyEntryRaw `mapstructure:"strategies"`
}

// Omitted enabled means true and omitted weight means 1.
type strategyEntryRaw struct {
	Kind      string                 `mapstructure:"kind"`
	Name      string                 `mapstructure:"name"`
	Enabled   *bool                  `mapstructure:"enabled"`
	Weight    *float64               `mapstructure:"weight"`
	Timeframe string                 `mapstructure:"timeframe"`
	Params    map[string]interface{} `mapstructure:"params"`
}

// DefaultStrategies returns the stock strategy set: one of each kind with
// its default name, timeframe and parameters.
func DefaultStrategies() []strategies.Spec {
	kinds := strategies.Kinds()
	specs := make([]strategies.Spec, 0, len(kinds))
	for _, k := range kinds {
		s, _ := strategies.Spec{Kind: k, Enabled: true, Weight: 1}.Normalize()
		specs = append(specs, s)
	}
	return specs
}

// LoadStrategies reads a YAML (or any viper-supported) strategy file.
func LoadStrategies(path string) (*StrategyFile, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: strategy file path is empty", ports.ErrConfigurationError)
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%w: read strategy file: %w", ports.ErrConfigurationError, err)
	}
	return decodeStrategies(v)
}

func decodeStrategies(v *viper.Viper) (*StrategyFile, error) {
	var raw strategyFileRaw
	if err := v.Unmarshal(&raw, func(dc *mapstructure.DecoderConfig) { dc.ErrorUnused = true }); err != nil {
		return nil, fmt.Errorf("%w: decode strategy file: %w", ports.ErrInvalidStrategyConfig, err)
	}

	out := &StrategyFile{
		Method:      domain.CombinationMethod(strings.ToLower(raw.CombinationMethod)),
		HistorySize: raw.HistorySize,
	}
	if out.Method != "" && !out.Method.Valid() {
		return nil, fmt.Errorf("%w: unknown combination method %q", ports.ErrInvalidStrategyConfig, raw.CombinationMethod)
	}
	if out.HistorySize < 0 {
		return nil, fmt.Errorf("%w: history_size must be >= 0", ports.ErrInvalidStrategyConfig)
	}

	seen := make(map[string]bool, len(raw.Strategies))
	for i, e := range raw.Strategies {
		spec := strategies.Spec{
			Kind:      strategies.Kind(strings.ToLower(e.Kind)),
			Name:      e.Name,
			Enabled:   true,
			Weight:    1,
			Timeframe: e.Timeframe,
			Params:    e.Params,
		}
		if e.Enabled != nil {
			spec.Enabled = *e.Enabled
		}
		if e.Weight != nil {
			spec.Weight = *e.Weight
		}
		spec, err := spec.Normalize()
		if err != nil {
			return nil, fmt.Errorf("strategies[%d]: %w", i, err)
		}
		if err := spec.Validate(); err != nil {
			return nil, fmt.Errorf("strategies[%d]: %w", i, err)
		}
		if seen[spec.Name] {
			return nil, fmt.Errorf("%w: duplicate strategy name %q", ports.ErrInvalidStrategyConfig, spec.Name)
		}
		seen[spec.Name] = true
		out.Strategies = append(out.Strategies, spec)
	}
	return out, nil
}

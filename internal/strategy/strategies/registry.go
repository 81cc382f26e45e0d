package strategies

import (
	"fmt"
	"sort"

	"github.com/mitchellh/mapstructure"

	"traderBot/internal/ports"
)

// Kind identifies a strategy implementation.
type Kind string

const (
	KindSimple      Kind = "simple"
	KindMACrossover Kind = "ma_crossover"
	KindRSI         Kind = "rsi"
	KindMACD        Kind = "macd"
)

// Spec describes one configured strategy as loaded from the strategy file.
type Spec struct {
	Kind      Kind                   `mapstructure:"kind"`
	Name      string                 `mapstructure:"name"`
	Enabled   bool                   `mapstructure:"enabled"`
	Weight    float64                `mapstructure:"weight"`
	Timeframe string                 `mapstructure:"timeframe"`
	Params    map[string]interface{} `mapstructure:"params"`
}

type factory struct {
	name      string
	timeframe string
	build     func(name, timeframe string, params map[string]interface{}, logger ports.Logger) (ports.Strategy, error)
}

var registry = map[Kind]factory{
	KindSimple: {
		name:      "SimpleStrategy",
		timeframe: "1m",
		build: func(name, timeframe string, params map[string]interface{}, logger ports.Logger) (ports.Strategy, error) {
			cfg := DefaultSimpleConfig()
			if err := decodeParams(name, params, &cfg); err != nil {
				return nil, err
			}
			return NewSimple(name, timeframe, cfg, logger)
		},
	},
	KindMACrossover: {
		name:      "MAStrategy",
		timeframe: "5m",
		build: func(name, timeframe string, params map[string]interface{}, logger ports.Logger) (ports.Strategy, error) {
			cfg := DefaultMACrossoverConfig()
			if err := decodeParams(name, params, &cfg); err != nil {
				return nil, err
			}
			return NewMACrossover(name, timeframe, cfg, logger)
		},
	},
	KindRSI: {
		name:      "RSIStrategy",
		timeframe: "5m",
		build: func(name, timeframe string, params map[string]interface{}, logger ports.Logger) (ports.Strategy, error) {
			cfg := DefaultRSIConfig()
			if err := decodeParams(name, params, &cfg); err != nil {
				return nil, err
			}
			return NewRSIStrategy(name, timeframe, cfg, logger)
		},
	},
	KindMACD: {
		name:      "MACDStrategy",
		timeframe: "15m",
		build: func(name, timeframe string, params map[string]interface{}, logger ports.Logger) (ports.Strategy, error) {
			cfg := DefaultMACDConfig()
			if err := decodeParams(name, params, &cfg); err != nil {
				return nil, err
			}
			return NewMACDStrategy(name, timeframe, cfg, logger)
		},
	},
}

// Kinds returns the registered strategy kinds in sorted order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Normalize fills the default name and timeframe for s.Kind.
func (s Spec) Normalize() (Spec, error) {
	f, ok := registry[s.Kind]
	if !ok {
		return s, fmt.Errorf("%w: unknown strategy kind %q", ports.ErrInvalidStrategyConfig, s.Kind)
	}
	if s.Name == "" {
		s.Name = f.name
	}
	if s.Timeframe == "" {
		s.Timeframe = f.timeframe
	}
	return s, nil
}

// Validate checks the fields shared by every kind.
func (s Spec) Validate() error {
	if _, ok := registry[s.Kind]; !ok {
		return fmt.Errorf("%w: unknown strategy kind %q", ports.ErrInvalidStrategyConfig, s.Kind)
	}
	if s.Weight < 0 {
		return fmt.Errorf("%w: %s weight must be >= 0, got %v", ports.ErrInvalidStrategyConfig, s.Name, s.Weight)
	}
	return nil
}

// Build constructs the strategy described by spec.
func Build(spec Spec, logger ports.Logger) (ports.Strategy, error) {
	spec, err := spec.Normalize()
	if err != nil {
		return nil, err
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return registry[spec.Kind].build(spec.Name, spec.Timeframe, spec.Params, logger)
}

func decodeParams(name string, params map[string]interface{}, out interface{}) error {
	if len(params) == 0 {
		return nil
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("create params decoder: %w", err)
	}
	if err := decoder.Decode(params); err != nil {
		return fmt.Errorf("%w: %s params: %v", ports.ErrInvalidStrategyConfig, name, err)
	}
	return nil
}

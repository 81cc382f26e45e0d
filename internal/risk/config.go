package risk

import (
	"errors"
	"fmt"

	"traderBot/internal/domain"
	"traderBot/internal/ports"
)

// Config holds configuration for risk management
type Config struct {
	RiskPercentage    float64 // % of balance risked per trade
	MaxRiskPercentage float64
	MinLotSize        float64
	MaxLotSize        float64

	SLMethod domain.DistanceMethod
	TPMethod domain.DistanceMethod

	FixedSLPips float64
	FixedTPPips float64

	ATRPeriod       int
	ATRTimeframe    string // Kline interval used for ATR in position plans
	ATRSLMultiplier float64
	ATRTPMultiplier float64

	SLPercentage float64 // % of entry price
	TPPercentage float64

	DailyLossLimit    float64 // Account currency
	DailyProfitTarget float64 // Account currency
	EnableDailyLimits bool

	EnableDynamicLotSizing bool
	StaticVolume           float64 // Lot size used when dynamic sizing is off
	DefaultLotStep         float64 // Used when the instrument does not report one
}

// DefaultConfig returns the stock risk settings.
func DefaultConfig() Config {
	return Config{
		RiskPercentage:         1.0,
		MaxRiskPercentage:      5.0,
		MinLotSize:             0.01,
		MaxLotSize:             1.0,
		SLMethod:               domain.DistanceATR,
		TPMethod:               domain.DistanceATR,
		FixedSLPips:            100,
		FixedTPPips:            200,
		ATRPeriod:              14,
		ATRTimeframe:           "1h",
		ATRSLMultiplier:        2.0,
		ATRTPMultiplier:        3.0,
		SLPercentage:           0.5,
		TPPercentage:           1.0,
		DailyLossLimit:         500,
		DailyProfitTarget:      1000,
		EnableDailyLimits:      true,
		EnableDynamicLotSizing: true,
		StaticVolume:           0.01,
		DefaultLotStep:         0.01,
	}
}

// Validate checks internal consistency and returns every problem found.
func (c Config) Validate() error {
	var errs []error
	add := func(format string, args ...interface{}) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if c.MinLotSize <= 0 {
		add("min lot size must be positive, got %v", c.MinLotSize)
	}
	if c.MinLotSize > c.MaxLotSize {
		add("min lot size %v exceeds max lot size %v", c.MinLotSize, c.MaxLotSize)
	}
	if c.RiskPercentage > c.MaxRiskPercentage {
		add("risk percentage %v exceeds max risk percentage %v", c.RiskPercentage, c.MaxRiskPercentage)
	}
	if c.EnableDynamicLotSizing && c.RiskPercentage <= 0 {
		add("risk percentage must be positive, got %v", c.RiskPercentage)
	}
	if !c.EnableDynamicLotSizing && c.StaticVolume <= 0 {
		add("static volume must be positive when dynamic lot sizing is disabled, got %v", c.StaticVolume)
	}
	if c.DefaultLotStep <= 0 {
		add("default lot step must be positive, got %v", c.DefaultLotStep)
	}

	for _, leg := range []struct {
		name       string
		method     domain.DistanceMethod
		pips       float64
		multiplier float64
		percentage float64
	}{
		{"stop-loss", c.SLMethod, c.FixedSLPips, c.ATRSLMultiplier, c.SLPercentage},
		{"take-profit", c.TPMethod, c.FixedTPPips, c.ATRTPMultiplier, c.TPPercentage},
	} {
		switch leg.method {
		case domain.DistanceFixedPips:
			if leg.pips <= 0 {
				add("%s fixed pips must be positive, got %v", leg.name, leg.pips)
			}
		case domain.DistanceATR:
			if leg.multiplier <= 0 {
				add("%s ATR multiplier must be positive, got %v", leg.name, leg.multiplier)
			}
			if c.ATRPeriod <= 0 {
				add("ATR period must be positive, got %d", c.ATRPeriod)
			}
			if c.ATRTimeframe == "" {
				add("ATR timeframe is required for the atr method")
			}
		case domain.DistancePercentage:
			if leg.percentage <= 0 || leg.percentage >= 100 {
				add("%s percentage must be in (0, 100), got %v", leg.name, leg.percentage)
			}
		default:
			add("unknown %s method %q", leg.name, leg.method)
		}
	}

	if c.EnableDailyLimits {
		if c.DailyLossLimit <= 0 {
			add("daily loss limit must be positive, got %v", c.DailyLossLimit)
		}
		if c.DailyProfitTarget <= 0 {
			add("daily profit target must be positive, got %v", c.DailyProfitTarget)
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ports.ErrInvalidRiskParameters, errors.Join(errs...))
}

func (c Config) usesATR() bool {
	return c.SLMethod == domain.DistanceATR || c.TPMethod == domain.DistanceATR
}

// Package paper provides a fixed-balance account for dry runs and CSV replays.
package paper

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"traderBot/internal/domain"
	"traderBot/internal/ports"
)

// Config describes the simulated account. Every symbol shares the same
// instrument constraints.
type Config struct {
	Balance      float64
	Point        float64
	VolumeStep   float64
	VolumeMin    float64
	VolumeMax    float64
	ContractSize float64
	// Halted symbols report IsTradable false.
	Halted []string
}

// Account implements ports.Account with static values.
type Account struct {
	cfg Config

	mu     sync.RWMutex
	halted map[string]bool
}

var _ ports.Account = (*Account)(nil)

// New validates cfg and returns an Account.
func New(cfg Config) (*Account, error) {
	if cfg.ContractSize == 0 {
		cfg.ContractSize = 1
	}
	switch {
	case cfg.Balance <= 0:
		return nil, fmt.Errorf("%w: paper balance must be positive", ports.ErrConfigurationError)
	case cfg.Point <= 0:
		return nil, fmt.Errorf("%w: paper point size must be positive", ports.ErrConfigurationError)
	case cfg.VolumeStep < 0 || cfg.VolumeMin < 0:
		return nil, fmt.Errorf("%w: paper volume bounds must not be negative", ports.ErrConfigurationError)
	case cfg.VolumeMax > 0 && cfg.VolumeMax < cfg.VolumeMin:
		return nil, fmt.Errorf("%w: paper max volume below min volume", ports.ErrConfigurationError)
	}
	a := &Account{cfg: cfg, halted: make(map[string]bool)}
	for _, s := range cfg.Halted {
		a.halted[strings.ToUpper(s)] = true
	}
	return a, nil
}

func (a *Account) GetBalance(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return a.cfg.Balance, nil
}

// GetPipValuePerLot returns pip size times contract size.
func (a *Account) GetPipValuePerLot(ctx context.Context, symbol string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return a.cfg.Point * 10 * a.cfg.ContractSize, nil
}

func (a *Account) GetSymbolSpec(ctx context.Context, symbol string) (*domain.SymbolSpec, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tradable, _ := a.IsTradable(ctx, symbol)
	return &domain.SymbolSpec{
		Symbol:     symbol,
		Point:      a.cfg.Point,
		VolumeStep: a.cfg.VolumeStep,
		VolumeMin:  a.cfg.VolumeMin,
		VolumeMax:  a.cfg.VolumeMax,
		Tradable:   tradable,
	}, nil
}

func (a *Account) IsTradable(ctx context.Context, symbol string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	return !a.halted[strings.ToUpper(symbol)], nil
}

// SetHalted toggles trading for symbol.
func (a *Account) SetHalted(symbol string, halted bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if halted {
		a.halted[strings.ToUpper(symbol)] = true
	} else {
		delete(a.halted, strings.ToUpper(symbol))
	}
}

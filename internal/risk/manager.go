package risk

import (
	"context"
	"fmt"
	"sync"
	"time"

	"traderBot/internal/domain"
	"traderBot/internal/monitoring"
	"traderBot/internal/ports"
)

// Options wires a Manager to its collaborators.
type Options struct {
	Config  Config
	Store   ports.DailyPnLStore
	Market  ports.MarketData
	Account ports.Account
	Logger  ports.Logger
	Metrics *monitoring.Metrics
	Now     func() time.Time
}

// Manager derives stop-loss/take-profit levels and lot sizes, and gates
// trading on the persisted daily realized P/L.
type Manager struct {
	config  Config
	store   ports.DailyPnLStore
	market  ports.MarketData
	account ports.Account
	logger  ports.Logger
	metrics *monitoring.Metrics
	now     func() time.Time

	atrMu    sync.Mutex
	atrCache map[atrKey]atrEntry

	// dailyMu is held across update-and-save so readers never observe an
	// update that is not yet persisted.
	dailyMu    sync.Mutex
	daily      domain.DailyPnLMap
	persistErr error
	closed     bool
}

// NewManager validates the configuration and creates a Manager. Call Load
// before use to restore persisted daily state.
func NewManager(opts Options) (*Manager, error) {
	if opts.Logger == nil {
		return nil, fmt.Errorf("%w: logger is required", ports.ErrConfigurationError)
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("%w: daily P/L store is required", ports.ErrConfigurationError)
	}
	if opts.Market == nil || opts.Account == nil {
		return nil, fmt.Errorf("%w: market data and account are required", ports.ErrConfigurationError)
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Manager{
		config:   opts.Config,
		store:    opts.Store,
		market:   opts.Market,
		account:  opts.Account,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		now:      opts.Now,
		atrCache: make(map[atrKey]atrEntry),
		daily:    make(domain.DailyPnLMap),
	}, nil
}

// Config returns the active configuration.
func (m *Manager) Config() Config {
	return m.config
}

// ValidateTrade checks, in order: lot size within the configured bounds,
// the daily gate, symbol tradability and the instrument's own volume bounds.
// It returns the first failure.
func (m *Manager) ValidateTrade(ctx context.Context, plan *domain.PositionPlan) error {
	if plan == nil {
		return fmt.Errorf("%w: nil position plan", ports.ErrInvalidRequest)
	}
	if plan.LotSize < m.config.MinLotSize {
		return fmt.Errorf("%w: lot size %v below minimum %v", ports.ErrLotSizeOutOfRange, plan.LotSize, m.config.MinLotSize)
	}
	if plan.LotSize > m.config.MaxLotSize {
		return fmt.Errorf("%w: lot size %v above maximum %v", ports.ErrLotSizeOutOfRange, plan.LotSize, m.config.MaxLotSize)
	}

	if ok, reason := m.TradingStatus(); !ok {
		return fmt.Errorf("%w: %s", ports.ErrTradingHalted, reason)
	}

	tradable, err := m.account.IsTradable(ctx, plan.Symbol)
	if err != nil {
		return fmt.Errorf("check tradability of %s: %w", plan.Symbol, err)
	}
	if !tradable {
		return fmt.Errorf("%w: %s", ports.ErrSymbolNotTradable, plan.Symbol)
	}

	spec, err := m.account.GetSymbolSpec(ctx, plan.Symbol)
	if err != nil {
		return fmt.Errorf("get symbol spec for %s: %w", plan.Symbol, err)
	}
	if spec.VolumeMin > 0 && plan.LotSize < spec.VolumeMin {
		return fmt.Errorf("%w: lot size %v below symbol minimum %v", ports.ErrLotSizeOutOfRange, plan.LotSize, spec.VolumeMin)
	}
	if spec.VolumeMax > 0 && plan.LotSize > spec.VolumeMax {
		return fmt.Errorf("%w: lot size %v above symbol maximum %v", ports.ErrLotSizeOutOfRange, plan.LotSize, spec.VolumeMax)
	}
	return nil
}

package strategy

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"traderBot/internal/domain"
	"traderBot/internal/monitoring"
	"traderBot/internal/ports"
	"traderBot/internal/strategy/strategies"
)

// Options configures a Manager.
type Options struct {
	Market      ports.MarketData
	Logger      ports.Logger
	Metrics     *monitoring.Metrics
	Method      domain.CombinationMethod
	HistorySize int
	// Parallelism bounds concurrent strategy evaluations. Zero or less means one at a time.
	Parallelism int
	Now         func() time.Time
}

// Info describes a registered strategy.
type Info struct {
	Name      string  `json:"name"`
	Timeframe string  `json:"timeframe"`
	Enabled   bool    `json:"enabled"`
	Weight    float64 `json:"weight"`
	Required  int     `json:"required_bars"`
}

type entry struct {
	strategy ports.Strategy
	enabled  bool
	weight   float64
}

// Manager holds a weighted, switchable set of strategies and reconciles their
// signals into one combined signal.
type Manager struct {
	mu      sync.RWMutex
	entries []*entry
	method  domain.CombinationMethod

	market      ports.MarketData
	logger      ports.Logger
	metrics     *monitoring.Metrics
	history     *history
	parallelism int
	now         func() time.Time
}

// NewManager creates an empty Manager.
func NewManager(opts Options) (*Manager, error) {
	if opts.Logger == nil {
		return nil, fmt.Errorf("%w: logger is required", ports.ErrConfigurationError)
	}
	if opts.Market == nil {
		return nil, fmt.Errorf("%w: market data is required", ports.ErrConfigurationError)
	}
	if opts.Method == "" {
		opts.Method = domain.MethodWeighted
	}
	if !opts.Method.Valid() {
		return nil, fmt.Errorf("%w: unknown combination method %q", ports.ErrConfigurationError, opts.Method)
	}
	if opts.Parallelism <= 0 {
		opts.Parallelism = 1
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Manager{
		method:      opts.Method,
		market:      opts.Market,
		logger:      opts.Logger,
		metrics:     opts.Metrics,
		history:     newHistory(opts.HistorySize),
		parallelism: opts.Parallelism,
		now:         opts.Now,
	}, nil
}

// AddStrategy registers s. Names must be unique.
func (m *Manager) AddStrategy(s ports.Strategy, enabled bool, weight float64) error {
	if s == nil {
		return fmt.Errorf("%w: nil strategy", ports.ErrInvalidStrategyConfig)
	}
	if weight < 0 {
		return fmt.Errorf("%w: %s weight must be >= 0, got %v", ports.ErrInvalidStrategyConfig, s.Name(), weight)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.find(s.Name()) != nil {
		return fmt.Errorf("%w: duplicate strategy name %q", ports.ErrInvalidStrategyConfig, s.Name())
	}
	m.entries = append(m.entries, &entry{strategy: s, enabled: enabled, weight: weight})
	return nil
}

// RemoveStrategy unregisters the named strategy.
func (m *Manager) RemoveStrategy(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.entries {
		if e.strategy.Name() == name {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ports.ErrStrategyNotFound, name)
}

// Enable includes the named strategy in future rounds.
func (m *Manager) Enable(name string) error {
	return m.update(name, func(e *entry) { e.enabled = true })
}

// Disable excludes the named strategy from future rounds.
func (m *Manager) Disable(name string) error {
	return m.update(name, func(e *entry) { e.enabled = false })
}

// SetWeight changes the weight used by the weighted method.
func (m *Manager) SetWeight(name string, weight float64) error {
	if weight < 0 {
		return fmt.Errorf("%w: %s weight must be >= 0, got %v", ports.ErrInvalidStrategyConfig, name, weight)
	}
	return m.update(name, func(e *entry) { e.weight = weight })
}

// EnableAll enables every registered strategy.
func (m *Manager) EnableAll() {
	m.setAll(true)
}

// DisableAll disables every registered strategy.
func (m *Manager) DisableAll() {
	m.setAll(false)
}

// SetMethod changes the combination method.
func (m *Manager) SetMethod(method domain.CombinationMethod) error {
	if !method.Valid() {
		return fmt.Errorf("%w: unknown combination method %q", ports.ErrConfigurationError, method)
	}
	m.mu.Lock()
	m.method = method
	m.mu.Unlock()
	return nil
}

// Method returns the current combination method.
func (m *Manager) Method() domain.CombinationMethod {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.method
}

// Strategies lists registered strategies in registration order.
func (m *Manager) Strategies() []Info {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Info, len(m.entries))
	for i, e := range m.entries {
		out[i] = Info{
			Name:      e.strategy.Name(),
			Timeframe: e.strategy.Timeframe(),
			Enabled:   e.enabled,
			Weight:    e.weight,
			Required:  e.strategy.RequiredDataPoints(),
		}
	}
	return out
}

// History returns the retained combined decisions, oldest first.
func (m *Manager) History() []Decision {
	return m.history.snapshot()
}

// Apply updates method, enabled flags and weights from reloaded settings.
// Specs naming unknown strategies are logged and skipped. Nothing changes if
// any value is invalid.
func (m *Manager) Apply(ctx context.Context, method domain.CombinationMethod, specs []strategies.Spec) error {
	if method != "" && !method.Valid() {
		return fmt.Errorf("%w: unknown combination method %q", ports.ErrConfigurationError, method)
	}
	for _, s := range specs {
		if s.Weight < 0 {
			return fmt.Errorf("%w: %s weight must be >= 0, got %v", ports.ErrInvalidStrategyConfig, s.Name, s.Weight)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if method != "" {
		m.method = method
	}
	for _, s := range specs {
		e := m.find(s.Name)
		if e == nil {
			m.logger.Warn(ctx, "Reloaded settings name an unknown strategy", map[string]interface{}{"strategy": s.Name})
			continue
		}
		e.enabled = s.Enabled
		e.weight = s.Weight
	}
	return nil
}

// GenerateCombinedSignal evaluates every enabled strategy on fresh market data
// and combines their signals. A strategy whose data cannot be fetched votes
// NONE. The only error returned is the context's.
func (m *Manager) GenerateCombinedSignal(ctx context.Context, symbol string) (domain.Signal, error) {
	m.mu.RLock()
	method := m.method
	active := make([]entry, 0, len(m.entries))
	for _, e := range m.entries {
		if e.enabled {
			active = append(active, *e)
		}
	}
	m.mu.RUnlock()

	votes := make([]Vote, len(active))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.parallelism)
	for i := range active {
		i, e := i, active[i]
		g.Go(func() error {
			votes[i] = m.evaluate(gctx, symbol, e)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return domain.SignalNone, err
	}

	combined := Combine(method, votes)
	m.history.add(Decision{
		ID:       uuid.NewString(),
		Time:     m.now(),
		Symbol:   symbol,
		Method:   method,
		Combined: combined,
		Votes:    votes,
	})
	m.metrics.RecordCombinedSignal(string(method), string(combined))
	m.logger.Info(ctx, "Combined signal", map[string]interface{}{
		"symbol":     symbol,
		"method":     string(method),
		"signal":     string(combined),
		"strategies": len(votes),
	})
	return combined, nil
}

func (m *Manager) evaluate(ctx context.Context, symbol string, e entry) Vote {
	s := e.strategy
	vote := Vote{Strategy: s.Name(), Weight: e.weight, Signal: domain.SignalNone}

	klines, err := m.market.GetKlines(ctx, symbol, s.Timeframe(), s.Lookback())
	if err != nil {
		vote.Err = err.Error()
		m.metrics.RecordStrategyError(s.Name())
		m.logger.Warn(ctx, "Market data unavailable, strategy votes NONE", map[string]interface{}{
			"strategy":  s.Name(),
			"timeframe": s.Timeframe(),
			"error":     err.Error(),
		})
		return vote
	}

	vote.Signal = s.GenerateSignal(ctx, klines)
	m.metrics.RecordStrategySignal(s.Name(), string(vote.Signal))
	return vote
}

func (m *Manager) update(name string, fn func(*entry)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.find(name)
	if e == nil {
		return fmt.Errorf("%w: %s", ports.ErrStrategyNotFound, name)
	}
	fn(e)
	return nil
}

func (m *Manager) setAll(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		e.enabled = enabled
	}
}

// find must be called with mu held.
func (m *Manager) find(name string) *entry {
	for _, e := range m.entries {
		if e.strategy.Name() == name {
			return e
		}
	}
	return nil
}

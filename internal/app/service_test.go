package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"traderBot/internal/adapters/sqlite"
	"traderBot/internal/domain"
	"traderBot/internal/ports"
)

type mockLogger struct {
	mu        sync.Mutex
	infoMsgs  []string
	warnMsgs  []string
	errorMsgs []string
}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}

func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.infoMsgs = append(m.infoMsgs, msg)
}

func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.warnMsgs = append(m.warnMsgs, msg)
}

func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorMsgs = append(m.errorMsgs, msg)
}

type mockSignals struct {
	signal domain.Signal
	err    error
	calls  int
}

func (m *mockSignals) GenerateCombinedSignal(ctx context.Context, symbol string) (domain.Signal, error) {
	m.calls++
	return m.signal, m.err
}

type mockRisk struct {
	mu          sync.Mutex
	allowed     bool
	reason      string
	plan        *domain.PositionPlan
	planErr     error
	validateErr error
	updateErr   error
	updates     []float64
	flushErr    error
	flushes     int
	planSide    domain.OrderSide
	closed      int
}

func (m *mockRisk) TradingStatus() (bool, string) { return m.allowed, m.reason }

func (m *mockRisk) UpdateDailyPnL(ctx context.Context, profit float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates = append(m.updates, profit)
	return m.updateErr
}

func (m *mockRisk) Flush(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flushes++
	return m.flushErr
}

func (m *mockRisk) CalculatePositionPlan(ctx context.Context, symbol string, side domain.OrderSide, entry float64) (*domain.PositionPlan, error) {
	m.planSide = side
	if m.planErr != nil {
		return nil, m.planErr
	}
	p := *m.plan
	p.Side = side
	p.EntryPrice = entry
	return &p, nil
}

func (m *mockRisk) ValidateTrade(ctx context.Context, plan *domain.PositionPlan) error {
	return m.validateErr
}

func (m *mockRisk) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed++
	return nil
}

type mockMarket struct {
	price float64
	err   error
}

func (m *mockMarket) GetKlines(ctx context.Context, symbol, interval string, limit int) ([]*domain.Kline, error) {
	return nil, ports.ErrDataUnavailable
}

func (m *mockMarket) GetTickerPrice(ctx context.Context, symbol string) (float64, error) {
	return m.price, m.err
}

type mockAccount struct{ point float64 }

func (m *mockAccount) GetBalance(ctx context.Context) (float64, error) { return 10000, nil }
func (m *mockAccount) GetPipValuePerLot(ctx context.Context, symbol string) (float64, error) {
	return 1, nil
}
func (m *mockAccount) GetSymbolSpec(ctx context.Context, symbol string) (*domain.SymbolSpec, error) {
	return &domain.SymbolSpec{Symbol: symbol, Point: m.point, Tradable: true}, nil
}
func (m *mockAccount) IsTradable(ctx context.Context, symbol string) (bool, error) { return true, nil }

type placedOrder struct {
	kind      string
	side      domain.OrderSide
	quantity  string
	stopPrice string
}

type mockOrders struct {
	placed []placedOrder
	errs   map[string]error
}

func (m *mockOrders) place(kind string, side domain.OrderSide, qty, stop string) (*ports.OrderResponse, error) {
	m.placed = append(m.placed, placedOrder{kind: kind, side: side, quantity: qty, stopPrice: stop})
	if err := m.errs[kind]; err != nil {
		return nil, err
	}
	return &ports.OrderResponse{OrderID: int64(len(m.placed)), Side: string(side)}, nil
}

func (m *mockOrders) PlaceMarketOrder(ctx context.Context, symbol string, side domain.OrderSide, quantity string) (*ports.OrderResponse, error) {
	return m.place("market", side, quantity, "")
}

func (m *mockOrders) PlaceStopMarketOrder(ctx context.Context, symbol string, side domain.OrderSide, quantity, stopPrice string) (*ports.OrderResponse, error) {
	return m.place("stop", side, quantity, stopPrice)
}

func (m *mockOrders) PlaceTakeProfitMarketOrder(ctx context.Context, symbol string, side domain.OrderSide, quantity, stopPrice string) (*ports.OrderResponse, error) {
	return m.place("tp", side, quantity, stopPrice)
}

type mockFeed struct {
	trades []*domain.Trade
	since  []time.Time
}

func (m *mockFeed) ClosedTradesSince(ctx context.Context, symbol string, since time.Time) ([]*domain.Trade, error) {
	m.since = append(m.since, since)
	var out []*domain.Trade
	for _, t := range m.trades {
		if t.ExitTime.After(since) {
			out = append(out, t)
		}
	}
	return out, nil
}

type mockTradeLog struct {
	recorded map[int64]*domain.Trade
}

func (m *mockTradeLog) HasTrade(ctx context.Context, id int64) (bool, error) {
	_, ok := m.recorded[id]
	return ok, nil
}

func (m *mockTradeLog) RecordTrade(ctx context.Context, t *domain.Trade) (bool, error) {
	if _, ok := m.recorded[t.ID]; ok {
		return false, nil
	}
	m.recorded[t.ID] = t
	return true, nil
}

func (m *mockTradeLog) LastExitTime(ctx context.Context, symbol string) (time.Time, error) {
	var last time.Time
	for _, t := range m.recorded {
		if t.ExitTime.After(last) {
			last = t.ExitTime
		}
	}
	return last, nil
}

var testNow = time.Date(2025, 6, 10, 14, 0, 0, 0, time.Local)

type fixture struct {
	signals *mockSignals
	risk    *mockRisk
	market  *mockMarket
	orders  *mockOrders
	logger  *mockLogger
}

func newFixture() *fixture {
	return &fixture{
		signals: &mockSignals{signal: domain.SignalBuy},
		risk: &mockRisk{
			allowed: true,
			plan:    &domain.PositionPlan{Symbol: "BTCUSDT", LotSize: 0.25, StopLoss: 96.123, TakeProfit: 106.456},
		},
		market: &mockMarket{price: 100},
		orders: &mockOrders{errs: map[string]error{}},
		logger: &mockLogger{},
	}
}

func (f *fixture) service(t *testing.T, mutate func(*Options)) *TradingService {
	t.Helper()
	opts := Options{
		Symbol:  "BTCUSDT",
		Signals: f.signals,
		Risk:    f.risk,
		Market:  f.market,
		Account: &mockAccount{point: 0.1},
		Orders:  f.orders,
		Logger:  f.logger,
		Now:     func() time.Time { return testNow },
	}
	if mutate != nil {
		mutate(&opts)
	}
	s, err := NewTradingService(opts)
	require.NoError(t, err)
	return s
}

func TestNewTradingService_Validation(t *testing.T) {
	f := newFixture()
	base := Options{Symbol: "X", Signals: f.signals, Risk: f.risk, Market: f.market, Orders: f.orders, Logger: f.logger}

	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{"no logger", func(o *Options) { o.Logger = nil }},
		{"no symbol", func(o *Options) { o.Symbol = "" }},
		{"no signals", func(o *Options) { o.Signals = nil }},
		{"no orders in live mode", func(o *Options) { o.Orders = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := base
			tt.mutate(&opts)
			_, err := NewTradingService(opts)
			assert.ErrorIs(t, err, ports.ErrConfigurationError)
		})
	}

	dry := base
	dry.Orders = nil
	dry.DryRun = true
	_, err := NewTradingService(dry)
	assert.NoError(t, err)
}

func TestRunOnce_ExecutesBuyWithProtectiveOrders(t *testing.T) {
	f := newFixture()
	s := f.service(t, nil)

	outcome, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeExecuted, outcome)
	assert.Equal(t, domain.Buy, f.risk.planSide)

	require.Len(t, f.orders.placed, 3)
	assert.Equal(t, placedOrder{kind: "market", side: domain.Buy, quantity: "0.25"}, f.orders.placed[0])
	assert.Equal(t, placedOrder{kind: "stop", side: domain.Sell, quantity: "0.25", stopPrice: "96.1"}, f.orders.placed[1])
	assert.Equal(t, placedOrder{kind: "tp", side: domain.Sell, quantity: "0.25", stopPrice: "106.5"}, f.orders.placed[2])
}

func TestRunOnce_SellSignalUsesBuyExits(t *testing.T) {
	f := newFixture()
	f.signals.signal = domain.SignalSell
	s := f.service(t, nil)

	_, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	require.Len(t, f.orders.placed, 3)
	assert.Equal(t, domain.Sell, f.orders.placed[0].side)
	assert.Equal(t, domain.Buy, f.orders.placed[1].side)
	assert.Equal(t, domain.Buy, f.orders.placed[2].side)
}

func TestRunOnce_StopsEarly(t *testing.T) {
	planErr := errors.New("atr unavailable")

	tests := []struct {
		name        string
		setup       func(f *fixture)
		wantOutcome Outcome
		wantErr     error
		wantSignal  bool
	}{
		{
			name:        "halted by daily limits",
			setup:       func(f *fixture) { f.risk.allowed = false; f.risk.reason = "daily loss limit reached: -500.00" },
			wantOutcome: OutcomeHalted,
		},
		{
			name:        "no signal",
			setup:       func(f *fixture) { f.signals.signal = domain.SignalNone },
			wantOutcome: OutcomeNoSignal,
			wantSignal:  true,
		},
		{
			name:        "plan failure is not defaulted",
			setup:       func(f *fixture) { f.risk.planErr = planErr },
			wantOutcome: OutcomeRejected,
			wantErr:     planErr,
			wantSignal:  true,
		},
		{
			name:        "validation failure",
			setup:       func(f *fixture) { f.risk.validateErr = ports.ErrLotSizeOutOfRange },
			wantOutcome: OutcomeRejected,
			wantErr:     ports.ErrLotSizeOutOfRange,
			wantSignal:  true,
		},
		{
			name:        "ticker failure",
			setup:       func(f *fixture) { f.market.err = ports.ErrDataUnavailable },
			wantOutcome: OutcomeNoSignal,
			wantErr:     ports.ErrDataUnavailable,
			wantSignal:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			tt.setup(f)
			s := f.service(t, nil)

			outcome, err := s.RunOnce(context.Background())
			assert.Equal(t, tt.wantOutcome, outcome)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Empty(t, f.orders.placed)
			assert.Equal(t, tt.wantSignal, f.signals.calls > 0)
		})
	}
}

func TestRunOnce_DryRunPlacesNothing(t *testing.T) {
	f := newFixture()
	s := f.service(t, func(o *Options) { o.DryRun = true; o.Orders = nil })

	outcome, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeDryRun, outcome)
	assert.Contains(t, f.logger.infoMsgs, "Dry run: order not placed")
}

func TestRunOnce_StopLossFailureClosesPosition(t *testing.T) {
	f := newFixture()
	f.orders.errs["stop"] = ports.ErrOrderPlacementFailed
	s := f.service(t, nil)

	_, err := s.RunOnce(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ports.ErrOrderPlacementFailed)

	require.Len(t, f.orders.placed, 3)
	assert.Equal(t, "stop", f.orders.placed[1].kind)
	assert.Equal(t, placedOrder{kind: "market", side: domain.Sell, quantity: "0.25"}, f.orders.placed[2])
}

func TestSyncRealizedPnL_AppliesEachTradeOnce(t *testing.T) {
	f := newFixture()
	feed := &mockFeed{trades: []*domain.Trade{
		{ID: 1, Symbol: "BTCUSDT", PNL: -40, ExitTime: testNow.Add(-26 * time.Hour)},
		{ID: 2, Symbol: "BTCUSDT", PNL: 25, ExitTime: testNow.Add(-2 * time.Hour)},
		{ID: 3, Symbol: "BTCUSDT", PNL: -10, ExitTime: testNow.Add(-time.Hour)},
	}}
	log := &mockTradeLog{recorded: map[int64]*domain.Trade{}}
	s := f.service(t, func(o *Options) { o.PnLFeed = feed; o.TradeLog = log })
	ctx := context.Background()

	require.NoError(t, s.SyncRealizedPnL(ctx))
	assert.Equal(t, []float64{25, -10}, f.risk.updates)

	require.NoError(t, s.SyncRealizedPnL(ctx))
	assert.Equal(t, []float64{25, -10}, f.risk.updates, "second sync must not re-apply")
	assert.Len(t, log.recorded, 2)

	dayStart := time.Date(testNow.Year(), testNow.Month(), testNow.Day(), 0, 0, 0, 0, time.Local)
	assert.True(t, feed.since[0].Equal(dayStart))
	assert.True(t, feed.since[1].Equal(testNow.Add(-time.Hour-time.Millisecond)))
}

func TestSyncRealizedPnL_WithoutTradeLogStartsAtLaunch(t *testing.T) {
	f := newFixture()
	feed := &mockFeed{trades: []*domain.Trade{
		{ID: 1, PNL: 99, ExitTime: testNow.Add(-time.Minute)},
		{ID: 2, PNL: 5, ExitTime: testNow.Add(time.Minute)},
	}}
	s := f.service(t, func(o *Options) { o.PnLFeed = feed })

	require.NoError(t, s.SyncRealizedPnL(context.Background()))
	require.NoError(t, s.SyncRealizedPnL(context.Background()))
	assert.Equal(t, []float64{5}, f.risk.updates)
}

func TestSyncRealizedPnL_PersistenceFailureReported(t *testing.T) {
	f := newFixture()
	f.risk.updateErr = ports.ErrPersistenceFailure
	feed := &mockFeed{trades: []*domain.Trade{{ID: 7, PNL: -3, ExitTime: testNow.Add(time.Second)}}}
	s := f.service(t, func(o *Options) { o.PnLFeed = feed })

	err := s.SyncRealizedPnL(context.Background())
	assert.ErrorIs(t, err, ports.ErrPersistenceFailure)
	assert.Equal(t, []float64{-3}, f.risk.updates)
}

func TestSyncRealizedPnL_UnsavedLossSurvivesRestart(t *testing.T) {
	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: filepath.Join(t.TempDir(), "bot.db"), Logger: &mockLogger{}})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	ctx := context.Background()
	feed := &mockFeed{trades: []*domain.Trade{{ID: 7, Symbol: "BTCUSDT", PNL: -300, ExitTime: testNow.Add(time.Second)}}}

	first := newFixture()
	first.risk.updateErr = fmt.Errorf("%w: disk full", ports.ErrPersistenceFailure)
	first.risk.flushErr = first.risk.updateErr
	s := first.service(t, func(o *Options) { o.PnLFeed = feed; o.TradeLog = repo })

	assert.ErrorIs(t, s.SyncRealizedPnL(ctx), ports.ErrPersistenceFailure)
	assert.ErrorIs(t, s.SyncRealizedPnL(ctx), ports.ErrPersistenceFailure)
	assert.Equal(t, []float64{-300}, first.risk.updates, "held in memory, not applied twice")
	assert.Equal(t, 1, first.risk.flushes)

	found, err := repo.HasTrade(ctx, 7)
	require.NoError(t, err)
	assert.False(t, found, "trade must not be logged while its P/L is unsaved")

	restarted := newFixture()
	s = restarted.service(t, func(o *Options) { o.PnLFeed = feed; o.TradeLog = repo })
	require.NoError(t, s.SyncRealizedPnL(ctx))
	assert.Equal(t, []float64{-300}, restarted.risk.updates)

	found, err = repo.HasTrade(ctx, 7)
	require.NoError(t, err)
	assert.True(t, found)

	require.NoError(t, s.SyncRealizedPnL(ctx))
	assert.Equal(t, []float64{-300}, restarted.risk.updates)
}

func TestSyncRealizedPnL_PendingCommittedAfterFlush(t *testing.T) {
	f := newFixture()
	f.risk.updateErr = ports.ErrPersistenceFailure
	feed := &mockFeed{trades: []*domain.Trade{{ID: 7, PNL: -3, ExitTime: testNow.Add(time.Second)}}}
	log := &mockTradeLog{recorded: map[int64]*domain.Trade{}}
	s := f.service(t, func(o *Options) { o.PnLFeed = feed; o.TradeLog = log })
	ctx := context.Background()

	assert.ErrorIs(t, s.SyncRealizedPnL(ctx), ports.ErrPersistenceFailure)
	assert.Empty(t, log.recorded)

	f.risk.updateErr = nil
	require.NoError(t, s.SyncRealizedPnL(ctx))
	assert.Equal(t, 1, f.risk.flushes)
	assert.Contains(t, log.recorded, int64(7))
	assert.Equal(t, []float64{-3}, f.risk.updates)
}

func TestSyncRealizedPnL_ClosedRiskLeavesTradeUnapplied(t *testing.T) {
	f := newFixture()
	f.risk.updateErr = ports.ErrClosed
	feed := &mockFeed{trades: []*domain.Trade{{ID: 7, PNL: -3, ExitTime: testNow.Add(time.Second)}}}
	log := &mockTradeLog{recorded: map[int64]*domain.Trade{}}
	s := f.service(t, func(o *Options) { o.PnLFeed = feed; o.TradeLog = log })

	assert.ErrorIs(t, s.SyncRealizedPnL(context.Background()), ports.ErrClosed)
	assert.Empty(t, log.recorded)
	assert.Empty(t, s.pending)
}

func TestStart_ClosesRiskOnCancel(t *testing.T) {
	f := newFixture()
	f.signals.signal = domain.SignalNone
	s := f.service(t, func(o *Options) { o.PollInterval = time.Hour })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after cancel")
	}
	assert.Equal(t, 1, f.risk.closed)
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "96.1", formatPrice(96.123, 0.1))
	assert.Equal(t, "1.23457", formatPrice(1.234567, 0.00001))
	assert.Equal(t, "96.123", formatPrice(96.123, 0))
	assert.Equal(t, "0.003", formatQuantity(0.003))
	assert.Equal(t, "2.9", formatQuantity(2.9))
}

package risk

import (
	"context"
	"errors"
	"sync"
	"time"

	"traderBot/internal/domain"
)

type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

// memStore is an in-memory DailyPnLStore. When gate is set, Save signals
// started and blocks until gate is closed.
type memStore struct {
	mu      sync.Mutex
	data    domain.DailyPnLMap
	saves   int
	fail    error
	loadErr error
	closed  bool
	started chan struct{}
	gate    chan struct{}
}

func (s *memStore) Load(ctx context.Context) (domain.DailyPnLMap, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.data.Clone(), nil
}

func (s *memStore) Save(ctx context.Context, m domain.DailyPnLMap) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if s.gate != nil {
		s.started <- struct{}{}
		<-s.gate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("store closed")
	}
	if s.fail != nil {
		return s.fail
	}
	s.saves++
	s.data = m.Clone()
	return nil
}

func (s *memStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *memStore) setFail(err error) {
	s.mu.Lock()
	s.fail = err
	s.mu.Unlock()
}

type mockMarket struct {
	klines []*domain.Kline
	err    error
}

func (m *mockMarket) GetKlines(ctx context.Context, symbol, interval string, limit int) ([]*domain.Kline, error) {
	if m.err != nil {
		return nil, m.err
	}
	if len(m.klines) > limit {
		return m.klines[len(m.klines)-limit:], nil
	}
	return m.klines, nil
}

func (m *mockMarket) GetTickerPrice(ctx context.Context, symbol string) (float64, error) {
	return 0, nil
}

type mockAccount struct {
	balance    float64
	balanceErr error
	pipValue   float64
	spec       domain.SymbolSpec
	tradable   bool
}

func (a *mockAccount) GetBalance(ctx context.Context) (float64, error) {
	return a.balance, a.balanceErr
}

func (a *mockAccount) GetPipValuePerLot(ctx context.Context, symbol string) (float64, error) {
	return a.pipValue, nil
}

func (a *mockAccount) GetSymbolSpec(ctx context.Context, symbol string) (*domain.SymbolSpec, error) {
	spec := a.spec
	spec.Symbol = symbol
	return &spec, nil
}

func (a *mockAccount) IsTradable(ctx context.Context, symbol string) (bool, error) {
	return a.tradable, nil
}

// flatBars returns n bars with a constant high-low range around 100.
func flatBars(n int, rng float64) []*domain.Kline {
	start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	out := make([]*domain.Kline, n)
	for i := range out {
		out[i] = &domain.Kline{
			OpenTime: start.Add(time.Duration(i) * time.Hour),
			Open:     100,
			High:     100 + rng/2,
			Low:      100 - rng/2,
			Close:    100,
			IsFinal:  true,
		}
	}
	return out
}

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.Local)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func forexAccount() *mockAccount {
	return &mockAccount{
		balance:  10000,
		pipValue: 1,
		spec:     domain.SymbolSpec{Point: 0.00001, VolumeStep: 0.01, VolumeMin: 0.01, VolumeMax: 100, Tradable: true},
		tradable: true,
	}
}

package strategies

import (
	"context"
	"time"

	"traderBot/internal/domain"
)

// MockLogger implements ports.Logger for testing
type MockLogger struct{}

func (m *MockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *MockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *MockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *MockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

func klinesFromCloses(closes ...float64) []*domain.Kline {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]*domain.Kline, len(closes))
	for i, c := range closes {
		out[i] = &domain.Kline{OpenTime: start.Add(time.Duration(i) * time.Minute), Open: c, High: c, Low: c, Close: c}
	}
	return out
}

// signalsByPrefix evaluates every prefix of klines and returns the prefix
// lengths at which each actionable signal fired.
func signalsByPrefix(gen func(context.Context, []*domain.Kline) domain.Signal, klines []*domain.Kline) map[domain.Signal][]int {
	out := map[domain.Signal][]int{}
	for n := 1; n <= len(klines); n++ {
		sig := gen(context.Background(), klines[:n])
		if sig.IsActionable() {
			out[sig] = append(out[sig], n)
		}
	}
	return out
}

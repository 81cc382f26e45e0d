package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"traderBot/internal/domain"
)

// mockLogger implements ports.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

// setupTestDB creates a temporary database for testing
func setupTestDB(t *testing.T) (*Repository, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "nested", "test.db")
	repo, err := NewRepository(Config{DBPath: dbPath, Logger: &mockLogger{}})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo, dbPath
}

func TestNewRepository_RequiresLogger(t *testing.T) {
	_, err := NewRepository(Config{DBPath: filepath.Join(t.TempDir(), "x.db")})
	assert.Error(t, err)
}

func TestRepository_DailyPnLRoundTrip(t *testing.T) {
	repo, dbPath := setupTestDB(t)
	ctx := context.Background()

	empty, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	original := domain.DailyPnLMap{
		"2025-03-08": {Date: "2025-03-08", PnL: -512.25, TradeCount: 7},
		"2025-03-09": {Date: "2025-03-09", PnL: 0, TradeCount: 0},
		"2025-03-10": {Date: "2025-03-10", PnL: 1033.5, TradeCount: 2},
	}
	require.NoError(t, repo.Save(ctx, original))

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, original, loaded)

	// Survives reopening the file.
	require.NoError(t, repo.Close())
	reopened, err := NewRepository(Config{DBPath: dbPath, Logger: &mockLogger{}})
	require.NoError(t, err)
	defer reopened.Close()

	loaded, err = reopened.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, original, loaded)
}

func TestRepository_SaveReplacesWholeMap(t *testing.T) {
	repo, _ := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, domain.DailyPnLMap{
		"2025-03-09": {Date: "2025-03-09", PnL: 10, TradeCount: 1},
		"2025-03-10": {Date: "2025-03-10", PnL: 20, TradeCount: 2},
	}))
	next := domain.DailyPnLMap{"2025-03-10": {Date: "2025-03-10", PnL: 25, TradeCount: 3}}
	require.NoError(t, repo.Save(ctx, next))

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, next, loaded)
}

func TestRepository_SaveCanceledLeavesPreviousState(t *testing.T) {
	repo, _ := setupTestDB(t)
	before := domain.DailyPnLMap{"2025-03-10": {Date: "2025-03-10", PnL: 5, TradeCount: 1}}
	require.NoError(t, repo.Save(context.Background(), before))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, repo.Save(ctx, domain.DailyPnLMap{"2025-03-11": {Date: "2025-03-11", PnL: 9, TradeCount: 1}}))

	loaded, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, before, loaded)
}

func TestRepository_TradeLog(t *testing.T) {
	repo, _ := setupTestDB(t)
	ctx := context.Background()

	last, err := repo.LastExitTime(ctx, "BTCUSDT")
	require.NoError(t, err)
	assert.True(t, last.IsZero())

	exit := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)
	trade := &domain.Trade{ID: 9001, Symbol: "BTCUSDT", Side: domain.Buy, Quantity: 0.5, PNL: -12.5, ExitTime: exit, CloseReason: domain.CloseReasonUnknown}

	found, err := repo.HasTrade(ctx, trade.ID)
	require.NoError(t, err)
	assert.False(t, found)

	isNew, err := repo.RecordTrade(ctx, trade)
	require.NoError(t, err)
	assert.True(t, isNew)

	found, err = repo.HasTrade(ctx, trade.ID)
	require.NoError(t, err)
	assert.True(t, found)

	isNew, err = repo.RecordTrade(ctx, trade)
	require.NoError(t, err)
	assert.False(t, isNew, "duplicate exchange IDs are ignored")

	later := &domain.Trade{ID: 9002, Symbol: "BTCUSDT", Side: domain.Sell, Quantity: 0.5, PNL: 30, ExitTime: exit.Add(time.Hour)}
	_, err = repo.RecordTrade(ctx, later)
	require.NoError(t, err)

	last, err = repo.LastExitTime(ctx, "BTCUSDT")
	require.NoError(t, err)
	assert.True(t, last.Equal(exit.Add(time.Hour)))

	last, err = repo.LastExitTime(ctx, "ETHUSDT")
	require.NoError(t, err)
	assert.True(t, last.IsZero())
}

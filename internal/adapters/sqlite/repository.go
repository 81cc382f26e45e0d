package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"traderBot/internal/domain"
	"traderBot/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Repository implements ports.DailyPnLStore and ports.TradeLog using SQLite.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/trader_bot.db"
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		err = fmt.Errorf("%w: open database at '%s': %v", ports.ErrDBConnection, dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("%w: ping database at '%s': %v", ports.ErrDBConnection, dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// A single connection serializes writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	repo := &Repository{db: db, logger: cfg.Logger}
	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Info(context.Background(), "SQLite database ready", map[string]interface{}{"path": dbPath})
	return repo, nil
}

func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS daily_pnl (
		date TEXT PRIMARY KEY,
		pnl REAL NOT NULL,
		trade_count INTEGER NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS trade_history (
		id INTEGER PRIMARY KEY,
		symbol TEXT NOT NULL,
		side TEXT NOT NULL,
		quantity REAL NOT NULL,
		pnl REAL NOT NULL,
		exit_time TIMESTAMP NOT NULL,
		close_reason TEXT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_trade_history_symbol_exit_time ON trade_history (symbol, exit_time);
	`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

// --- DailyPnLStore Implementation ---

// Load returns every stored daily record.
func (r *Repository) Load(ctx context.Context) (domain.DailyPnLMap, error) {
	const query = `SELECT date, pnl, trade_count FROM daily_pnl`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: query daily pnl: %v", ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	out := make(domain.DailyPnLMap)
	for rows.Next() {
		var rec domain.DailyPnLRecord
		if err := rows.Scan(&rec.Date, &rec.PnL, &rec.TradeCount); err != nil {
			return nil, fmt.Errorf("%w: scan daily pnl: %v", ports.ErrQueryFailed, err)
		}
		out[rec.Date] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate daily pnl rows: %v", ports.ErrQueryFailed, err)
	}
	return out, nil
}

// Save replaces the stored map in a single transaction.
func (r *Repository) Save(ctx context.Context, m domain.DailyPnLMap) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin transaction: %v", ports.ErrUpdateFailed, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM daily_pnl`); err != nil {
		return fmt.Errorf("%w: clear daily pnl: %v", ports.ErrUpdateFailed, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO daily_pnl (date, pnl, trade_count, updated_at) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("%w: prepare insert: %v", ports.ErrUpdateFailed, err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, date := range m.SortedDates() {
		rec := m[date]
		if _, err = stmt.ExecContext(ctx, date, rec.PnL, rec.TradeCount, now); err != nil {
			return fmt.Errorf("%w: insert daily pnl for %s: %v", ports.ErrUpdateFailed, date, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit daily pnl: %v", ports.ErrUpdateFailed, err)
	}
	r.logger.Debug(ctx, "Daily P/L saved", map[string]interface{}{"days": len(m)})
	return nil
}

// --- TradeLog Implementation ---

// RecordTrade inserts trade keyed by its exchange ID. It reports false when
// the trade was already recorded.
func (r *Repository) RecordTrade(ctx context.Context, trade *domain.Trade) (bool, error) {
	const query = `
	INSERT OR IGNORE INTO trade_history (id, symbol, side, quantity, pnl, exit_time, close_reason)
	VALUES (?, ?, ?, ?, ?, ?, ?)`

	var closeReason sql.NullString
	if trade.CloseReason != "" {
		closeReason = sql.NullString{String: string(trade.CloseReason), Valid: true}
	}

	result, err := r.db.ExecContext(ctx, query,
		trade.ID, trade.Symbol, string(trade.Side), trade.Quantity, trade.PNL, trade.ExitTime.UTC(), closeReason)
	if err != nil {
		return false, fmt.Errorf("%w: insert trade %d for %s: %v", ports.ErrUpdateFailed, trade.ID, trade.Symbol, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: rows affected for trade %d: %v", ports.ErrUpdateFailed, trade.ID, err)
	}
	if n > 0 {
		r.logger.Debug(ctx, "Trade recorded", map[string]interface{}{"tradeID": trade.ID, "symbol": trade.Symbol, "pnl": trade.PNL})
	}
	return n > 0, nil
}

// HasTrade reports whether id is in trade_history.
func (r *Repository) HasTrade(ctx context.Context, id int64) (bool, error) {
	var found int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM trade_history WHERE id = ?`, id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: lookup trade %d: %v", ports.ErrQueryFailed, id, err)
	}
	return true, nil
}

// LastExitTime returns the newest recorded exit time for symbol.
func (r *Repository) LastExitTime(ctx context.Context, symbol string) (time.Time, error) {
	const query = `SELECT exit_time FROM trade_history WHERE symbol = ? ORDER BY exit_time DESC LIMIT 1`

	var last sql.NullTime
	err := r.db.QueryRowContext(ctx, query, symbol).Scan(&last)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: last exit time for %s: %v", ports.ErrQueryFailed, symbol, err)
	}
	if !last.Valid {
		return time.Time{}, nil
	}
	return last.Time, nil
}

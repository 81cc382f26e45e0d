// Package csvfeed serves market data from kline CSV files written by
// cmd/fetch_klines. Files are named <SYMBOL>_<interval>.csv.
package csvfeed

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"traderBot/internal/domain"
	"traderBot/internal/ports"
	"traderBot/internal/utils"
)

// Config holds the feed settings.
type Config struct {
	Dir    string
	Logger ports.Logger
}

type cachedSeries struct {
	modTime time.Time
	klines  []*domain.Kline
}

// Feed implements ports.MarketData over a directory of CSV files.
// A file is re-read when its modification time changes.
type Feed struct {
	dir    string
	logger ports.Logger

	mu    sync.Mutex
	cache map[string]cachedSeries
}

var _ ports.MarketData = (*Feed)(nil)

// New creates a Feed reading from cfg.Dir.
func New(cfg Config) (*Feed, error) {
	if cfg.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if cfg.Dir == "" {
		cfg.Dir = "data"
	}
	info, err := os.Stat(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("%w: csv data dir %s: %w", ports.ErrConfigurationError, cfg.Dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ports.ErrConfigurationError, cfg.Dir)
	}
	return &Feed{dir: cfg.Dir, logger: cfg.Logger, cache: make(map[string]cachedSeries)}, nil
}

// GetKlines returns the newest limit bars of the series, oldest first.
func (f *Feed) GetKlines(ctx context.Context, symbol, interval string, limit int) ([]*domain.Kline, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", ports.ErrInvalidRequest, limit)
	}
	klines, err := f.series(ctx, symbol, interval)
	if err != nil {
		return nil, err
	}
	if len(klines) < limit {
		return nil, fmt.Errorf("%w: %s %s has %d bars, %d requested", ports.ErrDataUnavailable, symbol, interval, len(klines), limit)
	}
	out := make([]*domain.Kline, limit)
	copy(out, klines[len(klines)-limit:])
	return out, nil
}

// GetTickerPrice returns the close of the newest 1m bar, falling back to any
// cached series for the symbol.
func (f *Feed) GetTickerPrice(ctx context.Context, symbol string) (float64, error) {
	klines, err := f.GetKlines(ctx, symbol, "1m", 1)
	if err == nil {
		return klines[0].Close, nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *domain.Kline
	for _, s := range f.cache {
		if n := len(s.klines); n > 0 && s.klines[n-1].Symbol == symbol {
			if latest == nil || s.klines[n-1].CloseTime.After(latest.CloseTime) {
				latest = s.klines[n-1]
			}
		}
	}
	if latest == nil {
		return 0, err
	}
	return latest.Close, nil
}

func (f *Feed) series(ctx context.Context, symbol, interval string) ([]*domain.Kline, error) {
	path := utils.KlineFileName(f.dir, symbol, interval)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: no data file for %s %s", ports.ErrDataUnavailable, symbol, interval)
		}
		return nil, fmt.Errorf("%w: %w", ports.ErrDataUnavailable, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.cache[path]; ok && c.modTime.Equal(info.ModTime()) {
		return c.klines, nil
	}
	klines, err := utils.ReadKlinesFromCSV(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ports.ErrDataUnavailable, err)
	}
	f.cache[path] = cachedSeries{modTime: info.ModTime(), klines: klines}
	f.logger.Debug(ctx, "Loaded kline file", map[string]interface{}{
		"path": path,
		"bars": len(klines),
	})
	return klines, nil
}

package jsonstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"traderBot/internal/domain"
	"traderBot/internal/ports"
)

// Store implements ports.DailyPnLStore on a single JSON file mapping ISO
// dates to {pnl, trade_count}. Writes go to a temp file that is synced and
// renamed over the target, so readers never see a partial map.
type Store struct {
	mu       sync.Mutex
	filePath string
	logger   ports.Logger
}

// New creates a file store, creating the parent directory if needed.
func New(filePath string, logger ports.Logger) (*Store, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required for JSON store")
	}
	if filePath == "" {
		filePath = "logs/daily_pnl.json"
	}
	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory '%s': %w", dir, err)
		}
	}
	return &Store{filePath: filePath, logger: logger}, nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.filePath
}

// Load reads the map. A missing file yields an empty map.
func (s *Store) Load(ctx context.Context) (domain.DailyPnLMap, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if errors.Is(err, os.ErrNotExist) {
		return make(domain.DailyPnLMap), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read daily state file: %w", err)
	}

	out := make(domain.DailyPnLMap)
	if len(data) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal daily state: %w", err)
	}
	for date, rec := range out {
		rec.Date = date
		out[date] = rec
	}
	return out, nil
}

// Save atomically replaces the file contents with m.
func (s *Store) Save(ctx context.Context, m domain.DailyPnLMap) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal daily state: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(s.filePath), filepath.Base(s.filePath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary state file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("failed to write temporary state file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("failed to sync temporary state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temporary state file: %w", err)
	}
	if err := os.Rename(tmpName, s.filePath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to commit state file: %w", err)
	}

	s.logger.Debug(ctx, "Daily state written", map[string]interface{}{"path": s.filePath, "days": len(m)})
	return nil
}

// Close is a no-op; every Save leaves the file complete.
func (s *Store) Close() error {
	return nil
}

package config

import (
	"context"
	"fmt"
	"path/filepath"
	"reflect"

	"github.com/fsnotify/fsnotify"

	"traderBot/internal/domain"
	"traderBot/internal/ports"
	"traderBot/internal/strategy/strategies"
)

// StrategyApplier receives reloaded strategy settings.
type StrategyApplier interface {
	Apply(ctx context.Context, method domain.CombinationMethod, specs []strategies.Spec) error
}

// WatchStrategies reloads the strategy file whenever it changes and hands the
// result to target. Only the method, enabled flags and weights take effect
// live; added or removed strategies and changed kind, timeframe or params are
// reported as needing a restart. Invalid files are logged and ignored. The
// returned channel is closed once the watcher has stopped after ctx is canceled.
func WatchStrategies(ctx context.Context, path string, target StrategyApplier, log ports.Logger) (<-chan struct{}, error) {
	if target == nil || log == nil {
		return nil, fmt.Errorf("%w: watcher needs a target and a logger", ports.ErrConfigurationError)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: strategy file path: %w", ports.ErrConfigurationError, err)
	}
	// The running strategies were built from this content.
	var running []strategies.Spec
	if file, err := LoadStrategies(abs); err == nil {
		running = file.Strategies
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	// Watch the directory: editors often replace the file instead of writing it.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(evt.Name) != abs || !evt.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
					continue
				}
				reloadStrategies(ctx, abs, running, target, log)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Error(ctx, err, "Strategy file watcher error")
			}
		}
	}()
	log.Info(ctx, "Watching strategy file", map[string]interface{}{"path": abs})
	return done, nil
}

func reloadStrategies(ctx context.Context, path string, running []strategies.Spec, target StrategyApplier, log ports.Logger) {
	file, err := LoadStrategies(path)
	if err == nil {
		for _, spec := range file.Strategies {
			if _, err = strategies.Build(spec, log); err != nil {
				break
			}
		}
	}
	if err != nil {
		log.Warn(ctx, "Strategy file reload skipped", map[string]interface{}{"path": path, "error": err.Error()})
		return
	}

	if added, removed, changed := restartOnlyChanges(running, file.Strategies); len(added)+len(removed)+len(changed) > 0 {
		log.Warn(ctx, "Strategy changes ignored until restart", map[string]interface{}{
			"added":   added,
			"removed": removed,
			"changed": changed,
		})
	}
	if err := target.Apply(ctx, file.Method, file.Strategies); err != nil {
		log.Error(ctx, err, "Applying reloaded strategy settings failed")
		return
	}
	log.Info(ctx, "Strategy method, enabled flags and weights reloaded", map[string]interface{}{
		"path":       path,
		"method":     file.Method,
		"strategies": len(file.Strategies),
	})
}

// restartOnlyChanges lists strategy names, by running vs reloaded specs, whose
// change cannot be applied to live strategy instances.
func restartOnlyChanges(running, reloaded []strategies.Spec) (added, removed, changed []string) {
	before := make(map[string]strategies.Spec, len(running))
	for _, s := range running {
		before[s.Name] = s
	}
	seen := make(map[string]bool, len(reloaded))
	for _, s := range reloaded {
		seen[s.Name] = true
		old, ok := before[s.Name]
		switch {
		case !ok:
			added = append(added, s.Name)
		case old.Kind != s.Kind || old.Timeframe != s.Timeframe || !sameParams(old.Params, s.Params):
			changed = append(changed, s.Name)
		}
	}
	for _, s := range running {
		if !seen[s.Name] {
			removed = append(removed, s.Name)
		}
	}
	return added, removed, changed
}

func sameParams(a, b map[string]interface{}) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return reflect.DeepEqual(a, b)
}

package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces bursts of file events into one conversion.
const watchDebounce = 100 * time.Millisecond

// WatchFunc receives the outcome of every conversion run by Watch.
type WatchFunc func(results []Result, err error)

// Watch converts the job once, then again whenever the input file changes,
// until ctx is cancelled. It watches the input's directory so editors that
// replace files on save are still seen.
func (e *Engine) Watch(ctx context.Context, job Job, fn WatchFunc) error {
	if job.Input == StdinPath {
		return ErrWatchNeedsFile
	}
	plan, err := e.Plan(job)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	dir := filepath.Dir(plan.Input)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	e.logger.Info("watching for changes", "path", plan.Input)

	// done is set under mu before Watch returns, so Watch waits for a run in
	// progress and a debounce callback that fires later skips fn.
	var (
		mu   sync.Mutex
		done bool
	)
	run := func() {
		mu.Lock()
		defer mu.Unlock()
		if done || ctx.Err() != nil {
			return
		}
		results, err := e.Convert(ctx, job)
		fn(results, err)
	}
	run()

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		mu.Lock()
		done = true
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != plan.Input {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(watchDebounce, func() {
				e.logger.Debug("change detected", "path", event.Name, "op", event.Op.String())
				run()
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			e.logger.Warn("watcher error", "error", err)
		}
	}
}

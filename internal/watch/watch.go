// Package watch runs a callback whenever a file changes, coalescing bursts of
// filesystem events. File-sync tools replace files through temporary names
// and renames, so the parent directory is watched and events are matched by
// base name.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/aatumaykin/nexsched/internal/logger"
)

// DefaultDebounce is the quiet period after the last event before the
// callback runs.
const DefaultDebounce = 250 * time.Millisecond

// Config configures a Watcher.
type Config struct {
	Path       string
	Debounce   time.Duration
	RunOnStart bool
	Logger     *logger.Logger
}

// Watcher calls OnChange after the watched file settles.
type Watcher struct {
	cfg      Config
	onChange func(ctx context.Context) error
	logger   *logger.Logger
}

// New creates a Watcher. onChange runs on the watcher goroutine, so calls
// never overlap.
func New(cfg Config, onChange func(ctx context.Context) error) *Watcher {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Watcher{cfg: cfg, onChange: onChange, logger: log}
}

// Run blocks until ctx is cancelled. Callback errors are logged and the
// watch goes on.
func (w *Watcher) Run(ctx context.Context) error {
	dir := filepath.Dir(w.cfg.Path)
	file := filepath.Base(w.cfg.Path)

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	w.logger.Info("watching registry", logger.Field{Key: "file", Value: w.cfg.Path})

	if w.cfg.RunOnStart {
		w.fire(ctx)
	}

	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(w.cfg.Debounce)
		} else {
			timer.Reset(w.cfg.Debounce)
		}
		timerC = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return fmt.Errorf("watcher closed")
			}
			if !strings.EqualFold(filepath.Base(ev.Name), file) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
				w.logger.Debug("registry change detected", logger.Field{Key: "op", Value: ev.Op.String()})
				schedule()
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return fmt.Errorf("watcher closed")
			}
			w.logger.Warn("watch error", logger.Field{Key: "error", Value: err})
			// events may have been dropped
			if strings.Contains(strings.ToLower(err.Error()), "overflow") {
				schedule()
			}
		case <-timerC:
			timerC = nil
			w.fire(ctx)
		}
	}
}

func (w *Watcher) fire(ctx context.Context) {
	if err := w.onChange(ctx); err != nil {
		w.logger.Error("change handler failed", err, logger.Field{Key: "file", Value: w.cfg.Path})
	}
}

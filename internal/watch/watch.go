// Package watch reports changes to the active shader file.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the burst of events an editor save produces.
const DefaultDebounce = 150 * time.Millisecond

// Watcher watches the directory holding one file so that editors which
// replace the file by rename are still seen.
type Watcher struct {
	fs       *fsnotify.Watcher
	onChange func()
	debounce time.Duration
	logger   *slog.Logger

	mu     sync.Mutex
	target string
	dir    string
}

// New watches path and calls onChange, at most once per debounce window,
// after it is written, created, or renamed into place.
func New(path string, debounce time.Duration, onChange func(), logger *slog.Logger) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	w := &Watcher{fs: fs, onChange: onChange, debounce: debounce, logger: logger}
	if err := w.SetTarget(path); err != nil {
		fs.Close()
		return nil, err
	}
	return w, nil
}

// SetTarget switches the watched file.
func (w *Watcher) SetTarget(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %q: %w", path, err)
	}
	dir := filepath.Dir(abs)

	w.mu.Lock()
	defer w.mu.Unlock()
	if dir != w.dir {
		if err := w.fs.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		if w.dir != "" {
			_ = w.fs.Remove(w.dir)
		}
		w.dir = dir
	}
	w.target = abs
	return nil
}

// Target returns the watched file.
func (w *Watcher) Target() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.target
}

func (w *Watcher) matches(name string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	return abs == w.Target()
}

// Run delivers change notifications until ctx is cancelled or the watcher
// is closed.
func (w *Watcher) Run(ctx context.Context) error {
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if !w.matches(ev.Name) {
				continue
			}
			w.logger.Debug("shader file changed", "path", ev.Name, "op", ev.Op.String())
			timer.Reset(w.debounce)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", "error", err)
		case <-timer.C:
			w.onChange()
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

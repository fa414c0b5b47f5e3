// Package watcher monitors the ledger database file for changes.
//
// It watches the file's parent directory via fsnotify, filters events
// down to the target file, and debounces rapid successive writes so a
// burst of updates produces a single event.
//
// Example usage:
//
//	w, err := watcher.New(watcher.Config{Path: "~/.config/evlog/ledger.db"}, log)
//	if err != nil {
//	    return err
//	}
//	defer w.Close()
//
//	if err := w.Start(ctx); err != nil {
//	    return err
//	}
//
//	for range w.Events() {
//	    // re-render
//	}
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dmarinov/evlog/pkg/logger"
)

// Event signals that the watched file changed.
type Event struct {
	// Path is the watched file.
	Path string

	// Timestamp is when the (debounced) change was observed.
	Timestamp time.Time
}

// Config contains watcher configuration.
type Config struct {
	// Path is the file to watch. Required.
	Path string

	// DebounceInterval collapses bursts of writes into one event.
	// Default: 250ms.
	DebounceInterval time.Duration
}

// Watcher monitors a single file.
type Watcher interface {
	// Start begins watching. Returns an error if the file's directory
	// cannot be watched.
	Start(ctx context.Context) error

	// Events delivers debounced change notifications.
	Events() <-chan Event

	// Errors delivers watch errors.
	Errors() <-chan error

	// Close shuts the watcher down.
	Close() error
}

// watcher implements Watcher using fsnotify.
type watcher struct {
	fsw    *fsnotify.Watcher
	log    logger.Logger
	config Config

	target string

	events chan Event
	errors chan error

	mu      sync.Mutex
	running bool
	closed  bool

	// debounceMu also orders timer callbacks against Close: stopped is
	// set under it before the channels are closed, so a callback that
	// sees stopped false can finish its send before Close proceeds.
	debounceMu    sync.Mutex
	debounceTimer *time.Timer
	stopped       bool
}

// New creates a watcher for the file at cfg.Path.
//
// Parameters:
//   - cfg: Watcher configuration
//   - log: Logger instance (may be nil)
//
// Returns an error if the underlying fsnotify watcher cannot be
// created or the path is empty.
func New(cfg Config, log logger.Logger) (Watcher, error) {
	if cfg.Path == "" {
		return nil, ErrInvalidPath
	}
	if cfg.DebounceInterval == 0 {
		cfg.DebounceInterval = 250 * time.Millisecond
	}
	if log == nil {
		log = logger.Noop()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	w := &watcher{
		fsw:    fsw,
		log:    log,
		config: cfg,
		target: expandHome(cfg.Path),
		events: make(chan Event, 16),
		errors: make(chan error, 4),
	}

	log.Debug("file watcher created", "path", w.target, "debounce", cfg.DebounceInterval)

	return w, nil
}

// Start implements Watcher.Start.
func (w *watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrWatcherClosed
	}
	if w.running {
		w.mu.Unlock()
		return ErrAlreadyStarted
	}
	w.running = true
	w.mu.Unlock()

	// Watch the parent directory: editors and databases often replace
	// the file wholesale, which unregisters a direct file watch.
	dir := filepath.Dir(w.target)
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("failed to stat watch directory %s: %w", dir, err)
	}
	if err := w.fsw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w.log.Info("watching ledger file", "path", w.target)

	go w.processEvents(ctx)

	return nil
}

// Events implements Watcher.Events.
func (w *watcher) Events() <-chan Event {
	return w.events
}

// Errors implements Watcher.Errors.
func (w *watcher) Errors() <-chan error {
	return w.errors
}

// Close implements Watcher.Close.
func (w *watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	w.running = false

	w.debounceMu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
		w.debounceTimer = nil
	}
	w.stopped = true
	w.debounceMu.Unlock()

	close(w.events)
	close(w.errors)

	if err := w.fsw.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}

	w.log.Debug("watcher closed")
	return nil
}

// processEvents pumps fsnotify events until the context ends.
func (w *watcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
				w.log.Warn("error channel full, dropping error", "error", err)
			}
		}
	}
}

// handleEvent filters directory events down to writes of the target
// file and debounces them.
func (w *watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.target {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}

	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if w.stopped {
		return
	}
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}

	w.debounceTimer = time.AfterFunc(w.config.DebounceInterval, func() {
		w.debounceMu.Lock()
		defer w.debounceMu.Unlock()

		if w.stopped {
			return
		}

		select {
		case w.events <- Event{Path: w.target, Timestamp: time.Now()}:
		default:
			w.log.Warn("event channel full, dropping event")
		}
	})
}

// expandHome expands ~ in file paths to the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return filepath.Clean(path)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Clean(path)
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}

// Package watcher turns raw filesystem notifications into deduplicated,
// debounced change batches. The OS-level source is assumed noisy: duplicate,
// bursty, and possibly reordered deliveries are all normal.
package watcher

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// IgnoreChecker filters paths before they ever reach the debounce window.
type IgnoreChecker interface {
	ShouldIgnoreDir(absPath string) bool
	ShouldIgnore(absPath string) bool
}

// Watcher provides recursive filesystem watching with debounced batches.
// When the underlying watch degrades (handle limits, overflow), a signal is
// published on Degraded(); the consumer is expected to fall back to a rescan
// rather than trust the event stream.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	debouncer *Debouncer
	ignores   IgnoreChecker
	rootDir   string
	degraded  chan error
	logger    *slog.Logger
}

// New creates a recursive watcher over rootDir, registering every
// non-ignored subdirectory.
func New(rootDir string, window time.Duration, ignores IgnoreChecker, logger *slog.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsWatcher: fsWatcher,
		debouncer: NewDebouncer(window),
		ignores:   ignores,
		rootDir:   rootDir,
		degraded:  make(chan error, 1),
		logger:    logger,
	}

	err = filepath.WalkDir(rootDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are not watchable anyway
		}
		if !d.IsDir() {
			return nil
		}
		if path != rootDir && ignores.ShouldIgnoreDir(path) {
			return filepath.SkipDir
		}
		if watchErr := fsWatcher.Add(path); watchErr != nil {
			w.logger.Warn("failed to watch directory", "path", path, "error", watchErr)
			w.signalDegraded(watchErr)
		}
		return nil
	})
	if err != nil {
		fsWatcher.Close()
		return nil, err
	}

	return w, nil
}

// Events returns the channel of debounced change batches.
func (w *Watcher) Events() <-chan []ChangeEvent {
	return w.debouncer.Output()
}

// Degraded returns a channel that receives at most one pending degradation
// signal. After receiving, the consumer should rescan and may keep using the
// watcher for best-effort updates.
func (w *Watcher) Degraded() <-chan error {
	return w.degraded
}

// Run listens for raw notifications until the watcher is closed. Call in a
// goroutine.
func (w *Watcher) Run() {
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handle(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", "error", err)
			w.signalDegraded(err)
		}
	}
}

// handle converts one fsnotify event into a debounced logical event.
func (w *Watcher) handle(event fsnotify.Event) {
	path := event.Name

	// New directories must be registered before files inside them produce
	// events of their own.
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if !w.ignores.ShouldIgnoreDir(path) {
				if err := w.fsWatcher.Add(path); err != nil {
					w.logger.Warn("failed to watch new directory", "path", path, "error", err)
					w.signalDegraded(err)
				}
			}
			return
		}
	}

	if w.ignores.ShouldIgnore(path) {
		return
	}

	var kind EventKind
	switch {
	case event.Has(fsnotify.Create):
		kind = Created
	case event.Has(fsnotify.Write):
		kind = Modified
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		// A rename is a delete at the old path; the new path arrives as its
		// own Create event.
		kind = Deleted
	default:
		return // chmod etc.
	}

	w.debouncer.Add(path, kind)
}

// signalDegraded publishes a degradation without ever blocking the event
// loop. Only one signal is held at a time.
func (w *Watcher) signalDegraded(err error) {
	select {
	case w.degraded <- err:
	default:
	}
}

// Close stops the watcher and releases OS resources.
func (w *Watcher) Close() error {
	return w.fsWatcher.Close()
}

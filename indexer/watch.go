package indexer

import (
	"context"
	"fmt"
	"time"

	"github.com/arvell/symdex-mcp/watcher"
)

// EnableWatch starts the background watcher-driven loop: debounced change
// batches become RunCycle calls. A degraded watcher (handle limits, event
// overflow) triggers a full rescan instead of silently missing changes.
func (ix *Indexer) EnableWatch(debounceWindow time.Duration) error {
	ix.watchMu.Lock()
	defer ix.watchMu.Unlock()

	if ix.fsWatcher != nil {
		return fmt.Errorf("watch already enabled")
	}

	w, err := watcher.New(ix.rootDir, debounceWindow, ix.ignores, ix.logger)
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}

	ix.fsWatcher = w
	ix.watchStop = make(chan struct{})

	go w.Run()
	ix.watchWG.Add(1)
	go ix.watchLoop(w.Events(), w.Degraded(), ix.watchStop)

	ix.logger.Info("watch enabled", "root", ix.rootDir, "debounce", debounceWindow)
	return nil
}

// StopWatch stops the background loop and releases the watcher.
func (ix *Indexer) StopWatch() {
	ix.watchMu.Lock()
	defer ix.watchMu.Unlock()

	if ix.fsWatcher == nil {
		return
	}
	close(ix.watchStop)
	ix.fsWatcher.Close()
	ix.watchWG.Wait()
	ix.fsWatcher = nil
}

// watchLoop drains watcher batches until stopped. Each batch is one cycle;
// a degradation signal falls back to a full rescan.
func (ix *Indexer) watchLoop(events <-chan []watcher.ChangeEvent, degraded <-chan error, stop <-chan struct{}) {
	defer ix.watchWG.Done()

	for {
		select {
		case <-stop:
			return

		case batch, ok := <-events:
			if !ok {
				return
			}
			ix.handleBatch(batch)

		case err := <-degraded:
			ix.logger.Warn("watcher degraded, falling back to rescan", "error", err)
			if _, rescanErr := ix.Rescan(context.Background()); rescanErr != nil {
				ix.logger.Error("fallback rescan failed", "error", rescanErr)
			}
		}
	}
}

// handleBatch turns one debounced batch into a cycle. Edits to ignore rule
// files reload the matcher instead of being indexed.
func (ix *Indexer) handleBatch(batch []watcher.ChangeEvent) {
	paths := make([]string, 0, len(batch))
	for _, event := range batch {
		if isIgnoreFile(event.Path) {
			ix.ignores.Reload()
			ix.logger.Info("reloaded ignore rules", "trigger", event.Path)
			continue
		}
		paths = append(paths, event.Path)
	}
	if len(paths) == 0 {
		return
	}

	report, err := ix.RunCycle(context.Background(), paths)
	if err != nil {
		ix.logger.Error("watch cycle failed", "error", err)
		return
	}
	if len(report.Updated) > 0 || len(report.Deleted) > 0 || len(report.Failed) > 0 {
		ix.logger.Info("watch cycle", "report", report.String())
	}
}

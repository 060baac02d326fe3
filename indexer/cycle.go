package indexer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/arvell/symdex-mcp/index"
	"github.com/arvell/symdex-mcp/language"
	"github.com/arvell/symdex-mcp/store"
)

// cycleState carries the shared mutable state of one RunCycle call.
type cycleState struct {
	ix        *Indexer
	mu        sync.Mutex
	report    *CycleReport
	checks    map[string]store.ChangeResult // seed → cached change check
	deletions map[string]bool               // seeds known missing at filter time
}

// RunCycle performs one incremental indexing cycle over the candidate paths.
//
// Candidates that have not actually changed (per the change store) are
// dropped; the rest seed a reverse-dependency expansion, and every impacted
// file is re-extracted and committed. Per-file failures land in the report;
// only change-store infrastructure failures abort the cycle, leaving state
// from already-committed files intact.
//
// The context's deadline is honored between files: when it expires, no new
// work is dequeued, in-flight files finish, and unprocessed files stay
// candidates for the next cycle because their store records were never
// touched.
func (ix *Indexer) RunCycle(ctx context.Context, paths []string) (*CycleReport, error) {
	start := time.Now()
	c := &cycleState{
		ix:        ix,
		report:    &CycleReport{},
		checks:    make(map[string]store.ChangeResult),
		deletions: make(map[string]bool),
	}

	// Step 1: filter no-op candidates.
	seeds, err := c.filter(ix.normalizeCandidates(paths))
	if err != nil {
		c.report.Duration = time.Since(start)
		return c.report, err
	}

	// Step 2: expand through reverse dependencies, closest first.
	workSet := ix.impact.Impacted(seeds, ix.maxDepth)
	c.report.Examined = len(workSet) + len(c.report.Skipped)

	// Step 3: re-derive, in BFS order, on a bounded worker pool. Order is a
	// priority hint: files dequeue closest-first but complete concurrently.
	group, groupCtx := errgroup.WithContext(ctx)

	jobs := make(chan string)
	group.Go(func() error {
		defer close(jobs)
		for _, p := range workSet {
			select {
			case jobs <- p:
			case <-groupCtx.Done():
				return nil // deadline or abort: leftovers stay candidates
			}
		}
		return nil
	})

	for i := 0; i < ix.workers; i++ {
		group.Go(func() error {
			for p := range jobs {
				if err := c.process(p); err != nil {
					return err // change-store failure, abort the cycle
				}
			}
			return nil
		})
	}

	err = group.Wait()
	c.report.Duration = time.Since(start)

	ix.logger.Debug("cycle complete", "report", c.report.String())
	return c.report, err
}

// filter drops unchanged candidates and classifies the rest as reindex or
// deletion seeds.
func (c *cycleState) filter(candidates []string) ([]string, error) {
	var seeds []string
	for _, p := range candidates {
		if c.ix.ignores != nil && c.ix.ignores.ShouldIgnore(c.ix.absPath(p)) {
			continue
		}

		// Oversized files are excluded like ignored ones, before any read. A
		// tracked file that grew past the cap becomes a deletion seed so its
		// stale index state is cleaned up.
		if info, statErr := os.Stat(c.ix.absPath(p)); statErr == nil &&
			c.ix.ignores != nil && c.ix.ignores.TooLarge(info.Size()) {
			rec, recErr := c.ix.records.Record(p)
			if recErr != nil {
				return nil, fmt.Errorf("change store: %w", recErr)
			}
			if rec == nil {
				continue
			}
			c.deletions[p] = true
			seeds = append(seeds, p)
			continue
		}

		result, err := c.ix.records.HasChanged(p)
		switch {
		case err == nil && !result.Changed:
			c.report.Skipped = append(c.report.Skipped, p)

		case err == nil:
			c.checks[p] = result
			seeds = append(seeds, p)

		case errors.Is(err, fs.ErrNotExist):
			rec, recErr := c.ix.records.Record(p)
			if recErr != nil {
				return nil, fmt.Errorf("change store: %w", recErr)
			}
			if rec == nil {
				continue // phantom event for a file we never tracked
			}
			c.deletions[p] = true
			seeds = append(seeds, p)

		case errors.Is(err, store.ErrUnreadable):
			// Unreadable must stay a candidate; the worker retries the read
			// and reports the failure if it persists.
			seeds = append(seeds, p)

		default:
			return nil, fmt.Errorf("change store: %w", err)
		}
	}
	return seeds, nil
}

// process re-derives one file's state. Only change-store failures return an
// error; everything else is recorded per-file.
func (c *cycleState) process(relPath string) error {
	c.ix.locks.lock(relPath)
	defer c.ix.locks.unlock(relPath)

	absPath := c.ix.absPath(relPath)

	// Re-check existence under the path lock; the file may have vanished or
	// reappeared since the filter step.
	info, statErr := os.Stat(absPath)
	if errors.Is(statErr, fs.ErrNotExist) {
		return c.delete(relPath)
	}
	if statErr != nil {
		c.fail(relPath, "read", statErr)
		return nil
	}
	if c.ix.ignores != nil && c.ix.ignores.TooLarge(info.Size()) {
		return c.delete(relPath)
	}

	// Reuse the content read during filtering when it is still current;
	// impacted (non-seed) files and fast-path seeds are read here.
	check := c.checks[relPath]
	content := check.Content
	hash := check.Hash
	modTime := check.ModTime
	if content == nil || !modTime.Equal(info.ModTime()) {
		data, err := os.ReadFile(absPath)
		if err != nil {
			c.fail(relPath, "read", err)
			return nil
		}
		content = data
		hash = store.HashContent(data)
		modTime = info.ModTime()
	}

	if language.IsBinary(content) {
		// A text file that turned binary drops out of the index entirely.
		return c.delete(relPath)
	}

	var entries []index.Entry
	var imports []string
	if ex := c.ix.extractors.For(relPath); ex != nil {
		var err error
		entries, err = ex.Extract(relPath, content)
		if err != nil {
			c.fail(relPath, "extract", err)
			return nil
		}
		imports, err = ex.Imports(relPath, content)
		if err != nil {
			c.fail(relPath, "extract", err)
			return nil
		}
	}

	if err := c.ix.contents.Upsert(relPath, string(content), language.Detect(relPath)); err != nil {
		c.fail(relPath, "index", err)
		return nil
	}
	c.ix.symbols.Upsert(relPath, entries)
	c.ix.deps.SetDependencies(relPath, imports)

	// The store record commits last: a crash before this point leaves the
	// file looking changed on the next cycle, which converges to the same
	// final state.
	if err := c.ix.records.Commit(relPath, hash, modTime); err != nil {
		return err
	}

	c.mu.Lock()
	c.report.Updated = append(c.report.Updated, relPath)
	c.mu.Unlock()
	return nil
}

// delete removes every trace of a file: symbols, content, graph node, store
// record. Unknown paths are a no-op.
func (c *cycleState) delete(relPath string) error {
	rec, err := c.ix.records.Record(relPath)
	if err != nil {
		return fmt.Errorf("change store: %w", err)
	}
	if rec == nil && !c.deletions[relPath] {
		return nil // dangling or never-tracked path, nothing to clean up
	}

	c.ix.symbols.Delete(relPath)
	if err := c.ix.contents.Delete(relPath); err != nil {
		c.ix.logger.Warn("content delete failed", "path", relPath, "error", err)
	}
	c.ix.deps.Remove(relPath)
	if err := c.ix.records.Remove(relPath); err != nil {
		return err
	}

	c.mu.Lock()
	c.report.Deleted = append(c.report.Deleted, relPath)
	c.mu.Unlock()
	return nil
}

func (c *cycleState) fail(relPath, stage string, err error) {
	c.ix.logger.Warn("file failed", "path", relPath, "stage", stage, "error", err)
	c.mu.Lock()
	c.report.Failed = append(c.report.Failed, FileError{Path: relPath, Stage: stage, Err: err})
	c.mu.Unlock()
}

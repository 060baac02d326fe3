package indexer

import (
	"context"
	"os"
	"path/filepath"
)

// Rescan walks the whole tree and runs a cycle over everything it finds,
// plus every tracked file that is no longer on disk (so stale records become
// deletions). This is the initial-indexing path, the crash-recovery path,
// and the fallback when the watcher degrades. Unchanged files still
// short-circuit at the filter step, so a rescan of a clean tree is cheap.
func (ix *Indexer) Rescan(ctx context.Context) (*CycleReport, error) {
	candidates, err := ix.walkTree()
	if err != nil {
		return nil, err
	}

	onDisk := make(map[string]bool, len(candidates))
	for _, p := range candidates {
		onDisk[p] = true
	}

	records, err := ix.records.AllRecords()
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if !onDisk[rec.Path] {
			candidates = append(candidates, rec.Path)
		}
	}

	return ix.RunCycle(ctx, candidates)
}

// walkTree lists every indexable file under the root: not ignored, not
// oversized, regular files only.
func (ix *Indexer) walkTree() ([]string, error) {
	var paths []string
	err := filepath.WalkDir(ix.rootDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		if d.IsDir() {
			if path != ix.rootDir && ix.ignores.ShouldIgnoreDir(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if ix.ignores.ShouldIgnore(path) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if !info.Mode().IsRegular() || ix.ignores.TooLarge(info.Size()) {
			return nil
		}
		paths = append(paths, ix.relPath(path))
		return nil
	})
	return paths, err
}

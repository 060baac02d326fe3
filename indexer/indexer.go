// Package indexer orchestrates incremental index maintenance: it consumes
// change candidates, filters out no-ops against the change store, expands
// the set through the dependency graph, and re-derives index state for every
// impacted file — never rescanning the whole tree for a localized edit.
package indexer

import (
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/arvell/symdex-mcp/extract"
	"github.com/arvell/symdex-mcp/graph"
	"github.com/arvell/symdex-mcp/ignore"
	"github.com/arvell/symdex-mcp/index"
	"github.com/arvell/symdex-mcp/store"
	"github.com/arvell/symdex-mcp/watcher"
)

// Options tunes an Indexer. Zero values select defaults.
type Options struct {
	// Workers bounds the re-derive worker pool. Default 8.
	Workers int

	// MaxDepth caps impact propagation hops; <= 0 means unbounded. This is a
	// cost knob, not a correctness one — a hot utility edit can legitimately
	// invalidate most of the repository.
	MaxDepth int
}

// Indexer is the incremental indexing engine. Construct one explicitly with
// New and pass it around; there is no process-global instance.
type Indexer struct {
	rootDir    string
	records    *store.Store
	deps       *graph.DependencyGraph
	impact     *graph.Analyzer
	symbols    *index.PartitionedIndex
	contents   *index.ContentIndex
	extractors *extract.Registry
	ignores    *ignore.Matcher
	logger     *slog.Logger

	workers  int
	maxDepth int
	locks    *pathLocks

	watchMu   sync.Mutex
	fsWatcher *watcher.Watcher
	watchStop chan struct{}
	watchWG   sync.WaitGroup
}

// New wires an Indexer over its collaborators.
func New(
	rootDir string,
	records *store.Store,
	deps *graph.DependencyGraph,
	symbols *index.PartitionedIndex,
	contents *index.ContentIndex,
	extractors *extract.Registry,
	ignores *ignore.Matcher,
	logger *slog.Logger,
	options Options,
) *Indexer {
	if options.Workers <= 0 {
		options.Workers = 8
	}
	return &Indexer{
		rootDir:    rootDir,
		records:    records,
		deps:       deps,
		impact:     graph.NewAnalyzer(deps),
		symbols:    symbols,
		contents:   contents,
		extractors: extractors,
		ignores:    ignores,
		logger:     logger,
		workers:    options.Workers,
		maxDepth:   options.MaxDepth,
		locks:      newPathLocks(),
	}
}

// Graph exposes the dependency graph for read access (impact queries).
func (ix *Indexer) Graph() *graph.DependencyGraph {
	return ix.deps
}

// relPath normalizes a candidate path to root-relative forward slashes.
func (ix *Indexer) relPath(p string) string {
	if filepath.IsAbs(p) {
		if rel, err := filepath.Rel(ix.rootDir, p); err == nil {
			p = rel
		}
	}
	return filepath.ToSlash(p)
}

// absPath converts a root-relative path back to a filesystem path.
func (ix *Indexer) absPath(rel string) string {
	return filepath.Join(ix.rootDir, filepath.FromSlash(rel))
}

// isIgnoreFile reports whether a path is one of the ignore rule files whose
// edit should reload the matcher.
func isIgnoreFile(path string) bool {
	base := filepath.Base(path)
	return base == ".gitignore" || base == ".symdexignore"
}

// normalizeCandidates converts, dedups, and filters an input path list.
func (ix *Indexer) normalizeCandidates(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	var candidates []string
	for _, p := range paths {
		rel := ix.relPath(p)
		if rel == "" || rel == "." || strings.HasPrefix(rel, "..") {
			continue
		}
		if seen[rel] {
			continue
		}
		seen[rel] = true
		candidates = append(candidates, rel)
	}
	return candidates
}

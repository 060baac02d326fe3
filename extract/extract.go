// Package extract turns file contents into symbol entries and import edges.
// Extractors are pure: the same bytes always produce the same output, which
// is what lets the indexer cache by content hash.
//
// Import extraction is deliberately over-approximate. An extractor returns
// repo-relative candidate paths for each import it sees; candidates that
// point at files that do not exist become dangling edges, which the impact
// analyzer treats as inert. A false edge costs a wasted reindex, a missed
// edge costs correctness, so extractors err toward emitting candidates.
package extract

import (
	"path"
	"strconv"
	"strings"

	"github.com/arvell/symdex-mcp/index"
)

// Extractor produces index entries and import candidates for one language.
type Extractor interface {
	// Extract returns the symbol entries for a file. Pure and deterministic.
	Extract(relPath string, content []byte) ([]index.Entry, error)

	// Imports returns repo-relative candidate paths this file depends on.
	// Candidates need not exist. Pure and deterministic.
	Imports(relPath string, content []byte) ([]string, error)
}

// Registry dispatches extractors by file extension. Files with no registered
// extractor index with zero symbols and zero imports — they are tracked and
// content-searchable but contribute nothing to the dependency graph.
type Registry struct {
	byExt map[string]Extractor
}

// NewRegistry returns a registry with the built-in extractors registered.
func NewRegistry() *Registry {
	r := &Registry{byExt: make(map[string]Extractor)}

	goEx := &GoExtractor{}
	r.Register("go", goEx)

	pyEx := &PythonExtractor{}
	r.Register("py", pyEx)
	r.Register("pyi", pyEx)

	jsEx := &ScriptExtractor{}
	for _, ext := range []string{"js", "jsx", "mjs", "cjs", "ts", "tsx"} {
		r.Register(ext, jsEx)
	}

	return r
}

// Register binds an extractor to a file extension (without dot).
func (r *Registry) Register(ext string, e Extractor) {
	r.byExt[strings.ToLower(ext)] = e
}

// For returns the extractor for a path, or nil if none is registered.
func (r *Registry) For(relPath string) Extractor {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(relPath), "."))
	return r.byExt[ext]
}

// symbolID builds the identity of an entry within its file. Name plus kind
// plus line keeps overloads and shadows distinct.
func symbolID(kind, name string, line int) string {
	return kind + ":" + name + ":" + strconv.Itoa(line)
}

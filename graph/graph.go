// Package graph tracks which files depend on which, and answers the question
// that drives incremental indexing: when this file changes, what else is
// stale?
package graph

import "sync"

// DependencyGraph holds directed file-to-file dependency edges. An edge
// from → to means "from's indexed content depends on to's content", e.g. an
// import. Forward and reverse adjacency are kept mutually consistent.
//
// Edges may point at paths that were never indexed (dangling imports); such
// nodes simply have no reverse neighbors of their own. Cycles are legal —
// circular imports exist in real code — so traversals must carry a visited
// set.
type DependencyGraph struct {
	mu      sync.RWMutex
	forward map[string]map[string]bool // from → set of to
	reverse map[string]map[string]bool // to → set of from
}

// NewDependencyGraph creates an empty graph.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		forward: make(map[string]map[string]bool),
		reverse: make(map[string]map[string]bool),
	}
}

// SetDependencies replaces all outgoing edges of file with the given targets.
// Stale edges are removed from both adjacencies; cost is proportional to the
// number of edges changed, not the size of the graph.
func (g *DependencyGraph) SetDependencies(file string, dependsOn []string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	next := make(map[string]bool, len(dependsOn))
	for _, target := range dependsOn {
		if target == file {
			continue // self-edges carry no information
		}
		next[target] = true
	}

	// Drop edges no longer present.
	for target := range g.forward[file] {
		if !next[target] {
			g.unlink(file, target)
		}
	}

	// Add new edges.
	for target := range next {
		if g.forward[file][target] {
			continue
		}
		if g.forward[file] == nil {
			g.forward[file] = make(map[string]bool)
		}
		g.forward[file][target] = true
		if g.reverse[target] == nil {
			g.reverse[target] = make(map[string]bool)
		}
		g.reverse[target][file] = true
	}
}

// Remove deletes file as both a source and a target of edges.
// Files that depended on it keep their other edges untouched.
func (g *DependencyGraph) Remove(file string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for target := range g.forward[file] {
		g.unlink(file, target)
	}
	for source := range g.reverse[file] {
		g.unlink(source, file)
	}
}

// unlink removes a single edge from both adjacencies. Caller holds the lock.
func (g *DependencyGraph) unlink(from, to string) {
	delete(g.forward[from], to)
	if len(g.forward[from]) == 0 {
		delete(g.forward, from)
	}
	delete(g.reverse[to], from)
	if len(g.reverse[to]) == 0 {
		delete(g.reverse, to)
	}
}

// Neighbors returns the files that file directly depends on.
func (g *DependencyGraph) Neighbors(file string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return keys(g.forward[file])
}

// ReverseNeighbors returns the files that directly depend on file.
func (g *DependencyGraph) ReverseNeighbors(file string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return keys(g.reverse[file])
}

// FileCount returns the number of files that appear as an endpoint of at
// least one edge.
func (g *DependencyGraph) FileCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	seen := make(map[string]bool, len(g.forward)+len(g.reverse))
	for file := range g.forward {
		seen[file] = true
	}
	for file := range g.reverse {
		seen[file] = true
	}
	return len(seen)
}

// EdgeCount returns the total number of edges in the graph.
func (g *DependencyGraph) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var n int
	for _, targets := range g.forward {
		n += len(targets)
	}
	return n
}

func keys(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	result := make([]string, 0, len(set))
	for k := range set {
		result = append(result, k)
	}
	return result
}

package graph

import "sort"

// Analyzer computes the set of files whose indexed data may be stale as a
// transitive consequence of one or more changed files.
type Analyzer struct {
	graph *DependencyGraph
}

// NewAnalyzer creates an analyzer over the given graph.
func NewAnalyzer(g *DependencyGraph) *Analyzer {
	return &Analyzer{graph: g}
}

// Impacted returns the ordered, deduplicated set of files that must be
// reconsidered when the given files change.
//
// The traversal is a breadth-first walk of the reverse adjacency: a change to
// a file impacts everything that declared a dependency on it. The changed
// files themselves come first (distance 0), then direct dependents, then
// transitive ones. That ordering is part of the contract — downstream work is
// applied in order, so under a time budget the closest, most load-bearing
// files win.
//
// maxDepth bounds the number of hops; zero or negative means unbounded. This
// is purely a cost-control knob: a change to a widely-imported utility can
// legitimately invalidate most of the repository.
func (a *Analyzer) Impacted(changedFiles []string, maxDepth int) []string {
	visited := make(map[string]bool, len(changedFiles))
	var order []string

	// Seed the frontier with the changed files, in input order, deduplicated.
	var frontier []string
	for _, file := range changedFiles {
		if visited[file] {
			continue
		}
		visited[file] = true
		order = append(order, file)
		frontier = append(frontier, file)
	}

	depth := 0
	for len(frontier) > 0 {
		if maxDepth > 0 && depth >= maxDepth {
			break
		}
		depth++

		var next []string
		for _, file := range frontier {
			dependents := a.graph.ReverseNeighbors(file)
			sort.Strings(dependents) // deterministic order within a level
			for _, dep := range dependents {
				if visited[dep] {
					continue
				}
				visited[dep] = true
				order = append(order, dep)
				next = append(next, dep)
			}
		}
		frontier = next
	}

	return order
}

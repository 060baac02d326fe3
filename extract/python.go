package extract

import (
	"path"
	"regexp"
	"strings"

	"github.com/arvell/symdex-mcp/index"
)

// PythonExtractor extracts def/class declarations and import candidates.
type PythonExtractor struct{}

var (
	pyDefRe    = regexp.MustCompile(`^(\s*)(?:async\s+)?def\s+([A-Za-z_]\w*)`)
	pyClassRe  = regexp.MustCompile(`^(\s*)class\s+([A-Za-z_]\w*)`)
	pyAssignRe = regexp.MustCompile(`^([A-Z_][A-Z0-9_]*)\s*=`)
	pyImportRe = regexp.MustCompile(`^import\s+([\w.]+(?:\s*,\s*[\w.]+)*)`)
	pyFromRe   = regexp.MustCompile(`^from\s+(\.*)([\w.]*)\s+import`)
)

// Extract returns entries for def, class, and module-level constant
// assignments. Nested defs are kept (methods matter for lookup) but marked
// by indentation depth in the payload.
func (e *PythonExtractor) Extract(relPath string, content []byte) ([]index.Entry, error) {
	var entries []index.Entry
	for i, line := range strings.Split(string(content), "\n") {
		lineNum := i + 1
		if m := pyDefRe.FindStringSubmatch(line); m != nil {
			kind := "function"
			if len(m[1]) > 0 {
				kind = "method"
			}
			entries = append(entries, entry(relPath, kind, m[2], lineNum, line))
			continue
		}
		if m := pyClassRe.FindStringSubmatch(line); m != nil {
			entries = append(entries, entry(relPath, "class", m[2], lineNum, line))
			continue
		}
		if m := pyAssignRe.FindStringSubmatch(line); m != nil {
			entries = append(entries, entry(relPath, "const", m[1], lineNum, line))
		}
	}
	return entries, nil
}

// Imports maps "import a.b" and "from a.b import c" statements to candidate
// paths. A module a.b yields "a/b.py" both relative to the importing file's
// directory and to the repo root; relative imports ("from . import x")
// resolve against the file's directory only. Package imports also yield the
// package's __init__.py.
func (e *PythonExtractor) Imports(relPath string, content []byte) ([]string, error) {
	dir := path.Dir(relPath)
	var candidates []string

	addModule := func(module string, relativeOnly bool) {
		if module == "" {
			return
		}
		rel := strings.ReplaceAll(module, ".", "/")
		candidates = append(candidates,
			path.Join(dir, rel+".py"),
			path.Join(dir, rel, "__init__.py"),
		)
		if !relativeOnly && dir != "." {
			candidates = append(candidates,
				rel+".py",
				path.Join(rel, "__init__.py"),
			)
		}
	}

	for _, line := range strings.Split(string(content), "\n") {
		trimmed := strings.TrimSpace(line)
		if m := pyImportRe.FindStringSubmatch(trimmed); m != nil {
			for _, module := range strings.Split(m[1], ",") {
				addModule(strings.TrimSpace(module), false)
			}
			continue
		}
		if m := pyFromRe.FindStringSubmatch(trimmed); m != nil {
			dots, module := m[1], m[2]
			if len(dots) > 0 {
				// Relative import: each extra dot walks one directory up.
				base := dir
				for i := 1; i < len(dots); i++ {
					base = path.Dir(base)
				}
				if module == "" {
					candidates = append(candidates, path.Join(base, "__init__.py"))
				} else {
					rel := strings.ReplaceAll(module, ".", "/")
					candidates = append(candidates,
						path.Join(base, rel+".py"),
						path.Join(base, rel, "__init__.py"),
					)
				}
				continue
			}
			addModule(module, false)
		}
	}
	return dedupe(candidates), nil
}

func dedupe(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	result := paths[:0]
	for _, p := range paths {
		p = path.Clean(p)
		if seen[p] {
			continue
		}
		seen[p] = true
		result = append(result, p)
	}
	return result
}

package extract

import (
	"path"
	"regexp"
	"strings"

	"github.com/arvell/symdex-mcp/index"
)

// GoExtractor extracts top-level Go declarations and import candidates using
// line-oriented regular expressions. It is not a parser — nested or
// generated oddities may slip through — but it is dependency-free and fast,
// and over-extraction only costs index noise.
type GoExtractor struct{}

var (
	goFuncRe   = regexp.MustCompile(`^func\s+(?:\([^)]*\)\s+)?([A-Za-z_]\w*)`)
	goTypeRe   = regexp.MustCompile(`^type\s+([A-Za-z_]\w*)`)
	goVarRe    = regexp.MustCompile(`^(var|const)\s+([A-Za-z_]\w*)`)
	goImportRe = regexp.MustCompile(`^import\s+(?:\w+\s+)?"([^"]+)"`)
	goQuotedRe = regexp.MustCompile(`^\s*(?:\w+\s+)?"([^"]+)"`)
)

// Extract returns entries for top-level func, type, var, and const
// declarations.
func (e *GoExtractor) Extract(relPath string, content []byte) ([]index.Entry, error) {
	var entries []index.Entry
	for i, line := range strings.Split(string(content), "\n") {
		lineNum := i + 1
		switch {
		case goFuncRe.MatchString(line):
			name := goFuncRe.FindStringSubmatch(line)[1]
			kind := "function"
			if strings.HasPrefix(strings.TrimPrefix(line, "func"), " (") {
				kind = "method"
			}
			entries = append(entries, entry(relPath, kind, name, lineNum, line))
		case goTypeRe.MatchString(line):
			name := goTypeRe.FindStringSubmatch(line)[1]
			entries = append(entries, entry(relPath, "type", name, lineNum, line))
		case goVarRe.MatchString(line):
			m := goVarRe.FindStringSubmatch(line)
			kind := "var"
			if m[1] == "const" {
				kind = "const"
			}
			entries = append(entries, entry(relPath, kind, m[2], lineNum, line))
		}
	}
	return entries, nil
}

// Imports returns candidate paths for the file's import declarations.
//
// Go imports name packages, not files; without the module path there is no
// exact file mapping. For an import "m/a/b" the candidates are "a/b/b.go"
// and "a/b.go" (directory-named file conventions), skipping paths whose
// first segment looks like an external domain. Misses fall out as dangling
// edges.
func (e *GoExtractor) Imports(relPath string, content []byte) ([]string, error) {
	var refs []string
	inBlock := false
	for _, line := range strings.Split(string(content), "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "import ("):
			inBlock = true
		case inBlock && trimmed == ")":
			inBlock = false
		case inBlock:
			if m := goQuotedRe.FindStringSubmatch(line); m != nil {
				refs = append(refs, m[1])
			}
		default:
			if m := goImportRe.FindStringSubmatch(trimmed); m != nil {
				refs = append(refs, m[1])
			}
		}
	}

	var candidates []string
	for _, ref := range refs {
		first := ref
		if idx := strings.Index(ref, "/"); idx >= 0 {
			first = ref[:idx]
		}
		if strings.Contains(first, ".") {
			// External module path (github.com/..., golang.org/...): the
			// in-repo portion is unknowable here, skip.
			continue
		}
		base := path.Base(ref)
		candidates = append(candidates,
			ref+"/"+base+".go",
			ref+".go",
		)
	}
	return candidates, nil
}

func entry(relPath, kind, name string, line int, payload string) index.Entry {
	return index.Entry{
		File:     relPath,
		SymbolID: symbolID(kind, name, line),
		Name:     name,
		Kind:     kind,
		Line:     line,
		Payload:  strings.TrimSpace(payload),
	}
}

package extract

import (
	"path"
	"regexp"
	"strings"

	"github.com/arvell/symdex-mcp/index"
)

// ScriptExtractor covers JavaScript and TypeScript with shared patterns.
type ScriptExtractor struct{}

var (
	jsFuncRe    = regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?(?:async\s+)?function\s*\*?\s*([A-Za-z_$][\w$]*)`)
	jsClassRe   = regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?(?:abstract\s+)?class\s+([A-Za-z_$][\w$]*)`)
	jsConstRe   = regexp.MustCompile(`^\s*(?:export\s+)?(const|let|var)\s+([A-Za-z_$][\w$]*)\s*=`)
	jsIfaceRe   = regexp.MustCompile(`^\s*(?:export\s+)?(?:interface|type|enum)\s+([A-Za-z_$][\w$]*)`)
	jsImportRe  = regexp.MustCompile(`^\s*import\s+(?:[^'"]*\s+from\s+)?['"]([^'"]+)['"]`)
	jsRequireRe = regexp.MustCompile(`require\(\s*['"]([^'"]+)['"]\s*\)`)
)

// Extract returns entries for functions, classes, interfaces/types/enums,
// and top-level bindings with initializers.
func (e *ScriptExtractor) Extract(relPath string, content []byte) ([]index.Entry, error) {
	var entries []index.Entry
	for i, line := range strings.Split(string(content), "\n") {
		lineNum := i + 1
		if m := jsFuncRe.FindStringSubmatch(line); m != nil {
			entries = append(entries, entry(relPath, "function", m[1], lineNum, line))
			continue
		}
		if m := jsClassRe.FindStringSubmatch(line); m != nil {
			entries = append(entries, entry(relPath, "class", m[1], lineNum, line))
			continue
		}
		if m := jsIfaceRe.FindStringSubmatch(line); m != nil {
			entries = append(entries, entry(relPath, "type", m[1], lineNum, line))
			continue
		}
		if m := jsConstRe.FindStringSubmatch(line); m != nil {
			entries = append(entries, entry(relPath, m[1], m[2], lineNum, line))
		}
	}
	return entries, nil
}

// Imports resolves relative import specifiers ("./x", "../y/z") to candidate
// paths with the usual extension and index-file fallbacks. Bare specifiers
// (package imports) are external and skipped.
func (e *ScriptExtractor) Imports(relPath string, content []byte) ([]string, error) {
	dir := path.Dir(relPath)
	var candidates []string

	addSpec := func(spec string) {
		if !strings.HasPrefix(spec, ".") {
			return
		}
		resolved := path.Join(dir, spec)
		if path.Ext(spec) != "" {
			candidates = append(candidates, resolved)
			return
		}
		for _, ext := range []string{".js", ".jsx", ".ts", ".tsx"} {
			candidates = append(candidates, resolved+ext)
		}
		for _, idx := range []string{"index.js", "index.ts"} {
			candidates = append(candidates, path.Join(resolved, idx))
		}
	}

	for _, line := range strings.Split(string(content), "\n") {
		if m := jsImportRe.FindStringSubmatch(line); m != nil {
			addSpec(m[1])
		}
		for _, m := range jsRequireRe.FindAllStringSubmatch(line, -1) {
			addSpec(m[1])
		}
	}
	return dedupe(candidates), nil
}

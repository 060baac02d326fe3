// Package language maps file paths to languages and sniffs binary content.
package language

import (
	"path/filepath"
	"strings"
)

// byExtension maps lower-case extensions (without dot) to language names.
var byExtension = map[string]string{
	"go": "Go",
	"py": "Python", "pyi": "Python",
	"js": "JavaScript", "jsx": "JavaScript", "mjs": "JavaScript", "cjs": "JavaScript",
	"ts": "TypeScript", "tsx": "TypeScript",
	"rs":   "Rust",
	"java": "Java",
	"kt":   "Kotlin", "kts": "Kotlin",
	"c": "C", "h": "C",
	"cpp": "C++", "cc": "C++", "cxx": "C++", "hpp": "C++",
	"cs":    "C#",
	"rb":    "Ruby",
	"php":   "PHP",
	"swift": "Swift",
	"sh":    "Shell", "bash": "Shell", "zsh": "Shell",
	"html": "HTML", "css": "CSS", "scss": "SCSS",
	"json": "JSON", "yaml": "YAML", "yml": "YAML", "toml": "TOML", "xml": "XML",
	"md": "Markdown", "rst": "reStructuredText",
	"sql":   "SQL",
	"proto": "Protobuf",
	"tf":    "Terraform",
	"lua":   "Lua",
	"zig":   "Zig",
	"ex":    "Elixir", "exs": "Elixir",
	"hs":  "Haskell",
	"txt": "Text",
}

// byBasename covers well-known extensionless files.
var byBasename = map[string]string{
	"makefile":   "Makefile",
	"dockerfile": "Dockerfile",
	"gemfile":    "Ruby",
	"rakefile":   "Ruby",
	".gitignore": "Git Config",
}

// Detect returns the language for a file path, or "Unknown".
func Detect(path string) string {
	if lang, ok := byBasename[strings.ToLower(filepath.Base(path))]; ok {
		return lang
	}
	if lang, ok := byExtension[strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))]; ok {
		return lang
	}
	return "Unknown"
}

// IsBinary reports whether data looks like binary content. A null byte in the
// first 512 bytes is the signal, same heuristic git uses.
func IsBinary(data []byte) bool {
	limit := 512
	if len(data) < limit {
		limit = len(data)
	}
	for i := 0; i < limit; i++ {
		if data[i] == 0 {
			return true
		}
	}
	return false
}

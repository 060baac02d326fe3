// Package ignore decides which paths are excluded from indexing. Rules come
// from built-in defaults, .gitignore, .symdexignore, and CLI patterns.
package ignore

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/denormal/go-gitignore"
)

// Matcher answers "should this path be indexed?". Thread-safe: Reload takes
// the write lock, the Should* methods take the read lock.
type Matcher struct {
	mu             sync.RWMutex
	rootDir        string
	gitIgnore      gitignore.GitIgnore
	projectIgnore  gitignore.GitIgnore // .symdexignore
	customPatterns []string
	maxFileSize    int64
}

// Options configures a Matcher.
type Options struct {
	RootDir        string
	CustomPatterns []string
	MaxFileSize    int64 // bytes; <= 0 selects the 1MB default
}

// New creates a matcher rooted at options.RootDir.
func New(options Options) *Matcher {
	m := &Matcher{
		rootDir:        options.RootDir,
		customPatterns: options.CustomPatterns,
		maxFileSize:    options.MaxFileSize,
	}
	if m.maxFileSize <= 0 {
		m.maxFileSize = 1024 * 1024
	}
	m.gitIgnore = loadIgnoreFile(filepath.Join(m.rootDir, ".gitignore"), m.rootDir)
	m.projectIgnore = loadIgnoreFile(filepath.Join(m.rootDir, ".symdexignore"), m.rootDir)
	return m
}

// ShouldIgnore returns true if the given absolute path must be excluded.
func (m *Matcher) ShouldIgnore(absPath string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	relPath, err := filepath.Rel(m.rootDir, absPath)
	if err != nil {
		relPath = absPath
	}
	relPath = filepath.ToSlash(relPath)

	if matchesDefaults(relPath) {
		return true
	}

	isDir := false
	if info, err := os.Stat(absPath); err == nil {
		isDir = info.IsDir()
	}

	// Relative() matches against rules without requiring the path to still
	// exist on disk, which matters for delete events.
	if m.gitIgnore != nil {
		if match := m.gitIgnore.Relative(relPath, isDir); match != nil && match.Ignore() {
			return true
		}
	}
	if m.projectIgnore != nil {
		if match := m.projectIgnore.Relative(relPath, isDir); match != nil && match.Ignore() {
			return true
		}
	}

	for _, pattern := range m.customPatterns {
		if matched, err := doublestar.Match(pattern, relPath); err == nil && matched {
			return true
		}
		if matched, err := doublestar.Match(pattern, filepath.Base(relPath)); err == nil && matched {
			return true
		}
	}

	return false
}

// ShouldIgnoreDir returns true if a directory should be skipped entirely
// during traversal or watching.
func (m *Matcher) ShouldIgnoreDir(absPath string) bool {
	if skipDirNames[filepath.Base(absPath)] {
		return true
	}
	return m.ShouldIgnore(absPath)
}

// TooLarge reports whether a file exceeds the size limit.
func (m *Matcher) TooLarge(size int64) bool {
	return size > m.maxFileSize
}

// MaxFileSize returns the configured size limit in bytes.
func (m *Matcher) MaxFileSize() int64 {
	return m.maxFileSize
}

// Reload re-reads the ignore files from disk. Called when the watcher sees
// them change.
func (m *Matcher) Reload() {
	freshGit := loadIgnoreFile(filepath.Join(m.rootDir, ".gitignore"), m.rootDir)
	freshProject := loadIgnoreFile(filepath.Join(m.rootDir, ".symdexignore"), m.rootDir)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.gitIgnore = freshGit
	m.projectIgnore = freshProject
}

// matchesDefaults checks the built-in pattern list against a relative path.
func matchesDefaults(relPath string) bool {
	base := strings.ToLower(filepath.Base(relPath))
	for _, pattern := range defaultPatterns {
		if !strings.ContainsAny(pattern, "*?[") {
			if base == pattern {
				return true
			}
			for _, part := range strings.Split(relPath, "/") {
				if strings.ToLower(part) == pattern {
					return true
				}
			}
			continue
		}
		if matched, err := filepath.Match(pattern, base); err == nil && matched {
			return true
		}
	}
	return false
}

// loadIgnoreFile parses a gitignore-format file, returning nil if absent.
func loadIgnoreFile(path string, baseDir string) gitignore.GitIgnore {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	return gitignore.New(f, baseDir, nil)
}

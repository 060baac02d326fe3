package ignore

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestMatcher(t *testing.T, patterns []string) (*Matcher, string) {
	t.Helper()
	rootDir := t.TempDir()
	m := New(Options{RootDir: rootDir, CustomPatterns: patterns})
	return m, rootDir
}

func Test_Matcher_DefaultPatterns(t *testing.T) {
	m, rootDir := newTestMatcher(t, nil)

	ignored := []string{
		"node_modules/react/index.js",
		"dist/bundle.js",
		"app.pyc",
		"photo.PNG",
		"package-lock.json",
	}
	for _, rel := range ignored {
		if !m.ShouldIgnore(filepath.Join(rootDir, filepath.FromSlash(rel))) {
			t.Errorf("expected %s to be ignored by defaults", rel)
		}
	}

	kept := []string{"main.go", "src/app.py", "README.md"}
	for _, rel := range kept {
		if m.ShouldIgnore(filepath.Join(rootDir, filepath.FromSlash(rel))) {
			t.Errorf("expected %s to be indexed", rel)
		}
	}
}

func Test_Matcher_GitignoreRules(t *testing.T) {
	rootDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(rootDir, ".gitignore"), []byte("*.log\nscratch/\n"), 0644); err != nil {
		t.Fatalf("writing .gitignore: %v", err)
	}
	m := New(Options{RootDir: rootDir})

	if !m.ShouldIgnore(filepath.Join(rootDir, "debug.log")) {
		t.Error("expected *.log rule to apply")
	}
	if m.ShouldIgnore(filepath.Join(rootDir, "debug.go")) {
		t.Error("expected non-matching file to be indexed")
	}
}

func Test_Matcher_ProjectIgnoreFile(t *testing.T) {
	rootDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(rootDir, ".symdexignore"), []byte("generated.go\n"), 0644); err != nil {
		t.Fatalf("writing .symdexignore: %v", err)
	}
	m := New(Options{RootDir: rootDir})

	if !m.ShouldIgnore(filepath.Join(rootDir, "generated.go")) {
		t.Error("expected the project ignore file to apply")
	}
}

func Test_Matcher_CustomPatterns(t *testing.T) {
	m, rootDir := newTestMatcher(t, []string{"**/*_gen.go", "testdata"})

	if !m.ShouldIgnore(filepath.Join(rootDir, "api", "types_gen.go")) {
		t.Error("expected custom glob to apply in subdirectories")
	}
	if !m.ShouldIgnore(filepath.Join(rootDir, "pkg", "testdata")) {
		t.Error("expected custom basename pattern to apply")
	}
	if m.ShouldIgnore(filepath.Join(rootDir, "api", "types.go")) {
		t.Error("expected non-matching file to be indexed")
	}
}

func Test_Matcher_DeletedPathStillMatchesRules(t *testing.T) {
	rootDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(rootDir, ".gitignore"), []byte("*.tmp\n"), 0644); err != nil {
		t.Fatalf("writing .gitignore: %v", err)
	}
	m := New(Options{RootDir: rootDir})

	// The path never existed on disk; rule matching must not require a stat.
	if !m.ShouldIgnore(filepath.Join(rootDir, "gone.tmp")) {
		t.Error("expected ignore rules to apply to paths that no longer exist")
	}
}

func Test_Matcher_ShouldIgnoreDir(t *testing.T) {
	m, rootDir := newTestMatcher(t, nil)

	for _, name := range []string{".git", "node_modules", "__pycache__", ".venv"} {
		if !m.ShouldIgnoreDir(filepath.Join(rootDir, name)) {
			t.Errorf("expected directory %s to be skipped", name)
		}
	}
	if m.ShouldIgnoreDir(filepath.Join(rootDir, "internal")) {
		t.Error("expected ordinary directories to be traversed")
	}
}

func Test_Matcher_Reload(t *testing.T) {
	rootDir := t.TempDir()
	m := New(Options{RootDir: rootDir})

	target := filepath.Join(rootDir, "noisy.gen")
	if m.ShouldIgnore(target) {
		t.Fatal("expected file to be indexed before the rule exists")
	}

	if err := os.WriteFile(filepath.Join(rootDir, ".gitignore"), []byte("*.gen\n"), 0644); err != nil {
		t.Fatalf("writing .gitignore: %v", err)
	}
	m.Reload()

	if !m.ShouldIgnore(target) {
		t.Error("expected reload to pick up the new rule")
	}
}

func Test_Matcher_TooLarge(t *testing.T) {
	m := New(Options{RootDir: t.TempDir(), MaxFileSize: 100})

	if m.TooLarge(100) {
		t.Error("expected a file at exactly the limit to pass")
	}
	if !m.TooLarge(101) {
		t.Error("expected a file over the limit to be rejected")
	}
}

func Test_Matcher_DefaultMaxFileSize(t *testing.T) {
	m := New(Options{RootDir: t.TempDir()})

	if m.MaxFileSize() != 1024*1024 {
		t.Errorf("expected 1MB default, got %d", m.MaxFileSize())
	}
}

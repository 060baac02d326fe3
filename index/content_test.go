package index

import (
	"testing"
)

func newTestContentIndex(t *testing.T) *ContentIndex {
	t.Helper()
	ci, err := NewContentIndex()
	if err != nil {
		t.Fatalf("creating content index: %v", err)
	}
	t.Cleanup(func() { ci.Close() })
	return ci
}

func Test_ContentIndex_UpsertAndSearch(t *testing.T) {
	ci := newTestContentIndex(t)

	if err := ci.Upsert("handler.go", "package web\n\nfunc HandleRequest() {}\n", "go"); err != nil {
		t.Fatalf("upserting content: %v", err)
	}
	if err := ci.Upsert("util.go", "package web\n\nfunc clamp(n int) int { return n }\n", "go"); err != nil {
		t.Fatalf("upserting content: %v", err)
	}

	results, total, err := ci.Search(ContentSearchOptions{Query: "HandleRequest"})
	if err != nil {
		t.Fatalf("searching: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 matching file, got %d", len(results))
	}
	if results[0].RelativePath != "handler.go" {
		t.Errorf("expected handler.go, got %s", results[0].RelativePath)
	}
	if total != 1 {
		t.Errorf("expected 1 total line match, got %d", total)
	}
	if results[0].Matches[0].LineNumber != 3 {
		t.Errorf("expected match on line 3, got %d", results[0].Matches[0].LineNumber)
	}
}

func Test_ContentIndex_UpsertReplacesContent(t *testing.T) {
	ci := newTestContentIndex(t)

	if err := ci.Upsert("a.go", "func Original() {}", "go"); err != nil {
		t.Fatalf("upserting content: %v", err)
	}
	if err := ci.Upsert("a.go", "func Replacement() {}", "go"); err != nil {
		t.Fatalf("upserting content: %v", err)
	}

	results, _, err := ci.Search(ContentSearchOptions{Query: "Original"})
	if err != nil {
		t.Fatalf("searching: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected old content unfindable after replacement, got %v", results)
	}
	if ci.DocumentCount() != 1 {
		t.Errorf("expected 1 document, got %d", ci.DocumentCount())
	}
}

func Test_ContentIndex_DeleteRemovesFromSearch(t *testing.T) {
	ci := newTestContentIndex(t)

	if err := ci.Upsert("a.go", "func Findable() {}", "go"); err != nil {
		t.Fatalf("upserting content: %v", err)
	}
	if err := ci.Delete("a.go"); err != nil {
		t.Fatalf("deleting content: %v", err)
	}

	results, _, err := ci.Search(ContentSearchOptions{Query: "Findable"})
	if err != nil {
		t.Fatalf("searching: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results after delete, got %v", results)
	}
	if _, ok := ci.Content("a.go"); ok {
		t.Error("expected raw content removed after delete")
	}
}

func Test_ContentIndex_SearchPhraseQuery(t *testing.T) {
	ci := newTestContentIndex(t)

	if err := ci.Upsert("a.md", "the quick brown fox\n", "markdown"); err != nil {
		t.Fatalf("upserting content: %v", err)
	}
	if err := ci.Upsert("b.md", "the brown quick fox\n", "markdown"); err != nil {
		t.Fatalf("upserting content: %v", err)
	}

	results, _, err := ci.Search(ContentSearchOptions{Query: `"quick brown"`})
	if err != nil {
		t.Fatalf("searching: %v", err)
	}
	if len(results) != 1 || results[0].RelativePath != "a.md" {
		t.Errorf("expected only the exact phrase to match, got %v", results)
	}
}

func Test_ContentIndex_SearchGlobFilter(t *testing.T) {
	ci := newTestContentIndex(t)

	if err := ci.Upsert("src/a.go", "func Shared() {}", "go"); err != nil {
		t.Fatalf("upserting content: %v", err)
	}
	if err := ci.Upsert("src/b.py", "def shared(): pass", "python"); err != nil {
		t.Fatalf("upserting content: %v", err)
	}

	results, _, err := ci.Search(ContentSearchOptions{Query: "shared", FileGlob: "**/*.go"})
	if err != nil {
		t.Fatalf("searching: %v", err)
	}
	if len(results) != 1 || results[0].RelativePath != "src/a.go" {
		t.Errorf("expected glob to restrict results to go files, got %v", results)
	}
}

func Test_ContentIndex_SearchContextLines(t *testing.T) {
	ci := newTestContentIndex(t)

	content := "line one\nline two\ntarget line\nline four\nline five\n"
	if err := ci.Upsert("a.txt", content, "text"); err != nil {
		t.Fatalf("upserting content: %v", err)
	}

	results, _, err := ci.Search(ContentSearchOptions{Query: "target", ContextLines: 1})
	if err != nil {
		t.Fatalf("searching: %v", err)
	}
	if len(results) != 1 || len(results[0].Matches) != 1 {
		t.Fatalf("expected one match, got %v", results)
	}
	match := results[0].Matches[0]
	if len(match.ContextBefore) != 1 || match.ContextBefore[0] != "line two" {
		t.Errorf("expected one context line before, got %v", match.ContextBefore)
	}
	if len(match.ContextAfter) != 1 || match.ContextAfter[0] != "line four" {
		t.Errorf("expected one context line after, got %v", match.ContextAfter)
	}
}

func Test_ContentIndex_ClearDropsEverything(t *testing.T) {
	ci := newTestContentIndex(t)

	if err := ci.Upsert("a.go", "func Anything() {}", "go"); err != nil {
		t.Fatalf("upserting content: %v", err)
	}
	if err := ci.Clear(); err != nil {
		t.Fatalf("clearing index: %v", err)
	}

	if ci.DocumentCount() != 0 {
		t.Errorf("expected 0 documents after clear, got %d", ci.DocumentCount())
	}
	if _, ok := ci.Content("a.go"); ok {
		t.Error("expected raw content dropped after clear")
	}

	// The index is usable again after a clear.
	if err := ci.Upsert("b.go", "func Fresh() {}", "go"); err != nil {
		t.Fatalf("upserting after clear: %v", err)
	}
	if ci.DocumentCount() != 1 {
		t.Errorf("expected 1 document after re-upsert, got %d", ci.DocumentCount())
	}
}

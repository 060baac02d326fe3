package indexer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/arvell/symdex-mcp/extract"
	"github.com/arvell/symdex-mcp/graph"
	"github.com/arvell/symdex-mcp/ignore"
	"github.com/arvell/symdex-mcp/index"
	"github.com/arvell/symdex-mcp/store"
)

type testEnv struct {
	ix       *Indexer
	rootDir  string
	records  *store.Store
	symbols  *index.PartitionedIndex
	contents *index.ContentIndex
	deps     *graph.DependencyGraph
}

func newTestEnv(t *testing.T, options Options) *testEnv {
	t.Helper()
	return newSizedTestEnv(t, options, 0)
}

// newSizedTestEnv builds an environment with an explicit file size cap;
// zero selects the default.
func newSizedTestEnv(t *testing.T, options Options, maxFileSize int64) *testEnv {
	t.Helper()
	rootDir := t.TempDir()

	records, err := store.Open(filepath.Join(t.TempDir(), "records.db"), rootDir)
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { records.Close() })

	contents, err := index.NewContentIndex()
	if err != nil {
		t.Fatalf("creating content index: %v", err)
	}
	t.Cleanup(func() { contents.Close() })

	symbols := index.NewPartitionedIndex()
	deps := graph.NewDependencyGraph()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ignores := ignore.New(ignore.Options{RootDir: rootDir, MaxFileSize: maxFileSize})

	ix := New(rootDir, records, deps, symbols, contents, extract.NewRegistry(),
		ignores, logger, options)

	return &testEnv{
		ix:       ix,
		rootDir:  rootDir,
		records:  records,
		symbols:  symbols,
		contents: contents,
		deps:     deps,
	}
}

func (env *testEnv) write(t *testing.T, relPath string, content string) {
	t.Helper()
	absPath := filepath.Join(env.rootDir, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
		t.Fatalf("creating directory: %v", err)
	}
	if err := os.WriteFile(absPath, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", relPath, err)
	}
}

func (env *testEnv) remove(t *testing.T, relPath string) {
	t.Helper()
	if err := os.Remove(filepath.Join(env.rootDir, filepath.FromSlash(relPath))); err != nil {
		t.Fatalf("removing %s: %v", relPath, err)
	}
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

func Test_RunCycle_IndexesNewFiles(t *testing.T) {
	env := newTestEnv(t, Options{})
	env.write(t, "a.py", "def handler():\n    pass\n")

	report, err := env.ix.RunCycle(context.Background(), []string{"a.py"})
	if err != nil {
		t.Fatalf("running cycle: %v", err)
	}

	if !contains(report.Updated, "a.py") {
		t.Errorf("expected a.py in Updated, got %+v", report)
	}
	entries := env.symbols.Entries("a.py")
	if len(entries) != 1 || entries[0].Name != "handler" {
		t.Errorf("expected a handler symbol, got %v", entries)
	}
	if _, ok := env.contents.Content("a.py"); !ok {
		t.Error("expected content indexed")
	}
	rec, err := env.records.Record("a.py")
	if err != nil || rec == nil {
		t.Errorf("expected a committed record, got %v (%v)", rec, err)
	}
}

func Test_RunCycle_SecondCycleIsIdempotent(t *testing.T) {
	env := newTestEnv(t, Options{})
	env.write(t, "a.py", "def handler():\n    pass\n")

	if _, err := env.ix.RunCycle(context.Background(), []string{"a.py"}); err != nil {
		t.Fatalf("first cycle: %v", err)
	}
	report, err := env.ix.RunCycle(context.Background(), []string{"a.py"})
	if err != nil {
		t.Fatalf("second cycle: %v", err)
	}

	if len(report.Updated) != 0 {
		t.Errorf("expected nothing re-derived on a clean second cycle, got %v", report.Updated)
	}
	if !contains(report.Skipped, "a.py") {
		t.Errorf("expected a.py filtered as unchanged, got %+v", report)
	}
}

func Test_RunCycle_ImpactReindexesDependents(t *testing.T) {
	env := newTestEnv(t, Options{})
	env.write(t, "a.py", "VALUE = 1\n")
	env.write(t, "b.py", "import a\n\ndef use():\n    return a.VALUE\n")
	env.write(t, "c.py", "import b\n")

	if _, err := env.ix.Rescan(context.Background()); err != nil {
		t.Fatalf("initial scan: %v", err)
	}
	if deps := env.deps.ReverseNeighbors("a.py"); !contains(deps, "b.py") {
		t.Fatalf("expected b.py to depend on a.py, got %v", deps)
	}

	env.write(t, "a.py", "VALUE = 2\n")
	report, err := env.ix.RunCycle(context.Background(), []string{"a.py"})
	if err != nil {
		t.Fatalf("running cycle: %v", err)
	}

	for _, want := range []string{"a.py", "b.py", "c.py"} {
		if !contains(report.Updated, want) {
			t.Errorf("expected %s re-derived after the change to a.py, got %v", want, report.Updated)
		}
	}
}

func Test_RunCycle_UnrelatedFilesStayUntouched(t *testing.T) {
	env := newTestEnv(t, Options{})
	env.write(t, "a.py", "VALUE = 1\n")
	env.write(t, "other.py", "UNRELATED = True\n")

	if _, err := env.ix.Rescan(context.Background()); err != nil {
		t.Fatalf("initial scan: %v", err)
	}

	env.write(t, "a.py", "VALUE = 2\n")
	report, err := env.ix.RunCycle(context.Background(), []string{"a.py"})
	if err != nil {
		t.Fatalf("running cycle: %v", err)
	}

	if contains(report.Updated, "other.py") {
		t.Errorf("expected other.py untouched, got %v", report.Updated)
	}
}

func Test_RunCycle_DeletionCleansEverything(t *testing.T) {
	env := newTestEnv(t, Options{})
	env.write(t, "a.py", "def gone():\n    pass\n")
	env.write(t, "b.py", "import a\n")

	if _, err := env.ix.Rescan(context.Background()); err != nil {
		t.Fatalf("initial scan: %v", err)
	}

	env.remove(t, "a.py")
	report, err := env.ix.RunCycle(context.Background(), []string{"a.py"})
	if err != nil {
		t.Fatalf("running cycle: %v", err)
	}

	if !contains(report.Deleted, "a.py") {
		t.Errorf("expected a.py in Deleted, got %+v", report)
	}
	if entries := env.symbols.Entries("a.py"); entries != nil {
		t.Errorf("expected symbols cleaned up, got %v", entries)
	}
	if _, ok := env.contents.Content("a.py"); ok {
		t.Error("expected content cleaned up")
	}
	rec, err := env.records.Record("a.py")
	if err != nil {
		t.Fatalf("reading record: %v", err)
	}
	if rec != nil {
		t.Errorf("expected record removed, got %+v", rec)
	}
}

func Test_RunCycle_PhantomEventIsNoOp(t *testing.T) {
	env := newTestEnv(t, Options{})

	report, err := env.ix.RunCycle(context.Background(), []string{"never-existed.py"})
	if err != nil {
		t.Fatalf("running cycle: %v", err)
	}

	if len(report.Updated) != 0 || len(report.Deleted) != 0 || len(report.Failed) != 0 {
		t.Errorf("expected a phantom event to change nothing, got %+v", report)
	}
}

func Test_RunCycle_TouchedFileSkipsReindex(t *testing.T) {
	env := newTestEnv(t, Options{})
	env.write(t, "a.py", "VALUE = 1\n")

	if _, err := env.ix.RunCycle(context.Background(), []string{"a.py"}); err != nil {
		t.Fatalf("first cycle: %v", err)
	}

	absPath := filepath.Join(env.rootDir, "a.py")
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(absPath, future, future); err != nil {
		t.Fatalf("touching file: %v", err)
	}

	report, err := env.ix.RunCycle(context.Background(), []string{"a.py"})
	if err != nil {
		t.Fatalf("second cycle: %v", err)
	}
	if len(report.Updated) != 0 {
		t.Errorf("expected a touched-but-identical file to skip, got %v", report.Updated)
	}
}

func Test_RunCycle_BinaryFileIsDropped(t *testing.T) {
	env := newTestEnv(t, Options{})
	env.write(t, "data.bin", "text for now")

	if _, err := env.ix.RunCycle(context.Background(), []string{"data.bin"}); err != nil {
		t.Fatalf("first cycle: %v", err)
	}
	if _, ok := env.contents.Content("data.bin"); !ok {
		t.Fatal("expected text file indexed")
	}

	env.write(t, "data.bin", "now\x00binary")
	report, err := env.ix.RunCycle(context.Background(), []string{"data.bin"})
	if err != nil {
		t.Fatalf("second cycle: %v", err)
	}

	if !contains(report.Deleted, "data.bin") {
		t.Errorf("expected a file turned binary to drop out, got %+v", report)
	}
	if _, ok := env.contents.Content("data.bin"); ok {
		t.Error("expected binary content removed from the index")
	}
}

func Test_RunCycle_MaxDepthLimitsPropagation(t *testing.T) {
	env := newTestEnv(t, Options{MaxDepth: 1})
	env.write(t, "a.py", "VALUE = 1\n")
	env.write(t, "b.py", "import a\n")
	env.write(t, "c.py", "import b\n")

	if _, err := env.ix.Rescan(context.Background()); err != nil {
		t.Fatalf("initial scan: %v", err)
	}

	env.write(t, "a.py", "VALUE = 2\n")
	report, err := env.ix.RunCycle(context.Background(), []string{"a.py"})
	if err != nil {
		t.Fatalf("running cycle: %v", err)
	}

	if !contains(report.Updated, "b.py") {
		t.Errorf("expected the direct dependent re-derived, got %v", report.Updated)
	}
	if contains(report.Updated, "c.py") {
		t.Errorf("expected depth 1 to stop before c.py, got %v", report.Updated)
	}
}

func Test_Rescan_IndexesWholeTree(t *testing.T) {
	env := newTestEnv(t, Options{})
	env.write(t, "a.py", "def a():\n    pass\n")
	env.write(t, "pkg/b.py", "def b():\n    pass\n")
	env.write(t, "README.md", "# readme\n")

	report, err := env.ix.Rescan(context.Background())
	if err != nil {
		t.Fatalf("rescanning: %v", err)
	}

	for _, want := range []string{"a.py", "pkg/b.py", "README.md"} {
		if !contains(report.Updated, want) {
			t.Errorf("expected %s indexed, got %v", want, report.Updated)
		}
	}
	// Files without an extractor are content-searchable but contribute no
	// symbols.
	if entries := env.symbols.Entries("README.md"); len(entries) != 0 {
		t.Errorf("expected no symbols for markdown, got %v", entries)
	}
	if _, ok := env.contents.Content("README.md"); !ok {
		t.Error("expected markdown content indexed")
	}
}

func Test_Rescan_RemovesStaleRecords(t *testing.T) {
	env := newTestEnv(t, Options{})
	env.write(t, "a.py", "def a():\n    pass\n")

	if _, err := env.ix.Rescan(context.Background()); err != nil {
		t.Fatalf("initial scan: %v", err)
	}

	// Simulate a deletion that happened while the process was down.
	env.remove(t, "a.py")
	report, err := env.ix.Rescan(context.Background())
	if err != nil {
		t.Fatalf("rescanning: %v", err)
	}

	if !contains(report.Deleted, "a.py") {
		t.Errorf("expected the stale record turned into a deletion, got %+v", report)
	}
	count, err := env.records.Count()
	if err != nil {
		t.Fatalf("counting records: %v", err)
	}
	if count != 0 {
		t.Errorf("expected an empty store, got %d records", count)
	}
}

func Test_Rescan_SkipsIgnoredFiles(t *testing.T) {
	env := newTestEnv(t, Options{})
	env.write(t, "a.py", "def a():\n    pass\n")
	env.write(t, "node_modules/dep/index.js", "module.exports = {};\n")

	report, err := env.ix.Rescan(context.Background())
	if err != nil {
		t.Fatalf("rescanning: %v", err)
	}

	if contains(report.Updated, "node_modules/dep/index.js") {
		t.Error("expected node_modules skipped")
	}
}

func Test_RunCycle_FailedFileStaysCandidate(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("permission-based read failures do not apply to root")
	}
	env := newTestEnv(t, Options{})
	env.write(t, "a.py", "def a():\n    pass\n")

	absPath := filepath.Join(env.rootDir, "a.py")
	if err := os.Chmod(absPath, 0000); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { os.Chmod(absPath, 0644) })

	report, err := env.ix.RunCycle(context.Background(), []string{"a.py"})
	if err != nil {
		t.Fatalf("running cycle: %v", err)
	}
	if len(report.Failed) != 1 || report.Failed[0].Path != "a.py" {
		t.Fatalf("expected a.py to fail, got %+v", report)
	}

	// The record was never committed, so the file re-seeds once readable.
	if err := os.Chmod(absPath, 0644); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	report, err = env.ix.RunCycle(context.Background(), []string{"a.py"})
	if err != nil {
		t.Fatalf("retry cycle: %v", err)
	}
	if !contains(report.Updated, "a.py") {
		t.Errorf("expected the retry to succeed, got %+v", report)
	}
}

func Test_RunCycle_RenameAcrossExtensions(t *testing.T) {
	env := newTestEnv(t, Options{})
	env.write(t, "mod.js", "export function mod() {}\n")

	if _, err := env.ix.RunCycle(context.Background(), []string{"mod.js"}); err != nil {
		t.Fatalf("first cycle: %v", err)
	}

	// A rename arrives as a deletion of the old path plus a creation of the
	// new one.
	env.remove(t, "mod.js")
	env.write(t, "mod.ts", "export function mod() {}\n")

	report, err := env.ix.RunCycle(context.Background(), []string{"mod.js", "mod.ts"})
	if err != nil {
		t.Fatalf("rename cycle: %v", err)
	}

	if !contains(report.Deleted, "mod.js") || !contains(report.Updated, "mod.ts") {
		t.Errorf("expected old path deleted and new path indexed, got %+v", report)
	}
	if entries := env.symbols.Entries("mod.js"); entries != nil {
		t.Errorf("expected no ghost entries under the old path, got %v", entries)
	}
	if entries := env.symbols.Entries("mod.ts"); len(entries) != 1 {
		t.Errorf("expected the renamed file's symbols, got %v", entries)
	}
}

func Test_EnableWatch_PicksUpEdits(t *testing.T) {
	env := newTestEnv(t, Options{})
	env.write(t, "a.py", "VALUE = 1\n")

	if _, err := env.ix.Rescan(context.Background()); err != nil {
		t.Fatalf("initial scan: %v", err)
	}
	if err := env.ix.EnableWatch(20 * time.Millisecond); err != nil {
		t.Fatalf("enabling watch: %v", err)
	}
	defer env.ix.StopWatch()

	env.write(t, "a.py", "VALUE = 2\nNEW_VALUE = 3\n")

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		entries := env.symbols.Entries("a.py")
		if len(entries) == 2 {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("watcher never picked up the edit, entries: %v", env.symbols.Entries("a.py"))
}

func Test_EnableWatch_TwiceFails(t *testing.T) {
	env := newTestEnv(t, Options{})

	if err := env.ix.EnableWatch(20 * time.Millisecond); err != nil {
		t.Fatalf("enabling watch: %v", err)
	}
	defer env.ix.StopWatch()

	if err := env.ix.EnableWatch(20 * time.Millisecond); err == nil {
		t.Error("expected a second EnableWatch to fail")
	}
}

func Test_RunCycle_OversizedFileIsSkipped(t *testing.T) {
	env := newSizedTestEnv(t, Options{}, 100)
	env.write(t, "big.py", strings.Repeat("VALUE = 1\n", 51))

	report, err := env.ix.RunCycle(context.Background(), []string{"big.py"})
	if err != nil {
		t.Fatalf("running cycle: %v", err)
	}

	if contains(report.Updated, "big.py") {
		t.Errorf("expected the oversized file excluded, got %+v", report)
	}
	if entries := env.symbols.Entries("big.py"); entries != nil {
		t.Errorf("expected no symbols for the oversized file, got %v", entries)
	}
	if _, ok := env.contents.Content("big.py"); ok {
		t.Error("expected no indexed content for the oversized file")
	}
	rec, err := env.records.Record("big.py")
	if err != nil {
		t.Fatalf("reading record: %v", err)
	}
	if rec != nil {
		t.Errorf("expected no committed record, got %+v", rec)
	}
}

func Test_RunCycle_FileGrownPastCapIsDropped(t *testing.T) {
	env := newSizedTestEnv(t, Options{}, 100)
	env.write(t, "a.py", "VALUE = 1\n")

	if _, err := env.ix.RunCycle(context.Background(), []string{"a.py"}); err != nil {
		t.Fatalf("first cycle: %v", err)
	}
	if entries := env.symbols.Entries("a.py"); len(entries) != 1 {
		t.Fatalf("expected the small file indexed, got %v", entries)
	}

	env.write(t, "a.py", strings.Repeat("VALUE = 1\n", 51))

	report, err := env.ix.RunCycle(context.Background(), []string{"a.py"})
	if err != nil {
		t.Fatalf("second cycle: %v", err)
	}

	if !contains(report.Deleted, "a.py") {
		t.Errorf("expected the grown file dropped, got %+v", report)
	}
	if entries := env.symbols.Entries("a.py"); entries != nil {
		t.Errorf("expected stale symbols removed, got %v", entries)
	}
	if _, ok := env.contents.Content("a.py"); ok {
		t.Error("expected stale content removed")
	}
	rec, err := env.records.Record("a.py")
	if err != nil {
		t.Fatalf("reading record: %v", err)
	}
	if rec != nil {
		t.Errorf("expected the record removed, got %+v", rec)
	}
}

func Test_WatchLoop_DegradationFallsBackToRescan(t *testing.T) {
	env := newTestEnv(t, Options{})
	env.write(t, "a.py", "VALUE = 1\n")

	degraded := make(chan error, 1)
	degraded <- errors.New("too many open files")
	stop := make(chan struct{})

	env.ix.watchWG.Add(1)
	go env.ix.watchLoop(nil, degraded, stop)
	defer func() {
		close(stop)
		env.ix.watchWG.Wait()
	}()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if entries := env.symbols.Entries("a.py"); len(entries) == 1 {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("fallback rescan never indexed the file, entries: %v",
		env.symbols.Entries("a.py"))
}

func Test_RunCycle_CancelledContextLeavesCandidates(t *testing.T) {
	env := newTestEnv(t, Options{Workers: 1})
	env.write(t, "a.py", "VALUE = 1\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := env.ix.RunCycle(ctx, []string{"a.py"}); err != nil {
		t.Fatalf("running cycle: %v", err)
	}

	// Whether or not the worker dequeued the file before noticing the
	// cancellation, a later cycle must converge.
	report, err := env.ix.RunCycle(context.Background(), []string{"a.py"})
	if err != nil {
		t.Fatalf("follow-up cycle: %v", err)
	}
	if len(report.Updated)+len(report.Skipped) == 0 {
		t.Errorf("expected the file indexed or already current, got %+v", report)
	}
}

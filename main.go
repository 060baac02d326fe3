package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/arvell/symdex-mcp/extract"
	"github.com/arvell/symdex-mcp/graph"
	"github.com/arvell/symdex-mcp/ignore"
	"github.com/arvell/symdex-mcp/index"
	"github.com/arvell/symdex-mcp/indexer"
	"github.com/arvell/symdex-mcp/register"
	"github.com/arvell/symdex-mcp/server"
	"github.com/arvell/symdex-mcp/store"
	"github.com/arvell/symdex-mcp/tools"
)

// excludePatterns is a repeatable CLI flag for extra ignore patterns.
type excludePatterns []string

func (e *excludePatterns) String() string { return strings.Join(*e, ", ") }
func (e *excludePatterns) Set(value string) error {
	*e = append(*e, value)
	return nil
}

func main() {
	// The register subcommand writes MCP client config and exits.
	if len(os.Args) > 1 && os.Args[1] == "register" {
		exe, _ := os.Executable()
		if err := register.Run(register.DeriveServerName(exe), os.Args[2:]); err != nil {
			os.Exit(1)
		}
		return
	}

	var rootDir string
	var dbPath string
	var workers int
	var maxDepth int
	var debounceMs int
	var maxFileSizeBytes int64
	var logLevel string
	var logFile string
	var noWatch bool
	var excludes excludePatterns

	flag.StringVar(&rootDir, "root", "", "Project root directory (default: current working directory)")
	flag.StringVar(&dbPath, "db", "", "Change record database path (default: <root>/.symdex.db)")
	flag.IntVar(&workers, "workers", 8, "Reindex worker pool size")
	flag.IntVar(&maxDepth, "max-depth", 0, "Maximum impact propagation hops (0 = unbounded)")
	flag.IntVar(&debounceMs, "debounce", 100, "Watcher debounce window in milliseconds")
	flag.Int64Var(&maxFileSizeBytes, "max-file-size", 1024*1024, "Maximum file size in bytes (default: 1MB)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level: debug|info|warn|error")
	flag.StringVar(&logFile, "log-file", "", "Log file path (default: <root>/symdex-mcp.log)")
	flag.BoolVar(&noWatch, "no-watch", false, "Disable the filesystem watcher")
	flag.Var(&excludes, "exclude", "Extra ignore pattern (repeatable)")
	flag.Parse()

	if rootDir == "" {
		var err error
		rootDir, err = os.Getwd()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting working directory: %v\n", err)
			os.Exit(1)
		}
	}
	rootDir, _ = filepath.Abs(rootDir)
	if dbPath == "" {
		dbPath = filepath.Join(rootDir, ".symdex.db")
	}
	if logFile == "" {
		logFile = filepath.Join(rootDir, "symdex-mcp.log")
	}

	// Logs go to a file or stderr, never stdout — stdout carries MCP stdio.
	logger := setupLogger(logLevel, logFile)

	logger.Info("starting symdex-mcp",
		"root", rootDir,
		"db", dbPath,
		"workers", workers,
		"maxDepth", maxDepth,
	)

	startTime := time.Now()

	ignoreMatcher := ignore.New(ignore.Options{
		RootDir:        rootDir,
		CustomPatterns: excludes,
		MaxFileSize:    maxFileSizeBytes,
	})

	records, err := store.Open(dbPath, rootDir)
	if err != nil {
		logger.Error("failed to open change store", "error", err)
		os.Exit(1)
	}
	defer records.Close()

	contents, err := index.NewContentIndex()
	if err != nil {
		logger.Error("failed to create content index", "error", err)
		os.Exit(1)
	}
	defer contents.Close()

	symbols := index.NewPartitionedIndex()
	deps := graph.NewDependencyGraph()
	extractors := extract.NewRegistry()

	engine := indexer.New(rootDir, records, deps, symbols, contents, extractors,
		ignoreMatcher, logger, indexer.Options{Workers: workers, MaxDepth: maxDepth})

	// Initial scan. The change store survives restarts, so most files skip
	// at the filter step on a warm start; the in-memory indexes still need
	// one full pass to repopulate.
	report, err := engine.Rescan(context.Background())
	if err != nil {
		logger.Error("initial scan failed", "error", err)
		os.Exit(1)
	}
	logger.Info("initial scan complete", "report", report.String())

	if !noWatch {
		window := time.Duration(debounceMs) * time.Millisecond
		if err := engine.EnableWatch(window); err != nil {
			logger.Warn("failed to start file watcher, continuing without live updates", "error", err)
		} else {
			defer engine.StopWatch()
		}
	}

	symbolsHandler := &tools.SymbolsHandler{Symbols: symbols, Logger: logger}
	searchHandler := &tools.SearchHandler{Contents: contents, Logger: logger}
	filesHandler := &tools.FilesHandler{Records: records, Logger: logger}
	impactHandler := &tools.ImpactHandler{Graph: deps, Logger: logger}
	statusHandler := &tools.StatusHandler{
		Records:   records,
		Symbols:   symbols,
		Contents:  contents,
		Graph:     deps,
		StartTime: startTime,
		RootDir:   rootDir,
		Logger:    logger,
	}
	reindexHandler := &tools.ReindexHandler{Indexer: engine, Logger: logger}

	mcpServer := server.Setup(symbolsHandler, searchHandler, filesHandler,
		impactHandler, statusHandler, reindexHandler)

	logger.Info("MCP server starting on stdio")
	if err := mcpServer.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		logger.Error("MCP server error", "error", err)
		os.Exit(1)
	}
}

// setupLogger creates an slog.Logger writing to a file or stderr.
func setupLogger(level string, logFile string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	writer := os.Stderr
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: cannot open log file %s: %v, falling back to stderr\n", logFile, err)
		} else {
			writer = f
		}
	}

	handler := slog.NewTextHandler(writer, &slog.HandlerOptions{Level: logLevel})
	return slog.New(handler)
}

package tools

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"github.com/arvell/symdex-mcp/graph"
	"github.com/arvell/symdex-mcp/index"
	"github.com/arvell/symdex-mcp/store"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// StatusArgs defines the input parameters for the symdex_status tool (none).
type StatusArgs struct{}

// StatusHandler holds the dependencies for the status tool.
type StatusHandler struct {
	Records   *store.Store
	Symbols   *index.PartitionedIndex
	Contents  *index.ContentIndex
	Graph     *graph.DependencyGraph
	StartTime time.Time
	RootDir   string
	Logger    *slog.Logger
}

// Handle processes a symdex_status request.
func (h *StatusHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args StatusArgs) (*mcp.CallToolResult, any, error) {
	fileCount, err := h.Records.Count()
	if err != nil {
		return timedError(h.Logger, "symdex_status", err), nil, nil
	}

	stats := h.Symbols.Stats()
	docCount := h.Contents.DocumentCount()
	edgeCount := h.Graph.EdgeCount()
	uptime := time.Since(h.StartTime)

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	h.Logger.Info("symdex_status",
		"files", fileCount,
		"symbols", stats.Entries,
		"edges", edgeCount,
		"uptime", uptime,
	)

	var b strings.Builder
	b.WriteString("=== symdex Status ===\n\n")
	b.WriteString(fmt.Sprintf("Root directory: %s\n", h.RootDir))
	b.WriteString(fmt.Sprintf("Uptime: %s\n", formatDuration(uptime)))
	b.WriteString(fmt.Sprintf("Tracked files: %d\n", fileCount))
	b.WriteString(fmt.Sprintf("Symbols: %d in %d partitions (%d files)\n",
		stats.Entries, stats.Partitions, stats.Files))
	b.WriteString(fmt.Sprintf("Content documents: %d\n", docCount))
	b.WriteString(fmt.Sprintf("Dependency graph: %d files, %d edges\n", h.Graph.FileCount(), edgeCount))
	b.WriteString(fmt.Sprintf("Memory usage: %s (heap: %s)\n",
		formatByteSize(int64(memStats.Alloc)),
		formatByteSize(int64(memStats.HeapAlloc)),
	))

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: b.String()}},
	}, nil, nil
}

// formatDuration renders an uptime compactly (e.g. 3m12s, 2h5m).
func formatDuration(d time.Duration) string {
	totalSeconds := int(d.Seconds())
	if totalSeconds < 60 {
		return fmt.Sprintf("%ds", totalSeconds)
	}
	totalMinutes := totalSeconds / 60
	if totalMinutes < 60 {
		return fmt.Sprintf("%dm%ds", totalMinutes, totalSeconds%60)
	}
	return fmt.Sprintf("%dh%dm", totalMinutes/60, totalMinutes%60)
}

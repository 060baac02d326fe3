package tools

import (
	"context"
	"log/slog"

	"github.com/arvell/symdex-mcp/indexer"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ReindexArgs defines the input parameters for the symdex_reindex tool.
type ReindexArgs struct {
	Paths []string `json:"paths,omitempty" jsonschema:"Specific relative paths to reconsider. Empty means rescan the whole tree"`
}

// ReindexHandler holds the dependencies for the reindex tool.
type ReindexHandler struct {
	Indexer *indexer.Indexer
	Logger  *slog.Logger
}

// Handle processes a symdex_reindex request. With explicit paths this is an
// incremental cycle; without, a full rescan (which still skips unchanged
// files at the filter step).
func (h *ReindexHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args ReindexArgs) (*mcp.CallToolResult, any, error) {
	h.Logger.Info("symdex_reindex started", "paths", len(args.Paths))

	var report *indexer.CycleReport
	var err error
	if len(args.Paths) > 0 {
		report, err = h.Indexer.RunCycle(ctx, args.Paths)
	} else {
		report, err = h.Indexer.Rescan(ctx)
	}
	if err != nil {
		return timedError(h.Logger, "symdex_reindex", err), nil, nil
	}

	h.Logger.Info("symdex_reindex complete", "report", report.String())

	output := FormatCycleReport(report)
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: output}},
	}, nil, nil
}

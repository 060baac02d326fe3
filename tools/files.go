package tools

import (
	"context"
	"log/slog"
	"time"

	"github.com/arvell/symdex-mcp/store"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// FilesArgs defines the input parameters for the symdex_files tool.
type FilesArgs struct {
	Pattern    string `json:"pattern" jsonschema:"Glob pattern to match tracked files (e.g. **/*.ts or src/**/*.go)"`
	MaxResults int    `json:"maxResults,omitempty" jsonschema:"Maximum number of results to return (default 50)"`
}

// FilesHandler holds the dependencies for the file listing tool.
type FilesHandler struct {
	Records *store.Store
	Logger  *slog.Logger
}

// Handle processes a symdex_files request.
func (h *FilesHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args FilesArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	if args.Pattern == "" {
		h.Logger.Warn("symdex_files called with empty pattern")
		return errorResult("Error: pattern parameter is required"), nil, nil
	}

	records, err := h.Records.SearchByGlob(args.Pattern, args.MaxResults)
	if err != nil {
		return timedError(h.Logger, "symdex_files", err), nil, nil
	}

	h.Logger.Info("symdex_files",
		"pattern", args.Pattern,
		"results", len(records),
		"elapsed", time.Since(start),
	)

	output := FormatFileRecords(records)

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: output}},
	}, nil, nil
}

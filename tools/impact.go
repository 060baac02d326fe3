package tools

import (
	"context"
	"log/slog"
	"time"

	"github.com/arvell/symdex-mcp/graph"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ImpactArgs defines the input parameters for the symdex_impact tool.
type ImpactArgs struct {
	Path     string `json:"path" jsonschema:"Relative file path to analyze (e.g. src/util.py)"`
	MaxDepth int    `json:"maxDepth,omitempty" jsonschema:"Maximum dependency hops to follow (default 0 = unbounded)"`
}

// ImpactHandler answers "what would be reindexed if this file changed".
type ImpactHandler struct {
	Graph  *graph.DependencyGraph
	Logger *slog.Logger
}

// Handle processes a symdex_impact request.
func (h *ImpactHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args ImpactArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	if args.Path == "" {
		h.Logger.Warn("symdex_impact called with empty path")
		return errorResult("Error: path parameter is required"), nil, nil
	}

	analyzer := graph.NewAnalyzer(h.Graph)
	impacted := analyzer.Impacted([]string{args.Path}, args.MaxDepth)

	h.Logger.Info("symdex_impact",
		"path", args.Path,
		"maxDepth", args.MaxDepth,
		"impacted", len(impacted),
		"elapsed", time.Since(start),
	)

	output := FormatImpactSet(args.Path, impacted)

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: output}},
	}, nil, nil
}

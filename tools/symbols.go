// Package tools implements the MCP tool handlers exposed by symdex.
package tools

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/arvell/symdex-mcp/index"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// SymbolsArgs defines the input parameters for the symdex_symbols tool.
type SymbolsArgs struct {
	Name       string `json:"name" jsonschema:"Symbol name to look up. Exact match unless prefix is set"`
	Prefix     bool   `json:"prefix,omitempty" jsonschema:"If true match symbols whose name starts with the given name"`
	Kind       string `json:"kind,omitempty" jsonschema:"Restrict to a symbol kind (function, method, class, type, const, var)"`
	MaxResults int    `json:"maxResults,omitempty" jsonschema:"Maximum number of symbols to return (default 50)"`
}

// SymbolsHandler holds the dependencies for the symbol lookup tool.
type SymbolsHandler struct {
	Symbols *index.PartitionedIndex
	Logger  *slog.Logger
}

// Handle processes a symdex_symbols request.
func (h *SymbolsHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args SymbolsArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	if args.Name == "" {
		h.Logger.Warn("symdex_symbols called with empty name")
		return errorResult("Error: name parameter is required"), nil, nil
	}
	maxResults := args.MaxResults
	if maxResults <= 0 {
		maxResults = 50
	}

	result := h.Symbols.Query(func(e index.Entry) bool {
		if args.Kind != "" && e.Kind != args.Kind {
			return false
		}
		if args.Prefix {
			return strings.HasPrefix(e.Name, args.Name)
		}
		return e.Name == args.Name
	})

	h.Logger.Info("symdex_symbols",
		"name", args.Name,
		"kind", args.Kind,
		"results", len(result.Entries),
		"failedPartitions", len(result.Failed),
		"elapsed", time.Since(start),
	)

	if len(result.Entries) > maxResults {
		result.Entries = result.Entries[:maxResults]
	}
	output := FormatSymbolResults(result)

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: output}},
	}, nil, nil
}

// errorResult wraps a message in an error tool result.
func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: message}},
		IsError: true,
	}
}

// timedError logs and wraps a handler failure.
func timedError(logger *slog.Logger, tool string, err error) *mcp.CallToolResult {
	logger.Error(tool+" failed", "error", err)
	return errorResult(fmt.Sprintf("%s error: %v", tool, err))
}

// Package server wires the MCP server and its tool registrations.
package server

import (
	"github.com/arvell/symdex-mcp/tools"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Setup creates the MCP server with all symdex tools registered.
func Setup(
	symbolsHandler *tools.SymbolsHandler,
	searchHandler *tools.SearchHandler,
	filesHandler *tools.FilesHandler,
	impactHandler *tools.ImpactHandler,
	statusHandler *tools.StatusHandler,
	reindexHandler *tools.ReindexHandler,
) *mcp.Server {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "symdex-mcp",
			Version: "0.3.0",
		},
		&mcp.ServerOptions{
			Instructions: `This server maintains an incrementally-updated symbol and content index of the project. The index follows file edits automatically (filesystem watcher plus dependency-impact propagation), so results are always current without rescanning.

Prefer these tools over built-in search:
- symdex_symbols to find where a symbol is defined
- symdex_search instead of Grep for content search
- symdex_files instead of Glob/find for file listing
- symdex_impact to see which files a change would invalidate`,
		},
	)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "symdex_symbols",
		Description: `Look up symbol definitions by name across the indexed project.

Options:
  - prefix: match all symbols starting with the given name
  - kind: restrict to function, method, class, type, const, or var`,
	}, symbolsHandler.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "symdex_search",
		Description: `Search file contents using full-text indexed search.

Query formats:
  - Plain text: word-level matching (e.g., "handleRequest")
  - "quoted text": exact phrase matching
  - /regex/: regular expression matching

Use fileGlob (e.g. "**/*.go") to restrict by path.`,
	}, searchHandler.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "symdex_files",
		Description: `List tracked files by glob pattern.

Pattern examples:
  - "**/*.go" - all Go files
  - "src/**/*.ts" - TypeScript files under src/
  - "*.json" - JSON files in the root only`,
	}, filesHandler.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "symdex_impact",
		Description: "Show which files would need reindexing if the given file changed, in closest-first order. Follows reverse dependency (import) edges.",
	}, impactHandler.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "symdex_status",
		Description: "Show index status: tracked files, symbols, partitions, dependency edges, memory usage, and uptime.",
	}, statusHandler.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "symdex_reindex",
		Description: "Reindex the project. With paths, runs an incremental cycle over just those files and their dependents; without, rescans the whole tree (unchanged files are skipped cheaply).",
	}, reindexHandler.Handle)

	return mcpServer
}

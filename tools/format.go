package tools

import (
	"fmt"
	"strings"
	"time"

	"github.com/arvell/symdex-mcp/index"
	"github.com/arvell/symdex-mcp/indexer"
	"github.com/arvell/symdex-mcp/store"
)

// FormatSymbolResults renders a partitioned query result as readable text.
func FormatSymbolResults(result index.QueryResult) string {
	if len(result.Entries) == 0 && len(result.Failed) == 0 {
		return "No symbols found."
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Found %d symbols:\n\n", len(result.Entries)))
	for _, entry := range result.Entries {
		b.WriteString(fmt.Sprintf("  %s:%d  %s %s\n", entry.File, entry.Line, entry.Kind, entry.Name))
		if entry.Payload != "" {
			b.WriteString(fmt.Sprintf("      %s\n", entry.Payload))
		}
	}
	for _, failed := range result.Failed {
		b.WriteString(fmt.Sprintf("\nWarning: partition %q failed: %v\n", failed.Key, failed.Err))
	}
	return b.String()
}

// FormatSearchResults renders content search matches grouped by file.
func FormatSearchResults(results []index.ContentSearchResult, totalMatches int) string {
	if len(results) == 0 {
		return "No matches found."
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Found %d matches in %d files:\n\n", totalMatches, len(results)))
	for i, result := range results {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(fmt.Sprintf("── %s ──\n", result.RelativePath))
		for _, match := range result.Matches {
			for _, line := range match.ContextBefore {
				b.WriteString(fmt.Sprintf("  %s\n", line))
			}
			b.WriteString(fmt.Sprintf("  %d: %s\n", match.LineNumber, match.LineText))
			for _, line := range match.ContextAfter {
				b.WriteString(fmt.Sprintf("  %s\n", line))
			}
		}
	}
	return b.String()
}

// FormatFileRecords renders tracked file records.
func FormatFileRecords(records []*store.FileRecord) string {
	if len(records) == 0 {
		return "No files matched."
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Found %d files:\n\n", len(records)))
	for _, rec := range records {
		b.WriteString(fmt.Sprintf("  %s  (indexed %s)\n",
			rec.Path, rec.LastIndexedAt.Format("2006-01-02 15:04:05")))
	}
	return b.String()
}

// FormatImpactSet renders an impact set in traversal order.
func FormatImpactSet(path string, impacted []string) string {
	if len(impacted) <= 1 {
		return fmt.Sprintf("No files depend on %s.", path)
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("A change to %s would reindex %d files (closest first):\n\n",
		path, len(impacted)))
	for _, p := range impacted {
		b.WriteString(fmt.Sprintf("  %s\n", p))
	}
	return b.String()
}

// FormatCycleReport renders a cycle report for tool output.
func FormatCycleReport(report *indexer.CycleReport) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Cycle finished in %s:\n", report.Duration.Round(time.Millisecond)))
	b.WriteString(fmt.Sprintf("  examined: %d\n", report.Examined))
	b.WriteString(fmt.Sprintf("  updated:  %d\n", len(report.Updated)))
	b.WriteString(fmt.Sprintf("  skipped:  %d\n", len(report.Skipped)))
	b.WriteString(fmt.Sprintf("  deleted:  %d\n", len(report.Deleted)))
	if len(report.Failed) > 0 {
		b.WriteString(fmt.Sprintf("  failed:   %d\n", len(report.Failed)))
		for _, failure := range report.Failed {
			b.WriteString(fmt.Sprintf("    %s\n", failure.Error()))
		}
	}
	return b.String()
}

// formatByteSize converts bytes to a human-readable string.
func formatByteSize(bytes int64) string {
	switch {
	case bytes >= 1024*1024:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
	case bytes >= 1024:
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

package index

import (
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/bmatcuk/doublestar/v4"
)

// ContentSearchResult groups line-level matches within one file.
type ContentSearchResult struct {
	RelativePath string
	Matches      []LineMatch
}

// LineMatch is a single matching line with optional surrounding context.
type LineMatch struct {
	LineNumber    int // 1-based
	LineText      string
	ContextBefore []string
	ContextAfter  []string
}

// ContentSearchOptions configures a content search.
type ContentSearchOptions struct {
	Query        string
	FileGlob     string // doublestar pattern restricting which files match
	MaxResults   int    // maximum number of files in the result
	ContextLines int
}

// Search runs a full-text query across all indexed files and extracts the
// matching lines. Query forms:
//   - plain text: word-level match
//   - "quoted text": exact phrase
//   - /pattern/: regular expression
func (ci *ContentIndex) Search(options ContentSearchOptions) ([]ContentSearchResult, int, error) {
	ci.mu.RLock()
	defer ci.mu.RUnlock()

	if options.MaxResults <= 0 {
		options.MaxResults = 50
	}
	if options.ContextLines < 0 {
		options.ContextLines = 0
	}

	request := bleve.NewSearchRequest(parseQuery(options.Query))
	// Oversample: hits are filtered by glob and grouped per file below.
	request.Size = options.MaxResults * 5
	request.Fields = []string{"path", "language"}

	hits, err := ci.index.Search(request)
	if err != nil {
		return nil, 0, fmt.Errorf("searching content: %w", err)
	}

	glob := strings.ReplaceAll(options.FileGlob, "\\", "/")

	var results []ContentSearchResult
	totalMatches := 0
	for _, hit := range hits.Hits {
		relPath := hit.ID
		content, ok := ci.contents[relPath]
		if !ok {
			continue
		}

		if glob != "" {
			matched, err := doublestar.Match(glob, relPath)
			if err != nil || !matched {
				continue
			}
		}

		lineMatches := matchingLines(content, options.Query, options.ContextLines)
		if len(lineMatches) == 0 {
			continue
		}

		totalMatches += len(lineMatches)
		results = append(results, ContentSearchResult{
			RelativePath: relPath,
			Matches:      lineMatches,
		})
		if len(results) >= options.MaxResults {
			break
		}
	}

	return results, totalMatches, nil
}

// parseQuery turns the query string into a bleve query based on its syntax.
func parseQuery(queryString string) query.Query {
	queryString = strings.TrimSpace(queryString)

	if term, ok := delimited(queryString, "/"); ok {
		return bleve.NewRegexpQuery(term)
	}
	if term, ok := delimited(queryString, "\""); ok {
		return bleve.NewMatchPhraseQuery(term)
	}
	return bleve.NewMatchQuery(queryString)
}

// delimited strips a single-character delimiter from both ends, reporting
// whether the string was actually delimited.
func delimited(s string, delim string) (string, bool) {
	if len(s) > 2 && strings.HasPrefix(s, delim) && strings.HasSuffix(s, delim) {
		return s[1 : len(s)-1], true
	}
	return s, false
}

// matchingLines scans content line by line for the query term and collects
// matches with context.
func matchingLines(content string, queryString string, contextLines int) []LineMatch {
	term, _ := delimited(strings.TrimSpace(queryString), "/")
	term, _ = delimited(term, "\"")
	termLower := strings.ToLower(term)

	lines := strings.Split(content, "\n")
	var matches []LineMatch
	for i, line := range lines {
		if !strings.Contains(strings.ToLower(line), termLower) {
			continue
		}

		match := LineMatch{LineNumber: i + 1, LineText: line}
		for j := max(0, i-contextLines); j < i; j++ {
			match.ContextBefore = append(match.ContextBefore, lines[j])
		}
		for j := i + 1; j < min(len(lines), i+contextLines+1); j++ {
			match.ContextAfter = append(match.ContextAfter, lines[j])
		}
		matches = append(matches, match)
	}
	return matches
}

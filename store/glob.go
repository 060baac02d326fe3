package store

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// SearchByGlob returns tracked file records matching a doublestar glob
// pattern. The pattern is matched against stored relative paths (forward
// slashes), in sorted path order.
func (s *Store) SearchByGlob(pattern string, maxResults int) ([]*FileRecord, error) {
	if maxResults <= 0 {
		maxResults = 50
	}

	pattern = strings.ReplaceAll(pattern, "\\", "/")
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid glob pattern: %s", pattern)
	}

	records, err := s.AllRecords()
	if err != nil {
		return nil, err
	}

	var results []*FileRecord
	for _, rec := range records {
		if len(results) >= maxResults {
			break
		}
		matched, err := doublestar.Match(pattern, rec.Path)
		if err != nil {
			continue
		}
		if matched {
			results = append(results, rec)
		}
	}
	return results, nil
}

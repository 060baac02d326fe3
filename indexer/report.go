package indexer

import (
	"fmt"
	"time"
)

// FileError is a per-file failure inside a cycle. Per-file failures never
// abort the cycle; the file's previous index state stays intact and its
// store record is not committed, so it remains a candidate next cycle.
type FileError struct {
	Path  string
	Stage string // "check", "read", "extract", "index"
	Err   error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Path, e.Stage, e.Err)
}

func (e FileError) Unwrap() error {
	return e.Err
}

// CycleReport summarizes one indexing cycle.
type CycleReport struct {
	Examined int           // candidate paths considered, including impact expansion
	Skipped  []string      // unchanged, dropped at the filter step
	Updated  []string      // re-extracted and committed
	Deleted  []string      // removed from index, graph, and store
	Failed   []FileError   // per-file failures, still candidates next cycle
	Duration time.Duration // wall clock for the whole cycle
}

func (r *CycleReport) String() string {
	return fmt.Sprintf("examined=%d skipped=%d updated=%d deleted=%d failed=%d duration=%s",
		r.Examined, len(r.Skipped), len(r.Updated), len(r.Deleted), len(r.Failed),
		r.Duration.Round(time.Millisecond))
}

// Package index holds the searchable state derived from source files: a
// partitioned symbol index and a bleve-backed full-text content index.
package index

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Entry is one symbol-level index record. Beyond (File, SymbolID) identity
// the fields are owned by whichever extractor produced them.
type Entry struct {
	File     string // relative path, forward slashes
	SymbolID string // unique within the file
	Name     string
	Kind     string // function, type, class, const, ...
	Line     int    // 1-based
	Payload  string // extractor-specific detail, opaque here
}

// PartitionKey returns the partition a path belongs to: its file extension,
// lower-cased, without the dot ("none" for extensionless files). The key is a
// pure function of the path — the same path always lands in the same
// partition, and only a rename can move a file between partitions.
func PartitionKey(file string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(file), "."))
	if ext == "" {
		return "none"
	}
	return ext
}

// PartitionedIndex maps partition keys to independent shards. Updates lock a
// single partition, so workers reindexing files with different extensions
// never contend, and a reader mid-query in one partition is unaffected by a
// writer in another.
type PartitionedIndex struct {
	mu         sync.RWMutex
	partitions map[string]*partition
	fileKeys   map[string]string // file → partition key currently holding it
}

// NewPartitionedIndex creates an empty index. Partitions are created lazily
// on the first file assigned to a new key and never deleted.
func NewPartitionedIndex() *PartitionedIndex {
	return &PartitionedIndex{
		partitions: make(map[string]*partition),
		fileKeys:   make(map[string]string),
	}
}

// Upsert atomically replaces all entries for file in its partition. A reader
// never observes a mix of old and new entries for the same file.
//
// A rename that changes the extension moves a file between partitions, but it
// arrives here as a delete of the old path and an upsert of the new one — the
// key for a given path never changes.
func (pi *PartitionedIndex) Upsert(file string, entries []Entry) {
	key := PartitionKey(file)

	pi.mu.Lock()
	part := pi.partitions[key]
	if part == nil {
		part = newPartition(key)
		pi.partitions[key] = part
	}
	pi.fileKeys[file] = key
	pi.mu.Unlock()

	part.replace(file, entries)
}

// Delete removes all entries for file from its partition.
func (pi *PartitionedIndex) Delete(file string) {
	pi.mu.Lock()
	key, ok := pi.fileKeys[file]
	if !ok {
		pi.mu.Unlock()
		return
	}
	delete(pi.fileKeys, file)
	part := pi.partitions[key]
	pi.mu.Unlock()

	if part != nil {
		part.delete(file)
	}
}

// Entries returns the current entries for a single file, or nil.
func (pi *PartitionedIndex) Entries(file string) []Entry {
	pi.mu.RLock()
	key, ok := pi.fileKeys[file]
	part := pi.partitions[key]
	pi.mu.RUnlock()

	if !ok || part == nil {
		return nil
	}
	return part.entriesFor(file)
}

// PartitionError reports a shard whose query could not complete.
type PartitionError struct {
	Key string
	Err error
}

// QueryResult is the merged outcome of a cross-partition query.
type QueryResult struct {
	Entries []Entry
	Failed  []PartitionError // partitions whose results are missing
}

// Query fans the predicate out to every partition concurrently and returns
// the merged, deduplicated matches. A failing partition is reported in
// Failed rather than sinking the whole query.
func (pi *PartitionedIndex) Query(predicate func(Entry) bool) QueryResult {
	pi.mu.RLock()
	parts := make([]*partition, 0, len(pi.partitions))
	for _, part := range pi.partitions {
		parts = append(parts, part)
	}
	pi.mu.RUnlock()

	var (
		resultMu sync.Mutex
		result   QueryResult
	)

	var group errgroup.Group
	for _, part := range parts {
		group.Go(func() error {
			entries, err := part.query(predicate)
			resultMu.Lock()
			defer resultMu.Unlock()
			if err != nil {
				result.Failed = append(result.Failed, PartitionError{Key: part.key, Err: err})
				return nil
			}
			result.Entries = append(result.Entries, entries...)
			return nil
		})
	}
	group.Wait()

	result.Entries = dedupeEntries(result.Entries)
	sort.Slice(result.Failed, func(i, j int) bool {
		return result.Failed[i].Key < result.Failed[j].Key
	})
	return result
}

// Stats describes the current shape of the index.
type Stats struct {
	Partitions int
	Files      int
	Entries    int
}

// Stats returns partition, file, and entry counts.
func (pi *PartitionedIndex) Stats() Stats {
	pi.mu.RLock()
	parts := make([]*partition, 0, len(pi.partitions))
	for _, part := range pi.partitions {
		parts = append(parts, part)
	}
	stats := Stats{Partitions: len(parts), Files: len(pi.fileKeys)}
	pi.mu.RUnlock()

	for _, part := range parts {
		stats.Entries += part.entryCount()
	}
	return stats
}

// dedupeEntries drops duplicate (File, SymbolID) pairs and sorts the merged
// set by file then line for stable output across queries.
func dedupeEntries(entries []Entry) []Entry {
	seen := make(map[string]bool, len(entries))
	deduped := entries[:0]
	for _, entry := range entries {
		id := entry.File + "\x00" + entry.SymbolID
		if seen[id] {
			continue
		}
		seen[id] = true
		deduped = append(deduped, entry)
	}
	sort.Slice(deduped, func(i, j int) bool {
		if deduped[i].File != deduped[j].File {
			return deduped[i].File < deduped[j].File
		}
		return deduped[i].Line < deduped[j].Line
	})
	return deduped
}

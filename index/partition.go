package index

import (
	"fmt"
	"sync"
)

// partition is one independently-lockable shard of the symbol index. Entries
// are grouped by file so a reindex replaces a file's whole set in one map
// write under the shard lock.
type partition struct {
	key     string
	mu      sync.RWMutex
	entries map[string][]Entry // file → entries
}

func newPartition(key string) *partition {
	return &partition{
		key:     key,
		entries: make(map[string][]Entry),
	}
}

// replace swaps a file's entry set. The slice is copied so later mutation by
// the caller cannot leak into readers.
func (p *partition) replace(file string, entries []Entry) {
	copied := make([]Entry, len(entries))
	copy(copied, entries)

	p.mu.Lock()
	defer p.mu.Unlock()
	if len(copied) == 0 {
		delete(p.entries, file)
		return
	}
	p.entries[file] = copied
}

func (p *partition) delete(file string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.entries, file)
}

func (p *partition) entriesFor(file string) []Entry {
	p.mu.RLock()
	defer p.mu.RUnlock()

	entries := p.entries[file]
	if entries == nil {
		return nil
	}
	copied := make([]Entry, len(entries))
	copy(copied, entries)
	return copied
}

func (p *partition) entryCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var n int
	for _, entries := range p.entries {
		n += len(entries)
	}
	return n
}

// query runs the predicate over every entry in the shard under the read
// lock. A panicking predicate is contained here and reported as this
// partition's failure instead of taking down the whole fan-out.
func (p *partition) query(predicate func(Entry) bool) (matches []Entry, err error) {
	defer func() {
		if r := recover(); r != nil {
			matches = nil
			err = fmt.Errorf("partition %s: predicate panic: %v", p.key, r)
		}
	}()

	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, entries := range p.entries {
		for _, entry := range entries {
			if predicate(entry) {
				matches = append(matches, entry)
			}
		}
	}
	return matches, nil
}

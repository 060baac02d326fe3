package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/cespare/xxhash/v2"
)

// ErrUnreadable marks a file that exists but could not be read. Callers must
// treat the file as changed and retry on a later cycle, never as "no change".
var ErrUnreadable = errors.New("file unreadable")

// ChangeResult describes the outcome of a change check.
type ChangeResult struct {
	Changed bool
	Hash    string    // hash of the current content, empty when no read happened
	ModTime time.Time // current modification time
	Content []byte    // content read for hashing, nil when the check short-circuited
}

// HasChanged compares a file's current state against its stored record.
//
// The modification time is only a cheap pre-filter: if it matches the record
// the file is declared unchanged without opening it. Otherwise the content is
// hashed, and the hash is authoritative — a touched file with identical bytes
// is still "unchanged". The stored record is never modified here; only Commit
// does that, after a successful reindex.
//
// A stat or read failure reports Changed=true along with the error, so an
// unreadable file stays a candidate instead of being silently skipped.
// A missing file reports an error wrapping fs.ErrNotExist; the caller decides
// whether that means "deleted" (a record exists) or "phantom event" (none).
func (s *Store) HasChanged(relPath string) (ChangeResult, error) {
	absPath := filepath.Join(s.rootDir, filepath.FromSlash(relPath))

	info, err := os.Stat(absPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ChangeResult{Changed: true}, fmt.Errorf("stat %s: %w", relPath, err)
		}
		return ChangeResult{Changed: true}, fmt.Errorf("stat %s: %w: %v", relPath, ErrUnreadable, err)
	}

	rec, err := s.Record(relPath)
	if err != nil {
		return ChangeResult{Changed: true}, err
	}

	// Fast path: same modification time as last commit, skip hashing entirely.
	if rec != nil && info.ModTime().Equal(rec.ModTime) {
		return ChangeResult{Changed: false, Hash: rec.ContentHash, ModTime: rec.ModTime}, nil
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		return ChangeResult{Changed: true, ModTime: info.ModTime()},
			fmt.Errorf("read %s: %w: %v", relPath, ErrUnreadable, err)
	}

	hash := HashContent(content)
	if rec != nil && hash == rec.ContentHash {
		// Touched but byte-identical. Not a change.
		return ChangeResult{Changed: false, Hash: hash, ModTime: info.ModTime(), Content: content}, nil
	}

	return ChangeResult{Changed: true, Hash: hash, ModTime: info.ModTime(), Content: content}, nil
}

// HashContent returns the hex-encoded xxhash of the given bytes.
func HashContent(content []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(content))
}

// Package store persists per-file change-tracking records: the content hash
// and modification time last seen for every indexed file. It is the source of
// truth for "has this file actually changed since we last indexed it".
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// FileRecord is the persisted change-tracking state for one file.
type FileRecord struct {
	Path          string // relative to the project root, forward slashes
	ContentHash   string // hex-encoded xxhash of the file content
	ModTime       time.Time
	LastIndexedAt time.Time
}

// Store is a SQLite-backed record store. It survives process restarts, which
// is what makes crash recovery a plain re-run of the same indexing cycle.
type Store struct {
	db      *sql.DB
	rootDir string
}

// Open creates or opens the record database at dbPath. Records reference
// files relative to rootDir.
func Open(dbPath string, rootDir string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening record database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging record database: %w", err)
	}

	if _, err := db.Exec(schemaDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db, rootDir: rootDir}, nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS files (
	path            TEXT PRIMARY KEY,
	content_hash    TEXT NOT NULL,
	mod_time_ns     INTEGER NOT NULL,
	last_indexed_ns INTEGER NOT NULL
);
`

// Commit persists the record for a file after a successful reindex.
func (s *Store) Commit(relPath string, hash string, modTime time.Time) error {
	_, err := s.db.Exec(`
		INSERT INTO files (path, content_hash, mod_time_ns, last_indexed_ns)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			content_hash = excluded.content_hash,
			mod_time_ns = excluded.mod_time_ns,
			last_indexed_ns = excluded.last_indexed_ns`,
		relPath, hash, modTime.UnixNano(), time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("committing record for %s: %w", relPath, err)
	}
	return nil
}

// Remove deletes the record for a file. Removing an unknown path is a no-op.
func (s *Store) Remove(relPath string) error {
	if _, err := s.db.Exec("DELETE FROM files WHERE path = ?", relPath); err != nil {
		return fmt.Errorf("removing record for %s: %w", relPath, err)
	}
	return nil
}

// Record returns the stored record for a path, or nil if the file is unknown.
func (s *Store) Record(relPath string) (*FileRecord, error) {
	row := s.db.QueryRow(
		"SELECT path, content_hash, mod_time_ns, last_indexed_ns FROM files WHERE path = ?",
		relPath)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading record for %s: %w", relPath, err)
	}
	return rec, nil
}

// AllRecords returns every stored record in path order. Used by rescans to
// detect files that vanished while the process was not watching.
func (s *Store) AllRecords() ([]*FileRecord, error) {
	rows, err := s.db.Query(
		"SELECT path, content_hash, mod_time_ns, last_indexed_ns FROM files ORDER BY path")
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	defer rows.Close()

	var records []*FileRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Count returns the number of tracked files.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM files").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	return n, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*FileRecord, error) {
	var rec FileRecord
	var modNs, indexedNs int64
	if err := row.Scan(&rec.Path, &rec.ContentHash, &modNs, &indexedNs); err != nil {
		return nil, err
	}
	rec.ModTime = time.Unix(0, modNs)
	rec.LastIndexedAt = time.Unix(0, indexedNs)
	return &rec, nil
}

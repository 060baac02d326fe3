package indexer

import "sync"

// pathLocks serializes work on individual paths. A file edited again while
// its previous version is still being processed waits for the in-flight
// worker to finish, so a superseded extraction can never be committed over a
// newer one.
//
// Entries are reference-counted and removed when the last holder releases,
// so memory stays proportional to in-flight work, not to every path ever
// seen.
type pathLocks struct {
	mu    sync.Mutex
	locks map[string]*pathLock
}

type pathLock struct {
	mu   sync.Mutex
	refs int
}

func newPathLocks() *pathLocks {
	return &pathLocks{locks: make(map[string]*pathLock)}
}

func (pl *pathLocks) lock(path string) {
	pl.mu.Lock()
	l, ok := pl.locks[path]
	if !ok {
		l = &pathLock{}
		pl.locks[path] = l
	}
	l.refs++
	pl.mu.Unlock()

	l.mu.Lock()
}

func (pl *pathLocks) unlock(path string) {
	pl.mu.Lock()
	l := pl.locks[path]
	if l == nil {
		pl.mu.Unlock()
		return
	}
	l.refs--
	if l.refs == 0 {
		delete(pl.locks, path)
	}
	pl.mu.Unlock()

	l.mu.Unlock()
}

package watcher

import (
	"sync"
	"time"
)

// EventKind classifies a logical file change.
type EventKind int

const (
	Created EventKind = iota
	Modified
	Deleted
)

func (k EventKind) String() string {
	switch k {
	case Created:
		return "created"
	case Modified:
		return "modified"
	case Deleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// ChangeEvent is one debounced logical change to a path.
type ChangeEvent struct {
	Path       string
	Kind       EventKind
	ObservedAt time.Time
}

// Debouncer coalesces raw notifications into event batches. Repeated
// notifications for the same path within the window collapse into a single
// event carrying the last kind observed: create+modify+modify becomes one
// Modified, modify+delete becomes one Deleted. A batch is emitted after the
// window passes with no new arrivals.
type Debouncer struct {
	window  time.Duration
	mu      sync.Mutex
	pending map[string]ChangeEvent
	timer   *time.Timer
	output  chan []ChangeEvent
}

// NewDebouncer creates a debouncer with the given quiet window.
func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{
		window:  window,
		pending: make(map[string]ChangeEvent),
		output:  make(chan []ChangeEvent, 16),
	}
}

// Output returns the channel carrying debounced batches.
func (d *Debouncer) Output() <-chan []ChangeEvent {
	return d.output
}

// Add records a raw notification. An existing pending event for the same
// path is replaced, keeping only the latest kind. The window timer restarts
// on every arrival.
func (d *Debouncer) Add(path string, kind EventKind) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending[path] = ChangeEvent{Path: path, Kind: kind, ObservedAt: time.Now()}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.flush)
}

// flush attempts to emit the pending batch. If the consumer has fallen
// behind and the output channel is full, the batch stays pending and the
// timer re-arms — the debouncer buffers rather than blocking the
// notification source, and later events keep collapsing into the held batch.
func (d *Debouncer) flush() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.pending) == 0 {
		return
	}

	batch := make([]ChangeEvent, 0, len(d.pending))
	for _, event := range d.pending {
		batch = append(batch, event)
	}

	select {
	case d.output <- batch:
		d.pending = make(map[string]ChangeEvent)
	default:
		d.timer = time.AfterFunc(d.window, d.flush)
	}
}

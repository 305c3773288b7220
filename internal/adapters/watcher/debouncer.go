// Package watcher reports changes to dependency manifests.
package watcher

import (
	"cmp"
	"slices"
	"sync"
	"time"

	"go.trai.ch/venvup/internal/core/ports"
)

// Debouncer coalesces bursts of events per path. Editors usually write a file in several steps
// (truncate, write, rename), which must trigger one upgrade only.
type Debouncer struct {
	mu       sync.Mutex
	pending  map[string]ports.WatchOp
	timer    *time.Timer
	window   time.Duration
	callback func(events []ports.WatchEvent)
}

// NewDebouncer creates a new debouncer with the given time window and callback.
func NewDebouncer(window time.Duration, callback func(events []ports.WatchEvent)) *Debouncer {
	return &Debouncer{
		pending:  make(map[string]ports.WatchOp),
		window:   window,
		callback: callback,
	}
}

// Add records an event for path. The last operation seen for a path wins.
func (d *Debouncer) Add(path string, op ports.WatchOp) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending[path] = op

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.fire)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	events := d.drain()
	d.timer = nil
	d.mu.Unlock()

	if len(events) > 0 && d.callback != nil {
		d.callback(events)
	}
}

// Flush immediately hands all pending events to the callback and waits for it.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		if !d.timer.Stop() {
			// Timer already fired, let it complete rather than processing twice.
			d.mu.Unlock()
			return
		}
		d.timer = nil
	}
	events := d.drain()
	d.mu.Unlock()

	if len(events) > 0 && d.callback != nil {
		d.callback(events)
	}
}

// drain empties the pending set. Callers hold d.mu.
func (d *Debouncer) drain() []ports.WatchEvent {
	events := make([]ports.WatchEvent, 0, len(d.pending))
	for path, op := range d.pending {
		events = append(events, ports.WatchEvent{Path: path, Operation: op})
	}
	clear(d.pending)

	slices.SortFunc(events, func(a, b ports.WatchEvent) int {
		return cmp.Compare(a.Path, b.Path)
	})
	return events
}

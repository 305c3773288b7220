package watcher

import (
	"context"
	"iter"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.trai.ch/venvup/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Watcher = (*Watcher)(nil)

// DefaultDebounceWindow is the default time window for debouncing file events.
const DefaultDebounceWindow = 200 * time.Millisecond

const eventChannelBuffer = 100

// Watcher implements manifest watching using fsnotify.
// The parent directory of every file is watched so that files replaced by rename are still seen.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	debouncer *Debouncer
	logger    ports.Logger
	files     map[string]struct{}
	events    chan ports.WatchEvent

	mu     sync.Mutex
	closed bool
}

// NewWatcher creates a new manifest watcher.
func NewWatcher(logger ports.Logger, window time.Duration) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to create file watcher")
	}

	w := &Watcher{
		fsWatcher: fsWatcher,
		logger:    logger,
		files:     make(map[string]struct{}),
		events:    make(chan ports.WatchEvent, eventChannelBuffer),
	}
	w.debouncer = NewDebouncer(window, w.emit)
	return w, nil
}

// Start begins watching the given files.
func (w *Watcher) Start(ctx context.Context, paths []string) error {
	dirs := make(map[string]struct{})
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return zerr.With(zerr.Wrap(err, "failed to resolve watched path"), "path", p)
		}
		w.files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}

	for dir := range dirs {
		if err := w.fsWatcher.Add(dir); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to watch directory"), "path", dir)
		}
	}

	go w.processEvents(ctx)
	return nil
}

// Stop stops the watcher and releases all resources.
func (w *Watcher) Stop() error {
	return w.fsWatcher.Close()
}

// Events returns an iterator of debounced manifest events.
// It ends when the context passed to Start is done or the watcher is stopped.
func (w *Watcher) Events() iter.Seq[ports.WatchEvent] {
	return func(yield func(ports.WatchEvent) bool) {
		for event := range w.events {
			if !yield(event) {
				return
			}
		}
	}
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer w.close()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			path := filepath.Clean(event.Name)
			if _, watched := w.files[path]; !watched {
				continue
			}
			if op, ok := convertOp(event.Op); ok {
				w.debouncer.Add(path, op)
			}
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			if w.logger != nil {
				w.logger.Warn("watcher: file system error: " + err.Error())
			}
		}
	}
}

// emit forwards debounced events. Events are dropped once the watcher is closed or the buffer is full.
func (w *Watcher) emit(events []ports.WatchEvent) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	for _, e := range events {
		select {
		case w.events <- e:
		default:
		}
	}
}

func (w *Watcher) close() {
	w.debouncer.Flush()

	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	close(w.events)
}

func convertOp(op fsnotify.Op) (ports.WatchOp, bool) {
	switch {
	case op.Has(fsnotify.Write):
		return ports.OpWrite, true
	case op.Has(fsnotify.Create):
		return ports.OpCreate, true
	case op.Has(fsnotify.Remove):
		return ports.OpRemove, true
	case op.Has(fsnotify.Rename):
		return ports.OpRename, true
	default:
		return 0, false
	}
}

// Package watcher implements recursive file system watching for the watch command.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.trai.ch/rbuild/internal/core/domain"
	"go.trai.ch/rbuild/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Watcher = (*Watcher)(nil)

// skipDirectories are never watched. Hidden directories are skipped as well.
var skipDirectories = map[string]bool{
	"node_modules": true,
	"build":        true,
}

const batchChannelBuffer = 16

// Watcher implements ports.Watcher using fsnotify.
// Raw events are debounced into batches and filtered by content hash.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	logger    ports.Logger
	debouncer *Debouncer
	hashes    *HashCache

	mu      sync.Mutex
	closed  bool
	done    chan struct{}
	batches chan []ports.WatchEvent
}

// NewWatcher creates a new file system watcher. No resources are acquired until Start.
func NewWatcher(logger ports.Logger, window time.Duration) *Watcher {
	w := &Watcher{
		logger:    logger,
		hashes:    NewHashCache(),
		done:      make(chan struct{}),
		batches:   make(chan []ports.WatchEvent, batchChannelBuffer),
	}
	w.debouncer = NewDebouncer(window, w.emit)
	return w
}

// Start begins watching root recursively. Events are delivered until ctx is
// cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context, root string) error {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return zerr.Wrap(err, domain.ErrWatchFailed.Error())
	}
	w.fsWatcher = fsWatcher

	for dir := range w.watchRecursively(root) {
		if err := w.fsWatcher.Add(dir); err != nil {
			_ = w.fsWatcher.Close()
			return zerr.With(zerr.Wrap(err, domain.ErrWatchFailed.Error()), "path", dir)
		}
	}

	go w.processEvents(ctx)

	return nil
}

// Stop stops the watcher and releases all resources.
func (w *Watcher) Stop() error {
	if w.fsWatcher == nil {
		return nil
	}
	return w.fsWatcher.Close()
}

// Events yields batches of settled changes.
func (w *Watcher) Events() iter.Seq[[]ports.WatchEvent] {
	return func(yield func([]ports.WatchEvent) bool) {
		for batch := range w.batches {
			if !yield(batch) {
				return
			}
		}
	}
}

// watchRecursively walks the tree, seeds content hashes and yields all watched directories.
func (w *Watcher) watchRecursively(root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				// Continue walking even if there's an error accessing a directory.
				return nil //nolint:nilerr // problematic directories are skipped
			}
			if !d.IsDir() {
				if !shouldSkip(d.Name()) {
					w.hashes.Seed(path)
				}
				return nil
			}
			if path != root && shouldSkip(d.Name()) {
				return fs.SkipDir
			}
			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

func shouldSkip(name string) bool {
	return strings.HasPrefix(name, ".") || skipDirectories[name]
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

			if shouldSkip(filepath.Base(event.Name)) {
				continue
			}

			watchEvent, ok := convertEvent(event)
			if !ok {
				continue
			}
			w.debouncer.Add(watchEvent)

			// Watch directories created after start.
			if watchEvent.Operation == ports.OpCreate {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					for dir := range w.watchRecursively(event.Name) {
						_ = w.fsWatcher.Add(dir)
					}
				}
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn(fmt.Sprintf("watcher: file system error: %v", err))
		}
	}
}

// emit filters a debounced batch and hands it to Events.
func (w *Watcher) emit(batch []ports.WatchEvent) {
	batch = w.hashes.Filter(batch)
	if len(batch) == 0 {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}

	select {
	case w.batches <- batch:
	case <-w.done:
	}
}

func (w *Watcher) close() {
	close(w.done)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	close(w.batches)
}

func convertEvent(event fsnotify.Event) (ports.WatchEvent, bool) {
	switch {
	case event.Has(fsnotify.Write):
		return ports.WatchEvent{Path: event.Name, Operation: ports.OpWrite}, true
	case event.Has(fsnotify.Create):
		return ports.WatchEvent{Path: event.Name, Operation: ports.OpCreate}, true
	case event.Has(fsnotify.Remove):
		return ports.WatchEvent{Path: event.Name, Operation: ports.OpRemove}, true
	case event.Has(fsnotify.Rename):
		return ports.WatchEvent{Path: event.Name, Operation: ports.OpRename}, true
	default:
		return ports.WatchEvent{}, false
	}
}

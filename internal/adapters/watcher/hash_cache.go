package watcher

import (
	"io"
	"os"
	"sync"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/rbuild/internal/core/ports"
)

// HashCache remembers file content hashes so that events which leave a file
// byte-for-byte unchanged can be dropped.
type HashCache struct {
	mu     sync.Mutex
	hashes map[string]uint64
}

// NewHashCache creates an empty HashCache.
func NewHashCache() *HashCache {
	return &HashCache{hashes: make(map[string]uint64)}
}

// Seed records the current content hash of path without reporting a change.
func (h *HashCache) Seed(path string) {
	sum, err := hashFile(path)
	if err != nil {
		return
	}

	h.mu.Lock()
	h.hashes[path] = sum
	h.mu.Unlock()
}

// Changed reports whether event changes the content of its path and updates the cache.
// Paths that cannot be hashed (directories, removed files) always count as changed.
func (h *HashCache) Changed(event ports.WatchEvent) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if event.Operation == ports.OpRemove || event.Operation == ports.OpRename {
		delete(h.hashes, event.Path)
		return true
	}

	sum, err := hashFile(event.Path)
	if err != nil {
		delete(h.hashes, event.Path)
		return true
	}

	prev, known := h.hashes[event.Path]
	h.hashes[event.Path] = sum
	return !known || prev != sum
}

// Filter returns the events of batch that change file contents.
func (h *HashCache) Filter(batch []ports.WatchEvent) []ports.WatchEvent {
	changed := batch[:0:0]
	for _, event := range batch {
		if h.Changed(event) {
			changed = append(changed, event)
		}
	}
	return changed
}

// Len returns the number of tracked files.
func (h *HashCache) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.hashes)
}

func hashFile(path string) (uint64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	if info.IsDir() {
		return 0, os.ErrInvalid
	}

	f, err := os.Open(path) //nolint:gosec // path comes from the watched tree
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()

	hasher := xxhash.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return 0, err
	}
	return hasher.Sum64(), nil
}

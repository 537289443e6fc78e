package fs

import (
	"os"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/notekeeper/pkg/core"
)

// snapshotCache holds the last decoded collection together with the file
// stamp it was decoded from. A stamp mismatch means the file changed on disk.
type snapshotCache struct {
	mu      sync.RWMutex
	valid   bool
	modTime time.Time
	size    int64
	notes   []core.Note
	hits    uint64
	misses  uint64
}

func newSnapshotCache() *snapshotCache {
	return &snapshotCache{}
}

// Get returns a copy of the cached notes if info still matches the stamp.
func (c *snapshotCache) Get(info os.FileInfo) ([]core.Note, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.valid || !info.ModTime().Equal(c.modTime) || info.Size() != c.size {
		c.misses++
		return nil, false
	}
	c.hits++
	return slices.Clone(c.notes), true
}

// Set records notes as the decoded form of the file described by info.
func (c *snapshotCache) Set(info os.FileInfo, notes []core.Note) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.valid = true
	c.modTime = info.ModTime()
	c.size = info.Size()
	c.notes = slices.Clone(notes)
}

// Invalidate drops the cached snapshot.
func (c *snapshotCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.valid = false
	c.notes = nil
}

// Stats returns hit and miss counters.
func (c *snapshotCache) Stats() (hits, misses uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

// Len returns the number of cached notes.
func (c *snapshotCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.notes)
}

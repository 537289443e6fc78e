package core

import (
	"strconv"
	"sync"

	"github.com/google/uuid"
)

// IDAllocator produces note identifiers.
// An allocator never returns the same value twice.
type IDAllocator interface {
	Allocate() string
}

// CounterAllocator issues increasing decimal ids ("1", "2", ...).
// It is only safe across restarts when seeded with the ids already stored.
type CounterAllocator struct {
	mu   sync.Mutex
	next uint64
}

// NewCounterAllocator creates a counter that starts after the largest
// numeric id in existing. Non-numeric ids are ignored.
func NewCounterAllocator(existing ...string) *CounterAllocator {
	c := &CounterAllocator{next: 1}
	c.Observe(existing...)
	return c
}

// Observe advances the counter past any numeric id in ids.
func (c *CounterAllocator) Observe(ids ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, id := range ids {
		n, err := strconv.ParseUint(id, 10, 64)
		if err != nil {
			continue
		}
		if n >= c.next {
			c.next = n + 1
		}
	}
}

// Allocate implements IDAllocator.
func (c *CounterAllocator) Allocate() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := strconv.FormatUint(c.next, 10)
	c.next++
	return id
}

// UUIDAllocator issues random version 4 UUIDs. Independent instances do not
// collide, which makes it the right choice for anything persisted.
type UUIDAllocator struct{}

// Allocate implements IDAllocator.
func (UUIDAllocator) Allocate() string {
	return uuid.NewString()
}

package canon

import (
	"sync"

	"github.com/bionetgo/rxnet/internal/model"
)

// Cache is an explicit, size-bounded certificate cache. It is owned by the
// generation engine's construction scope, never a process-wide singleton:
// independent generation runs get independent caches and cannot
// cross-contaminate.
//
// Keys are the declaration-order serialization of the species, so two
// differently-ordered arenas of the same species miss each other's entry.
// That costs a recompute, never correctness.
type Cache struct {
	mu       sync.Mutex
	strategy Strategy
	max      int
	entries  map[string]string
	fifo     []string
}

// NewCache creates a cache over the given strategy holding at most max
// entries (FIFO eviction). max <= 0 disables bounding.
func NewCache(strategy Strategy, max int) *Cache {
	return &Cache{
		strategy: strategy,
		max:      max,
		entries:  make(map[string]string),
	}
}

// Certificate returns the canonical certificate for sp, computing and
// caching it on miss.
func (c *Cache) Certificate(sp *model.Species) (string, error) {
	key := sp.String()

	c.mu.Lock()
	if cert, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return cert, nil
	}
	c.mu.Unlock()

	cert, err := c.strategy.Certificate(sp)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok {
		c.entries[key] = cert
		c.fifo = append(c.fifo, key)
		if c.max > 0 && len(c.fifo) > c.max {
			evict := c.fifo[0]
			c.fifo = c.fifo[1:]
			delete(c.entries, evict)
		}
	}
	return cert, nil
}

// Invalidate drops every cached entry. Hook for callers that rebuild the
// type table or swap strategies mid-session.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]string)
	c.fifo = nil
}

// Len returns the number of cached certificates.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

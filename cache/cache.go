// Package cache keeps fully parsed session details behind a bounded LRU so
// repeated viewing of the same session does not re-parse the file.
package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/sonnes/lekha/core"
)

// DefaultCapacity bounds resident parsed sessions. A full parse costs time
// proportional to file size; fifty details is a few tens of megabytes at
// worst.
const DefaultCapacity = 50

// Cache is safe for concurrent use. Returned details are shared values and
// must be treated as read-only by callers.
type Cache struct {
	lru *lru.Cache[string, *core.SessionDetail]
}

// New returns a cache holding at most capacity entries. Non-positive
// capacities fall back to DefaultCapacity.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c, _ := lru.New[string, *core.SessionDetail](capacity)
	return &Cache{lru: c}
}

// GetOrLoad returns the detail for id, invoking load on a miss. A hit marks
// the entry most recently used. Load failures surface to the caller and are
// never cached, so a transient read error does not poison the id.
func (c *Cache) GetOrLoad(id string, load func() (*core.SessionDetail, error)) (*core.SessionDetail, error) {
	if d, ok := c.lru.Get(id); ok {
		return d, nil
	}
	d, err := load()
	if err != nil {
		return nil, err
	}
	c.lru.Add(id, d)
	return d, nil
}

// Invalidate drops id from the cache. Used after a session is trashed,
// restored, or rewritten on disk.
func (c *Cache) Invalidate(id string) {
	c.lru.Remove(id)
}

func (c *Cache) Len() int {
	return c.lru.Len()
}

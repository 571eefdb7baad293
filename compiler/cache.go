package compiler

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/kestrelsys/pulsegraph/arena"
)

// IncrementalCache memoises the relative event list produced for a
// NodeId. Because nodes are immutable and structurally interned, a
// NodeId uniquely determines its event list up to a time offset, so
// bounding the cache with an LRU only affects hit rate, never
// correctness: an evicted entry is simply recomputed on the next miss.
type IncrementalCache struct {
	lru *lru.Cache[arena.NodeId, []Event]
}

// NewIncrementalCache returns a cache holding at most capacity entries. A
// non-positive capacity returns an always-miss cache rather than
// erroring, since the incremental cache is strictly optional.
func NewIncrementalCache(capacity int) (*IncrementalCache, error) {
	if capacity <= 0 {
		return &IncrementalCache{}, nil
	}
	c, err := lru.New[arena.NodeId, []Event](capacity)
	if err != nil {
		return nil, err
	}
	return &IncrementalCache{lru: c}, nil
}

// Get returns the memoised event list for id, if present.
func (c *IncrementalCache) Get(id arena.NodeId) ([]Event, bool) {
	if c == nil || c.lru == nil {
		return nil, false
	}
	return c.lru.Get(id)
}

// Put records events as the memoised result for id.
func (c *IncrementalCache) Put(id arena.NodeId, events []Event) {
	if c == nil || c.lru == nil {
		return
	}
	c.lru.Add(id, events)
}

// Purge discards every entry.
func (c *IncrementalCache) Purge() {
	if c.lru != nil {
		c.lru.Purge()
	}
}

// Clear implements the narrow interface arena.Arena.Clear invalidates
// a cache through.
func (c *IncrementalCache) Clear() { c.Purge() }

// Package cache provides the bounded lookup-result cache and the memory
// governor that reacts to system memory pressure.
package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"

	"github.com/hmercer/tapread/internal/lookup"
)

type entry struct {
	value      *lookup.Result
	sizeHint   int
	lastAccess time.Time
}

// Cache is a capacity-bounded key->result cache with strict LRU victim
// selection. Eviction triggers when either the entry count or the aggregate
// size estimate exceeds its ceiling.
type Cache struct {
	mu       sync.Mutex
	lru      *simplelru.LRU[string, *entry]
	maxBytes int
	curBytes int
}

// New builds a cache bounded by maxEntries entries and maxBytes aggregate
// size estimate.
func New(maxEntries, maxBytes int) (*Cache, error) {
	if maxEntries <= 0 {
		return nil, fmt.Errorf("cache capacity must be positive, got %d", maxEntries)
	}
	if maxBytes <= 0 {
		return nil, fmt.Errorf("cache size ceiling must be positive, got %d", maxBytes)
	}

	c := &Cache{maxBytes: maxBytes}
	lru, err := simplelru.NewLRU(maxEntries, func(key string, e *entry) {
		c.curBytes -= e.sizeHint
	})
	if err != nil {
		return nil, fmt.Errorf("create lru: %w", err)
	}
	c.lru = lru
	return c, nil
}

// Get returns the cached result for key, refreshing its recency.
func (c *Cache) Get(key string) (*lookup.Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	e.lastAccess = time.Now()
	return e.value, true
}

// Put stores a result under key. sizeHint approximates the entry's memory
// footprint; a non-positive hint falls back to the result's own estimate.
func (c *Cache) Put(key string, value *lookup.Result, sizeHint int) {
	if sizeHint <= 0 {
		sizeHint = value.EstimateSize()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Remove fires the eviction callback, which settles the accounting for
	// a replaced entry.
	if _, ok := c.lru.Peek(key); ok {
		c.lru.Remove(key)
	}

	c.lru.Add(key, &entry{value: value, sizeHint: sizeHint, lastAccess: time.Now()})
	c.curBytes += sizeHint

	for c.curBytes > c.maxBytes && c.lru.Len() > 0 {
		c.lru.RemoveOldest()
	}
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// SizeBytes returns the aggregate size estimate of all entries.
func (c *Cache) SizeBytes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.curBytes
}

// Flush drops every entry. Idempotent.
func (c *Cache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
	c.curBytes = 0
}

// shedTo evicts oldest-first until the aggregate size estimate drops to the
// target. The lock is released between victims so readers of unrelated keys
// are not blocked for the whole sweep.
func (c *Cache) shedTo(targetBytes int) {
	for {
		c.mu.Lock()
		if c.curBytes <= targetBytes || c.lru.Len() == 0 {
			c.mu.Unlock()
			return
		}
		c.lru.RemoveOldest()
		c.mu.Unlock()
	}
}

// OnMemoryPressure implements Observer. Warning sheds to half the size
// ceiling ahead of natural LRU turnover; critical flushes entirely. Safe to
// invoke concurrently with ongoing reads, and idempotent.
func (c *Cache) OnMemoryPressure(level PressureLevel) {
	switch level {
	case PressureWarning:
		c.shedTo(c.maxBytes / 2)
	case PressureCritical:
		c.Flush()
	}
}

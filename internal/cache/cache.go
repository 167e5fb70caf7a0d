// Copyright (c) 2026, the vidra contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package cache provides a generic in-process key/value cache with per-read
// TTL expiry and insertion-order eviction when capacity is exceeded.
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value      V
	insertedAt time.Time
}

// Stats reports the current and maximum cache size.
type Stats struct {
	Size    int `json:"size"`
	MaxSize int `json:"maxSize"`
}

// Cache is a TTL-checked, capacity-bounded map. Eviction on overflow drops
// the single oldest entry by insertion time (FIFO, not access order).
// Scoped to process lifetime; never persisted.
type Cache[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]entry[V]
	maxSize int
	now     func() time.Time
}

// New creates a cache bounded to maxSize entries. maxSize <= 0 means
// unbounded.
func New[K comparable, V any](maxSize int) *Cache[K, V] {
	return &Cache[K, V]{
		entries: make(map[K]entry[V]),
		maxSize: maxSize,
		now:     time.Now,
	}
}

// Get returns the value for key if it was inserted within ttl. Expired
// entries are evicted on read.
func (c *Cache[K, V]) Get(key K, ttl time.Duration) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}

	if c.now().Sub(e.insertedAt) > ttl {
		delete(c.entries, key)
		var zero V
		return zero, false
	}

	return e.value, true
}

// Set stores value under key. When at capacity and key is new, the oldest
// entry is evicted first.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && c.maxSize > 0 && len(c.entries) >= c.maxSize {
		c.evictOldestLocked()
	}

	c.entries[key] = entry[V]{value: value, insertedAt: c.now()}
}

func (c *Cache[K, V]) evictOldestLocked() {
	var oldestKey K
	var oldestAt time.Time
	first := true

	for key, e := range c.entries {
		if first || e.insertedAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = e.insertedAt
			first = false
		}
	}

	if !first {
		delete(c.entries, oldestKey)
	}
}

// Delete removes key if present.
func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}

// Clear removes all entries.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[K]entry[V])
}

// Stats returns the current size and configured capacity.
func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{Size: len(c.entries), MaxSize: c.maxSize}
}

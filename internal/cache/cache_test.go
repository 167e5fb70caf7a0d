// Copyright (c) 2026, the vidra contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withClock pins the cache's clock so TTL boundaries are exact.
func withClock[K comparable, V any](c *Cache[K, V]) *time.Time {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	return &now
}

func TestGetSetRoundTrip(t *testing.T) {
	t.Parallel()

	c := New[string, int](10)
	c.Set("a", 1)

	got, ok := c.Get("a", time.Minute)
	require.True(t, ok)
	assert.Equal(t, 1, got)

	_, ok = c.Get("missing", time.Minute)
	assert.False(t, ok)
}

func TestTTLBoundary(t *testing.T) {
	t.Parallel()

	c := New[string, string](10)
	now := withClock(c)

	c.Set("k", "v")

	// Retrievable at exactly ttl, a miss strictly after.
	*now = now.Add(time.Minute)
	_, ok := c.Get("k", time.Minute)
	assert.True(t, ok)

	*now = now.Add(time.Nanosecond)
	_, ok = c.Get("k", time.Minute)
	assert.False(t, ok)

	// Expired entry was evicted on read.
	assert.Zero(t, c.Stats().Size)
}

func TestCapacityEvictsOldest(t *testing.T) {
	t.Parallel()

	c := New[string, int](2)
	now := withClock(c)

	c.Set("first", 1)
	*now = now.Add(time.Second)
	c.Set("second", 2)
	*now = now.Add(time.Second)
	c.Set("third", 3)

	_, ok := c.Get("first", time.Hour)
	assert.False(t, ok, "oldest entry should be evicted")

	_, ok = c.Get("second", time.Hour)
	assert.True(t, ok)
	_, ok = c.Get("third", time.Hour)
	assert.True(t, ok)
}

func TestSetExistingKeyDoesNotEvict(t *testing.T) {
	t.Parallel()

	c := New[string, int](2)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("a", 3)

	got, ok := c.Get("a", time.Hour)
	require.True(t, ok)
	assert.Equal(t, 3, got)

	_, ok = c.Get("b", time.Hour)
	assert.True(t, ok)
}

func TestDeleteAndClear(t *testing.T) {
	t.Parallel()

	c := New[string, int](10)
	c.Set("a", 1)
	c.Set("b", 2)

	c.Delete("a")
	_, ok := c.Get("a", time.Hour)
	assert.False(t, ok)

	c.Clear()
	assert.Zero(t, c.Stats().Size)
	assert.Equal(t, 10, c.Stats().MaxSize)
}

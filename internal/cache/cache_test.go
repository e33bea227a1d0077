// SPDX-License-Identifier: MIT

package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheSetGet(t *testing.T) {
	c := NewMemoryCache(0)

	c.Set("k", []byte("payload"), time.Minute)

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("payload"), got)
}

func TestMemoryCacheMiss(t *testing.T) {
	c := NewMemoryCache(0)

	_, ok := c.Get("absent")
	assert.False(t, ok)
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache(0)

	c.Set("k", []byte("v"), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestMemoryCacheDelete(t *testing.T) {
	c := NewMemoryCache(0)

	c.Set("k", []byte("v"), time.Minute)
	c.Delete("k")

	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestMemoryCacheClear(t *testing.T) {
	c := NewMemoryCache(0)

	c.Set("a", []byte("1"), time.Minute)
	c.Set("b", []byte("2"), time.Minute)
	c.Clear()

	assert.Equal(t, 0, c.Stats().CurrentSize)
}

func TestMemoryCacheStats(t *testing.T) {
	c := NewMemoryCache(0)

	c.Set("k", []byte("v"), time.Minute)
	c.Get("k")
	c.Get("k")
	c.Get("absent")

	st := c.Stats()
	assert.Equal(t, int64(2), st.Hits)
	assert.Equal(t, int64(1), st.Misses)
	assert.Equal(t, int64(1), st.Sets)
	assert.Equal(t, 1, st.CurrentSize)
}

func TestMemoryCacheJanitorEvictsExpired(t *testing.T) {
	c := NewMemoryCache(20 * time.Millisecond)
	defer c.(*memoryCache).Stop()

	c.Set("short", []byte("v"), 5*time.Millisecond)
	c.Set("long", []byte("v"), time.Minute)

	assert.Eventually(t, func() bool {
		return c.Stats().CurrentSize == 1
	}, time.Second, 10*time.Millisecond)
	assert.GreaterOrEqual(t, c.Stats().Evictions, int64(1))
}

func TestNoOpCache(t *testing.T) {
	c := NewNoOpCache()

	c.Set("k", []byte("v"), time.Minute)
	_, ok := c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, Stats{}, c.Stats())
}

package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_SetGetDelete(t *testing.T) {
	c := NewMemoryCache(time.Minute, 0)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	require.NoError(t, c.Set("a", []byte("1")))
	require.NoError(t, c.Set("b", []byte("2")))

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, []byte("1"), v)
	assert.Equal(t, 2, c.Size())

	require.NoError(t, c.Delete("a"))
	_, ok = c.Get("a")
	assert.False(t, ok)

	require.NoError(t, c.Clear())
	assert.Equal(t, 0, c.Size())
	assert.NoError(t, c.Close())
}

func TestMemoryCache_Stats(t *testing.T) {
	c := NewMemoryCache(time.Minute, 10)
	require.NoError(t, c.Set("a", []byte("1")))

	c.Get("a")
	c.Get("a")
	c.Get("a")
	c.Get("b")

	stats := c.Stats()
	assert.Equal(t, int64(3), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.Size)
	assert.Equal(t, int64(10), stats.MaxSize)
	assert.Equal(t, 0.75, stats.HitRate)
}

func TestMemoryCache_Capacity(t *testing.T) {
	c := NewMemoryCache(time.Minute, 2)

	require.NoError(t, c.Set("a", []byte("1")))
	require.NoError(t, c.Set("b", []byte("2")))
	require.NoError(t, c.Set("c", []byte("3")))

	assert.Equal(t, 2, c.Size())
	_, ok := c.Get("a")
	assert.False(t, ok, "oldest entry should be evicted")
	_, ok = c.Get("c")
	assert.True(t, ok)
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(20*time.Millisecond, 0)
	require.NoError(t, c.Set("a", []byte("1")))

	time.Sleep(60 * time.Millisecond)

	_, ok := c.Get("a")
	assert.False(t, ok)
}

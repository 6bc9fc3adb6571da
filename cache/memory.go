package cache

import (
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// MemoryCache is an in-process cache with per-entry TTL and a capacity cap
type MemoryCache struct {
	items    *ttlcache.Cache[string, []byte]
	capacity int
}

// NewMemoryCache creates a memory cache. A zero ttl keeps entries until
// evicted, a zero capacity leaves the size unbounded.
func NewMemoryCache(ttl time.Duration, capacity int) *MemoryCache {
	opts := []ttlcache.Option[string, []byte]{
		ttlcache.WithTTL[string, []byte](ttl),
	}
	if capacity > 0 {
		opts = append(opts, ttlcache.WithCapacity[string, []byte](uint64(capacity)))
	}
	return &MemoryCache{
		items:    ttlcache.New[string, []byte](opts...),
		capacity: capacity,
	}
}

// Get returns the stored bytes. Callers must not modify them.
func (m *MemoryCache) Get(key string) ([]byte, bool) {
	item := m.items.Get(key)
	if item == nil {
		return nil, false
	}
	return item.Value(), true
}

// Set stores value with the default TTL
func (m *MemoryCache) Set(key string, value []byte) error {
	m.items.Set(key, value, ttlcache.DefaultTTL)
	return nil
}

// Delete removes key
func (m *MemoryCache) Delete(key string) error {
	m.items.Delete(key)
	return nil
}

// Clear removes every entry
func (m *MemoryCache) Clear() error {
	m.items.DeleteAll()
	return nil
}

// Size returns the number of stored entries
func (m *MemoryCache) Size() int {
	return m.items.Len()
}

// Stats reports the counters kept by the underlying cache
func (m *MemoryCache) Stats() CacheStats {
	metrics := m.items.Metrics()
	stats := CacheStats{
		Hits:      int64(metrics.Hits),
		Misses:    int64(metrics.Misses),
		Evictions: int64(metrics.Evictions),
		Size:      int64(m.items.Len()),
		MaxSize:   int64(m.capacity),
	}
	stats.UpdateHitRate()
	return stats
}

// Close is a no-op, the memory cache holds no external resources
func (m *MemoryCache) Close() error {
	return nil
}

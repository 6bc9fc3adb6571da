package cache

import (
	"fmt"
	"time"
)

// Cache defines the common interface for all cache implementations.
// Values are opaque bytes, the Memoizer picks the codec.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte) error
	Delete(key string) error
	Clear() error
	Size() int
	Stats() CacheStats
	Close() error
}

// CacheStats provides metrics about cache performance
type CacheStats struct {
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Evictions int64   `json:"evictions"`
	Size      int64   `json:"size"`
	MaxSize   int64   `json:"max_size"`
	HitRate   float64 `json:"hit_rate"`
}

// UpdateHitRate calculates the hit rate for cache stats
func (s *CacheStats) UpdateHitRate() {
	total := s.Hits + s.Misses
	if total > 0 {
		s.HitRate = float64(s.Hits) / float64(total)
	} else {
		s.HitRate = 0.0
	}
}

// Backend names accepted by New
const (
	BackendMemory = "memory"
	BackendBadger = "badger"
)

// Options selects and sizes a cache backend
type Options struct {
	Backend  string
	Dir      string
	TTL      time.Duration
	Capacity int
}

// New builds the cache named by opts.Backend
func New(opts Options) (Cache, error) {
	switch opts.Backend {
	case "", BackendMemory:
		return NewMemoryCache(opts.TTL, opts.Capacity), nil
	case BackendBadger:
		return NewBadgerCache(BadgerConfig{DBPath: opts.Dir, DefaultTTL: opts.TTL})
	default:
		return nil, fmt.Errorf("unknown cache backend %q", opts.Backend)
	}
}

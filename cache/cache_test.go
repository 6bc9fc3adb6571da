package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheStats_UpdateHitRate(t *testing.T) {
	tests := []struct {
		name     string
		hits     int64
		misses   int64
		expected float64
	}{
		{"No requests", 0, 0, 0.0},
		{"All hits", 100, 0, 1.0},
		{"All misses", 0, 100, 0.0},
		{"Mixed", 75, 25, 0.75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := CacheStats{Hits: tt.hits, Misses: tt.misses}
			stats.UpdateHitRate()
			assert.Equal(t, tt.expected, stats.HitRate)
		})
	}
}

func TestNew(t *testing.T) {
	mem, err := New(Options{Backend: BackendMemory, Capacity: 4})
	require.NoError(t, err)
	assert.IsType(t, &MemoryCache{}, mem)

	def, err := New(Options{})
	require.NoError(t, err)
	assert.IsType(t, &MemoryCache{}, def)

	bdg, err := New(Options{Backend: BackendBadger})
	require.NoError(t, err)
	defer bdg.Close()
	assert.IsType(t, &BadgerCache{}, bdg)

	_, err = New(Options{Backend: "redis"})
	assert.Error(t, err)
}

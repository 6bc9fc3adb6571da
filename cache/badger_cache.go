package cache

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v3"

	"github.com/AssilKherfi/Retention-Dashboard/logging"
)

// BadgerCache provides a BadgerDB-based cache that survives restarts
type BadgerCache struct {
	db     *badger.DB
	config BadgerConfig
	mu     sync.RWMutex
	closed bool
	stop   chan struct{}

	hits   atomic.Int64
	misses atomic.Int64
}

// BadgerConfig configures the BadgerDB cache
type BadgerConfig struct {
	DBPath         string          `json:"db_path"` // empty keeps the database in memory
	GCDiscardRatio float64         `json:"gc_discard_ratio"`
	GCInterval     time.Duration   `json:"gc_interval"`
	DefaultTTL     time.Duration   `json:"default_ttl"`
	Logger         *logging.Logger `json:"-"`
}

// NewBadgerCache opens or creates the database at config.DBPath
func NewBadgerCache(config BadgerConfig) (*BadgerCache, error) {
	if config.GCDiscardRatio <= 0 {
		config.GCDiscardRatio = 0.5
	}
	if config.GCInterval <= 0 {
		config.GCInterval = 5 * time.Minute
	}
	if config.Logger == nil {
		config.Logger = logging.GetLogger()
	}

	var opts badger.Options
	if config.DBPath == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(config.DBPath, 0755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
		opts = badger.DefaultOptions(config.DBPath).
			WithValueLogFileSize(64 << 20).
			WithNumMemtables(3)
	}
	opts = opts.WithLogger(&badgerLogger{logger: config.Logger})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open BadgerDB: %w", err)
	}

	bc := &BadgerCache{
		db:     db,
		config: config,
		stop:   make(chan struct{}),
	}
	if config.DBPath != "" {
		go bc.runGC()
	}
	return bc, nil
}

// Get retrieves a value from the cache
func (bc *BadgerCache) Get(key string) ([]byte, bool) {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	if bc.closed {
		return nil, false
	}

	var result []byte
	err := bc.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		result, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			bc.config.Logger.Warnf("badger cache get %s: %v", key, err)
		}
		bc.misses.Add(1)
		return nil, false
	}

	bc.hits.Add(1)
	return result, true
}

// Set stores a value in the cache with the default TTL
func (bc *BadgerCache) Set(key string, value []byte) error {
	return bc.SetWithTTL(key, value, bc.config.DefaultTTL)
}

// SetWithTTL stores a value in the cache with the given TTL, 0 never expires
func (bc *BadgerCache) SetWithTTL(key string, value []byte, ttl time.Duration) error {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	if bc.closed {
		return fmt.Errorf("cache is closed")
	}

	return bc.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), value)
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
}

// Delete removes a key from the cache
func (bc *BadgerCache) Delete(key string) error {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	if bc.closed {
		return fmt.Errorf("cache is closed")
	}

	return bc.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// Clear removes all entries from the cache
func (bc *BadgerCache) Clear() error {
	bc.mu.Lock()
	defer bc.mu.Unlock()

	if bc.closed {
		return fmt.Errorf("cache is closed")
	}

	return bc.db.DropAll()
}

// Size counts the live keys
func (bc *BadgerCache) Size() int {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	if bc.closed {
		return 0
	}

	count := 0
	_ = bc.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	return count
}

// Stats returns hit counters and the key count
func (bc *BadgerCache) Stats() CacheStats {
	stats := CacheStats{
		Hits:   bc.hits.Load(),
		Misses: bc.misses.Load(),
		Size:   int64(bc.Size()),
	}
	stats.UpdateHitRate()
	return stats
}

// Close stops garbage collection and closes the database
func (bc *BadgerCache) Close() error {
	bc.mu.Lock()
	defer bc.mu.Unlock()

	if bc.closed {
		return nil
	}

	bc.closed = true
	close(bc.stop)
	return bc.db.Close()
}

// RunGC runs value log garbage collection once
func (bc *BadgerCache) RunGC() error {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	if bc.closed {
		return fmt.Errorf("cache is closed")
	}

	return bc.db.RunValueLogGC(bc.config.GCDiscardRatio)
}

func (bc *BadgerCache) runGC() {
	ticker := time.NewTicker(bc.config.GCInterval)
	defer ticker.Stop()

	for {
		select {
		case <-bc.stop:
			return
		case <-ticker.C:
			if err := bc.RunGC(); err != nil && !errors.Is(err, badger.ErrNoRewrite) {
				bc.config.Logger.Warnf("badger cache gc: %v", err)
			}
		}
	}
}

// badgerLogger routes badger's internal logging to the application logger.
// Info and debug chatter is demoted to debug.
type badgerLogger struct {
	logger *logging.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Errorf("[badger] "+format, args...)
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warnf("[badger] "+format, args...)
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debugf("[badger] "+format, args...)
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debugf("[badger] "+format, args...)
}

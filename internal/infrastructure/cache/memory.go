package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/vero/backend/internal/domain"
	"go.uber.org/zap"
)

const (
	defaultCleanupInterval = 10 * time.Minute
	defaultMaxEntries      = 10000
)

// Options configures a MemoryCache
type Options struct {
	// CleanupInterval is how often expired entries are swept
	CleanupInterval time.Duration
	// MaxEntries bounds the cache; the entry closest to expiry is evicted first
	MaxEntries int
}

// Stats reports cache effectiveness
type Stats struct {
	Entries   int
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

type cacheItem struct {
	Value      interface{}
	Expiration time.Time
}

// MemoryCache is a thread-safe, bounded in-memory cache with TTL support.
// It backs the embedding cache so repeated submissions skip the embedding call.
type MemoryCache struct {
	data       map[string]cacheItem
	mutex      sync.RWMutex
	maxEntries int
	stats      Stats
	logger     *zap.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// NewMemoryCache creates a cache and starts its sweeper. Call Close to stop it.
func NewMemoryCache(opts Options, logger *zap.Logger) *MemoryCache {
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = defaultMaxEntries
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &MemoryCache{
		data:       make(map[string]cacheItem),
		maxEntries: opts.MaxEntries,
		logger:     logger,
		cancel:     cancel,
		done:       make(chan struct{}),
	}

	go c.sweep(ctx, opts.CleanupInterval)

	return c
}

// Get retrieves a value from the cache
func (c *MemoryCache) Get(ctx context.Context, key string) (interface{}, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	item, exists := c.data[key]
	if !exists || time.Now().After(item.Expiration) {
		c.stats.Misses++
		return nil, domain.ErrCacheMiss
	}

	c.stats.Hits++
	return item.Value, nil
}

// Set stores a value with the given TTL. Values are normalised through JSON
// so readers see the same shapes a remote cache would return.
func (c *MemoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return err
	}

	var storedValue interface{}
	if err := json.Unmarshal(jsonData, &storedValue); err != nil {
		return err
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, exists := c.data[key]; !exists && len(c.data) >= c.maxEntries {
		c.evictLocked()
	}

	c.data[key] = cacheItem{
		Value:      storedValue,
		Expiration: time.Now().Add(ttl),
	}

	return nil
}

// Delete removes a value from the cache
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.data, key)
	return nil
}

// Exists reports whether a live entry exists for key
func (c *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, exists := c.data[key]
	if !exists {
		return false, nil
	}
	return !time.Now().After(item.Expiration), nil
}

// Stats returns a snapshot of the cache counters
func (c *MemoryCache) Stats() Stats {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	s := c.stats
	s.Entries = len(c.data)
	return s
}

// Close stops the sweeper and waits for it to exit
func (c *MemoryCache) Close() error {
	c.cancel()
	<-c.done
	return nil
}

// evictLocked drops expired entries, or the entry nearest expiry if none are.
// Caller must hold the write lock.
func (c *MemoryCache) evictLocked() {
	if removed := c.removeExpiredLocked(time.Now()); removed > 0 {
		return
	}

	var (
		victim   string
		earliest time.Time
	)
	for key, item := range c.data {
		if victim == "" || item.Expiration.Before(earliest) {
			victim = key
			earliest = item.Expiration
		}
	}
	if victim != "" {
		delete(c.data, victim)
		c.stats.Evictions++
	}
}

func (c *MemoryCache) removeExpiredLocked(now time.Time) int {
	removed := 0
	for key, item := range c.data {
		if now.After(item.Expiration) {
			delete(c.data, key)
			removed++
		}
	}
	c.stats.Evictions += uint64(removed)
	return removed
}

func (c *MemoryCache) sweep(ctx context.Context, interval time.Duration) {
	defer close(c.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			c.mutex.Lock()
			removed := c.removeExpiredLocked(now)
			c.mutex.Unlock()

			if removed > 0 {
				c.logger.Debug("Swept expired cache entries", zap.Int("removed", removed))
			}
		}
	}
}

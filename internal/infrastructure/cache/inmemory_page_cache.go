package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const defaultCleanupInterval = 30 * time.Second

type cacheEntry struct {
	value     []byte
	expiresAt time.Time
}

func (e *cacheEntry) isExpired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// InMemoryPageCache keeps pages in process memory. It serves as L1 in front of redis
// and as the only cache when redis is not configured.
type InMemoryPageCache struct {
	entries    sync.Map // map[string]*cacheEntry
	defaultTTL time.Duration
	logger     *zap.Logger
	now        func() time.Time
	stopCh     chan struct{}
	stopped    atomic.Bool

	hits   atomic.Int64
	misses atomic.Int64
}

// InMemoryPageCacheOption configures the cache
type InMemoryPageCacheOption func(*InMemoryPageCache)

// WithDefaultTTL is used when Set gets a zero TTL
func WithDefaultTTL(ttl time.Duration) InMemoryPageCacheOption {
	return func(c *InMemoryPageCache) {
		if ttl > 0 {
			c.defaultTTL = ttl
		}
	}
}

// WithInMemoryLogger sets the logger
func WithInMemoryLogger(logger *zap.Logger) InMemoryPageCacheOption {
	return func(c *InMemoryPageCache) {
		c.logger = logger
	}
}

// NewInMemoryPageCache creates the cache and starts the expiry sweeper. Call Close to stop it.
func NewInMemoryPageCache(opts ...InMemoryPageCacheOption) *InMemoryPageCache {
	c := &InMemoryPageCache{
		defaultTTL: 5 * time.Minute,
		logger:     zap.NewNop(),
		now:        time.Now,
		stopCh:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	go c.cleanupExpired()
	return c
}

func (c *InMemoryPageCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	if v, ok := c.entries.Load(key); ok {
		entry := v.(*cacheEntry)
		if !entry.isExpired(c.now()) {
			c.hits.Add(1)
			return entry.value, true, nil
		}
		c.entries.Delete(key)
	}
	c.misses.Add(1)
	return nil, false, nil
}

func (c *InMemoryPageCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	c.entries.Store(key, &cacheEntry{value: value, expiresAt: c.now().Add(ttl)})
	return nil
}

func (c *InMemoryPageCache) Delete(_ context.Context, key string) error {
	c.entries.Delete(key)
	return nil
}

func (c *InMemoryPageCache) InvalidateAll(_ context.Context) error {
	c.entries.Range(func(key, _ any) bool {
		c.entries.Delete(key)
		return true
	})
	return nil
}

// Count returns the number of stored entries, expired ones included
func (c *InMemoryPageCache) Count() int {
	n := 0
	c.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Stats returns hit and miss counters
func (c *InMemoryPageCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Close stops the sweeper. It is safe to call more than once.
func (c *InMemoryPageCache) Close() error {
	if c.stopped.CompareAndSwap(false, true) {
		close(c.stopCh)
	}
	return nil
}

func (c *InMemoryPageCache) cleanupExpired() {
	ticker := time.NewTicker(defaultCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.doCleanup()
		}
	}
}

func (c *InMemoryPageCache) doCleanup() int {
	now := c.now()
	removed := 0
	c.entries.Range(func(key, value any) bool {
		if value.(*cacheEntry).isExpired(now) {
			c.entries.Delete(key)
			removed++
		}
		return true
	})
	if removed > 0 {
		c.logger.Debug("Expired page cache entries removed", zap.Int("removed", removed))
	}
	return removed
}

var _ PageStore = (*InMemoryPageCache)(nil)

package cache

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TieredPageCache reads L1 (process memory) then L2 (shared, usually redis).
// Deletes go to both tiers and are broadcast so peers drop their L1 copy.
type TieredPageCache struct {
	l1          *InMemoryPageCache
	l2          PageStore
	invalidator Invalidator
	l1TTL       time.Duration
	origin      string
	logger      *zap.Logger

	l1Hits atomic.Int64
	l2Hits atomic.Int64
	misses atomic.Int64
}

// TieredPageCacheOption configures the cache
type TieredPageCacheOption func(*TieredPageCache)

// WithL1TTL caps how long a page lives in process memory
func WithL1TTL(ttl time.Duration) TieredPageCacheOption {
	return func(c *TieredPageCache) {
		if ttl > 0 {
			c.l1TTL = ttl
		}
	}
}

// WithTieredLogger sets the logger
func WithTieredLogger(logger *zap.Logger) TieredPageCacheOption {
	return func(c *TieredPageCache) {
		c.logger = logger
	}
}

// NewTieredPageCache combines the tiers. invalidator may be nil for a single instance.
func NewTieredPageCache(l1 *InMemoryPageCache, l2 PageStore, invalidator Invalidator, opts ...TieredPageCacheOption) *TieredPageCache {
	c := &TieredPageCache{
		l1:          l1,
		l2:          l2,
		invalidator: invalidator,
		l1TTL:       time.Minute,
		origin:      uuid.NewString(),
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StartInvalidationSubscription blocks applying peer invalidations until ctx is done
func (c *TieredPageCache) StartInvalidationSubscription(ctx context.Context) error {
	if c.invalidator == nil {
		return nil
	}
	return c.invalidator.Subscribe(ctx, c.handleInvalidation)
}

func (c *TieredPageCache) handleInvalidation(msg InvalidationMessage) {
	if msg.Origin == c.origin {
		return
	}
	ctx := context.Background()
	switch msg.Action {
	case InvalidateKey:
		_ = c.l1.Delete(ctx, msg.Key)
		c.logger.Debug("Page dropped by peer", zap.String("key", msg.Key))
	case InvalidateAll:
		_ = c.l1.InvalidateAll(ctx)
		c.logger.Debug("Page cache cleared by peer")
	}
}

func (c *TieredPageCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if data, ok, _ := c.l1.Get(ctx, key); ok {
		c.l1Hits.Add(1)
		return data, true, nil
	}
	data, ok, err := c.l2.Get(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		c.misses.Add(1)
		return nil, false, nil
	}
	c.l2Hits.Add(1)
	_ = c.l1.Set(ctx, key, data, c.l1TTL)
	return data, true, nil
}

// Set writes L2 and primes L1 with the shorter of ttl and the L1 TTL
func (c *TieredPageCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.l2.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	l1TTL := c.l1TTL
	if ttl > 0 && ttl < l1TTL {
		l1TTL = ttl
	}
	return c.l1.Set(ctx, key, value, l1TTL)
}

func (c *TieredPageCache) Delete(ctx context.Context, key string) error {
	_ = c.l1.Delete(ctx, key)
	if err := c.l2.Delete(ctx, key); err != nil {
		return err
	}
	c.broadcast(ctx, InvalidationMessage{Action: InvalidateKey, Key: key})
	return nil
}

func (c *TieredPageCache) InvalidateAll(ctx context.Context) error {
	_ = c.l1.InvalidateAll(ctx)
	if err := c.l2.InvalidateAll(ctx); err != nil {
		return err
	}
	c.broadcast(ctx, InvalidationMessage{Action: InvalidateAll})
	return nil
}

func (c *TieredPageCache) broadcast(ctx context.Context, msg InvalidationMessage) {
	if c.invalidator == nil {
		return
	}
	msg.Origin = c.origin
	if err := c.invalidator.Publish(ctx, msg); err != nil {
		// peers fall back to their L1 TTL
		c.logger.Warn("Failed to broadcast page cache invalidation", zap.Error(err))
	}
}

// Stats returns L1 hits, L2 hits and misses
func (c *TieredPageCache) Stats() (l1Hits, l2Hits, misses int64) {
	return c.l1Hits.Load(), c.l2Hits.Load(), c.misses.Load()
}

var _ PageStore = (*TieredPageCache)(nil)

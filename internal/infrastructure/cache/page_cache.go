package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	pageKeyPrefix        = "page:"
	defaultScanBatchSize = 100
	defaultPageTTL       = time.Hour
)

// PageStore is a byte cache for rendered documents
type PageStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	InvalidateAll(ctx context.Context) error
}

// RedisPageCache stores rendered pages in redis under the page: prefix
type RedisPageCache struct {
	client redis.UniversalClient
	logger *zap.Logger
}

// NewRedisPageCache wraps a connected client. The caller owns the client.
func NewRedisPageCache(client redis.UniversalClient, logger *zap.Logger) *RedisPageCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisPageCache{client: client, logger: logger}
}

func (c *RedisPageCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, pageKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read page cache: %w", err)
	}
	return data, true, nil
}

func (c *RedisPageCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = defaultPageTTL
	}
	if err := c.client.Set(ctx, pageKeyPrefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write page cache: %w", err)
	}
	return nil
}

func (c *RedisPageCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, pageKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete from page cache: %w", err)
	}
	return nil
}

// InvalidateAll removes every cached page. SCAN keeps redis responsive on large keyspaces.
func (c *RedisPageCache) InvalidateAll(ctx context.Context) error {
	var cursor uint64
	var deleted int64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pageKeyPrefix+"*", defaultScanBatchSize).Result()
		if err != nil {
			return fmt.Errorf("failed to scan page cache: %w", err)
		}
		if len(keys) > 0 {
			n, err := c.client.Del(ctx, keys...).Result()
			if err != nil {
				return fmt.Errorf("failed to delete page cache keys: %w", err)
			}
			deleted += n
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	c.logger.Info("Page cache invalidated", zap.Int64("deleted", deleted))
	return nil
}

var _ PageStore = (*RedisPageCache)(nil)

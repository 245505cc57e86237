package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInMemoryIdempotencyStore_MarkProcessed(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Hour)
	defer store.Close()
	ctx := context.Background()

	first, err := store.MarkProcessed(ctx, "lead:abc", time.Hour)
	require.NoError(t, err)
	assert.True(t, first)

	again, err := store.MarkProcessed(ctx, "lead:abc", time.Hour)
	require.NoError(t, err)
	assert.False(t, again)

	processed, err := store.IsProcessed(ctx, "lead:abc")
	require.NoError(t, err)
	assert.True(t, processed)

	processed, err = store.IsProcessed(ctx, "lead:other")
	require.NoError(t, err)
	assert.False(t, processed)
}

func TestInMemoryIdempotencyStore_Release(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Hour)
	defer store.Close()
	ctx := context.Background()

	_, err := store.MarkProcessed(ctx, "lead:abc", time.Hour)
	require.NoError(t, err)
	require.NoError(t, store.Release(ctx, "lead:abc"))
	require.NoError(t, store.Release(ctx, "lead:missing"))

	fresh, err := store.MarkProcessed(ctx, "lead:abc", time.Hour)
	require.NoError(t, err)
	assert.True(t, fresh)
}

func TestInMemoryIdempotencyStore_Expiry(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Hour)
	defer store.Close()
	ctx := context.Background()

	now := time.Now()
	store.now = func() time.Time { return now }
	_, err := store.MarkProcessed(ctx, "k", time.Minute)
	require.NoError(t, err)

	store.now = func() time.Time { return now.Add(2 * time.Minute) }
	processed, err := store.IsProcessed(ctx, "k")
	require.NoError(t, err)
	assert.False(t, processed)

	store.evict()
	assert.Equal(t, 0, store.Len())

	marked, err := store.MarkProcessed(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, marked)
}

func TestInMemoryIdempotencyStore_ConcurrentMark(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Hour)
	defer store.Close()

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := store.MarkProcessed(context.Background(), "same", time.Hour)
			if err == nil && ok {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins)
}

func TestInMemoryIdempotencyStore_CloseTwice(t *testing.T) {
	store := NewInMemoryIdempotencyStore(10 * time.Millisecond)
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}

func TestNewIdempotencyStore_WithoutRedis(t *testing.T) {
	store := NewIdempotencyStore(nil, zap.NewNop())
	defer store.Close()
	_, ok := store.(*InMemoryIdempotencyStore)
	assert.True(t, ok)
}

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultInvalidationChannel = "webstudio:page_cache"
	defaultCloseTimeout        = 5 * time.Second
)

// InvalidationAction says what a peer should drop from its L1 cache
type InvalidationAction string

const (
	InvalidateKey InvalidationAction = "delete"
	InvalidateAll InvalidationAction = "invalidate_all"
)

// InvalidationMessage is broadcast to all instances sharing the cache
type InvalidationMessage struct {
	Action    InvalidationAction `json:"action"`
	Key       string             `json:"key,omitempty"`
	Origin    string             `json:"origin"`
	Timestamp int64              `json:"timestamp"`
}

// Invalidator broadcasts invalidations between instances
type Invalidator interface {
	Publish(ctx context.Context, msg InvalidationMessage) error
	Subscribe(ctx context.Context, callback func(InvalidationMessage)) error
}

// RedisPageInvalidator uses redis pub/sub
type RedisPageInvalidator struct {
	client    redis.UniversalClient
	channel   string
	logger    *zap.Logger
	cancelFn  context.CancelFunc
	doneCh    chan struct{}
	doneOnce  sync.Once
	mu        sync.Mutex
	isRunning bool
}

// RedisPageInvalidatorOption configures the invalidator
type RedisPageInvalidatorOption func(*RedisPageInvalidator)

// WithInvalidatorChannel sets the pub/sub channel
func WithInvalidatorChannel(channel string) RedisPageInvalidatorOption {
	return func(i *RedisPageInvalidator) {
		i.channel = channel
	}
}

// WithInvalidatorLogger sets the logger
func WithInvalidatorLogger(logger *zap.Logger) RedisPageInvalidatorOption {
	return func(i *RedisPageInvalidator) {
		i.logger = logger
	}
}

// NewRedisPageInvalidator uses an existing client; the caller keeps ownership
func NewRedisPageInvalidator(client redis.UniversalClient, opts ...RedisPageInvalidatorOption) *RedisPageInvalidator {
	i := &RedisPageInvalidator{
		client:  client,
		channel: defaultInvalidationChannel,
		logger:  zap.NewNop(),
		doneCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Publish sends msg to every subscriber
func (i *RedisPageInvalidator) Publish(ctx context.Context, msg InvalidationMessage) error {
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixNano()
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal invalidation: %w", err)
	}
	if err := i.client.Publish(ctx, i.channel, data).Err(); err != nil {
		i.logger.Error("Failed to publish page cache invalidation",
			zap.String("channel", i.channel),
			zap.Error(err))
		return fmt.Errorf("failed to publish invalidation: %w", err)
	}
	return nil
}

// Subscribe blocks delivering messages to callback until ctx is done or Close is called
func (i *RedisPageInvalidator) Subscribe(ctx context.Context, callback func(InvalidationMessage)) error {
	i.mu.Lock()
	if i.isRunning {
		i.mu.Unlock()
		return fmt.Errorf("subscription already running")
	}
	i.isRunning = true
	subCtx, cancel := context.WithCancel(ctx)
	i.cancelFn = cancel
	i.mu.Unlock()

	defer func() {
		i.mu.Lock()
		i.isRunning = false
		i.mu.Unlock()
		i.markDone()
	}()

	pubsub := i.client.Subscribe(subCtx, i.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(subCtx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", i.channel, err)
	}
	i.logger.Info("Subscribed to page cache invalidations", zap.String("channel", i.channel))

	ch := pubsub.Channel()
	for {
		select {
		case <-subCtx.Done():
			return subCtx.Err()
		case m, ok := <-ch:
			if !ok {
				i.logger.Warn("Page cache invalidation channel closed")
				return nil
			}
			var msg InvalidationMessage
			if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
				i.logger.Error("Malformed page cache invalidation",
					zap.String("payload", m.Payload),
					zap.Error(err))
				continue
			}
			i.deliver(callback, msg)
		}
	}
}

func (i *RedisPageInvalidator) deliver(callback func(InvalidationMessage), msg InvalidationMessage) {
	defer func() {
		if r := recover(); r != nil {
			i.logger.Error("Panic in page cache invalidation callback", zap.Any("panic", r))
		}
	}()
	callback(msg)
}

func (i *RedisPageInvalidator) markDone() {
	i.doneOnce.Do(func() {
		close(i.doneCh)
	})
}

// Close stops a running subscription
func (i *RedisPageInvalidator) Close() error {
	i.mu.Lock()
	cancelFn := i.cancelFn
	i.mu.Unlock()

	if cancelFn == nil {
		return nil
	}
	cancelFn()
	select {
	case <-i.doneCh:
	case <-time.After(defaultCloseTimeout):
		i.logger.Warn("Timeout waiting for page cache subscription to stop")
	}
	return nil
}

var _ Invalidator = (*RedisPageInvalidator)(nil)

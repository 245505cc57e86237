package event

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/webstudio/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ErrBusFull is returned when the queue cannot take more events
var ErrBusFull = errors.New("event bus queue is full")

// DefaultQueueSize is the capacity of the async queue
const DefaultQueueSize = 256

type envelope struct {
	ctx     context.Context
	event   shared.DomainEvent
	attempt int
}

// InMemoryEventBus delivers events to subscribed handlers on a worker goroutine.
// Before Start and after Stop, Publish dispatches synchronously.
type InMemoryEventBus struct {
	registry *HandlerRegistry
	logger   *zap.Logger
	retries  int
	backoff  time.Duration

	mu      sync.RWMutex
	queue   chan envelope
	running bool
	done    chan struct{}
}

// BusOption configures an InMemoryEventBus
type BusOption func(*InMemoryEventBus)

// WithRedelivery queues an event again when one of its handlers fails, up to
// retries times, waiting backoff and doubling it on every further try.
// A redelivered event reaches every subscriber again, so handlers that must
// not repeat their work are wrapped in IdempotentHandler.
// Redelivery only happens while the bus is started.
func WithRedelivery(retries int, backoff time.Duration) BusOption {
	return func(b *InMemoryEventBus) {
		b.retries = max(retries, 0)
		b.backoff = max(backoff, time.Millisecond)
	}
}

// NewInMemoryEventBus creates a bus with a queue of queueSize events
func NewInMemoryEventBus(logger *zap.Logger, queueSize int, opts ...BusOption) *InMemoryEventBus {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	b := &InMemoryEventBus{
		registry: NewHandlerRegistry(),
		logger:   logger,
		queue:    make(chan envelope, queueSize),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish queues events for the worker. Handler failures never reach the publisher.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	// handlers outlive the request that published the event
	detached := context.WithoutCancel(ctx)
	for _, e := range events {
		if !b.running {
			_ = b.dispatch(detached, e)
			continue
		}
		select {
		case b.queue <- envelope{ctx: detached, event: e}:
		default:
			b.logger.Error("Event dropped, queue full",
				zap.String("event_type", e.EventType()),
				zap.String("event_id", e.EventID().String()),
			)
			return fmt.Errorf("%w: %s", ErrBusFull, e.EventType())
		}
	}
	return nil
}

// Subscribe registers a handler; without explicit types the handler's own EventTypes are used
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("Handler subscribed", zap.Strings("event_types", eventTypes))
}

func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
}

// Start launches the worker
func (b *InMemoryEventBus) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.running {
		return nil
	}
	b.running = true
	b.done = make(chan struct{})
	go b.work(b.queue, b.done)
	b.logger.Info("Event bus started", zap.Int("queue_size", cap(b.queue)))
	return nil
}

// Stop lets the worker drain queued events, waiting at most until ctx ends
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return nil
	}
	b.running = false
	queue, done := b.queue, b.done
	b.queue = make(chan envelope, cap(queue))
	close(queue)
	b.mu.Unlock()

	select {
	case <-done:
		b.logger.Info("Event bus stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("event bus stop: %w", ctx.Err())
	}
}

func (b *InMemoryEventBus) work(queue <-chan envelope, done chan<- struct{}) {
	defer close(done)
	for env := range queue {
		b.deliver(env)
	}
}

func (b *InMemoryEventBus) deliver(env envelope) {
	err := b.dispatch(env.ctx, env.event)
	if err == nil {
		return
	}
	fields := []zap.Field{
		zap.String("event_type", env.event.EventType()),
		zap.String("event_id", env.event.EventID().String()),
		zap.Int("attempt", env.attempt+1),
	}
	if env.attempt >= b.retries {
		if b.retries > 0 {
			b.logger.Error("Event redelivery exhausted", fields...)
		}
		return
	}

	delay := b.backoff << env.attempt
	env.attempt++
	b.logger.Warn("Event redelivery scheduled", append(fields, zap.Duration("delay", delay))...)
	time.AfterFunc(delay, func() { b.requeue(env) })
}

func (b *InMemoryEventBus) requeue(env envelope) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	fields := []zap.Field{
		zap.String("event_type", env.event.EventType()),
		zap.String("event_id", env.event.EventID().String()),
	}
	if !b.running {
		b.logger.Warn("Event redelivery dropped, bus stopped", fields...)
		return
	}
	select {
	case b.queue <- env:
	default:
		b.logger.Error("Event redelivery dropped, queue full", fields...)
	}
}

// dispatch runs every handler for e and joins their failures
func (b *InMemoryEventBus) dispatch(ctx context.Context, e shared.DomainEvent) error {
	var errs []error
	for _, h := range b.registry.Handlers(e.EventType()) {
		if err := b.safeHandle(ctx, h, e); err != nil {
			b.logger.Error("Event handler failed",
				zap.String("event_type", e.EventType()),
				zap.String("event_id", e.EventID().String()),
				zap.Error(err),
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (b *InMemoryEventBus) safeHandle(ctx context.Context, h shared.EventHandler, e shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return h.Handle(ctx, e)
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)

package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webstudio/backend/internal/domain/shared"
	"go.uber.org/zap"
)

type testEvent struct {
	shared.EventMeta
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{EventMeta: shared.NewEventMeta(eventType, "Lead", uuid.New())}
}

type recordingHandler struct {
	mu      sync.Mutex
	types   []string
	handled []shared.DomainEvent
	err     error
}

func (h *recordingHandler) Handle(_ context.Context, e shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, e)
	return h.err
}

func (h *recordingHandler) EventTypes() []string { return h.types }

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

// flakyHandler fails its first failures calls
type flakyHandler struct {
	mu       sync.Mutex
	failures int
	n        int
	types    []string
}

func (h *flakyHandler) Handle(context.Context, shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.n++
	if h.n <= h.failures {
		return errors.New("smtp unavailable")
	}
	return nil
}

func (h *flakyHandler) EventTypes() []string { return h.types }

func (h *flakyHandler) calls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.n
}

func TestInMemoryEventBus_SyncBeforeStart(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop(), 4)
	leads := &recordingHandler{types: []string{"LeadSubmitted"}}
	all := &recordingHandler{}
	bus.Subscribe(leads)
	bus.Subscribe(all)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("LeadSubmitted"), newTestEvent("InvoiceIssued")))

	assert.Equal(t, 1, leads.count())
	assert.Equal(t, 2, all.count())
}

func TestInMemoryEventBus_AsyncDelivery(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop(), 16)
	h := &recordingHandler{types: []string{"PostPublished"}}
	bus.Subscribe(h)
	require.NoError(t, bus.Start(context.Background()))

	for i := 0; i < 5; i++ {
		require.NoError(t, bus.Publish(context.Background(), newTestEvent("PostPublished")))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, bus.Stop(ctx))
	assert.Equal(t, 5, h.count())
}

func TestInMemoryEventBus_CancelledPublisherContext(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop(), 4)
	var seen error
	bus.Subscribe(NewHandlerFunc(func(ctx context.Context, _ shared.DomainEvent) error {
		seen = ctx.Err()
		return nil
	}, "LeadSubmitted"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, bus.Publish(ctx, newTestEvent("LeadSubmitted")))
	assert.NoError(t, seen)
}

func TestInMemoryEventBus_HandlerFailuresAreIsolated(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop(), 4)
	failing := &recordingHandler{types: []string{"AuditCompleted"}, err: errors.New("boom")}
	panicking := NewHandlerFunc(func(context.Context, shared.DomainEvent) error {
		panic("handler bug")
	}, "AuditCompleted")
	ok := &recordingHandler{types: []string{"AuditCompleted"}}
	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(ok)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("AuditCompleted")))
	assert.Equal(t, 1, failing.count())
	assert.Equal(t, 1, ok.count())
}

func TestInMemoryEventBus_QueueFull(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop(), 1)
	release := make(chan struct{})
	bus.Subscribe(NewHandlerFunc(func(context.Context, shared.DomainEvent) error {
		<-release
		return nil
	}, "LeadSubmitted"))
	require.NoError(t, bus.Start(context.Background()))

	// the first event occupies the worker, the second fills the queue
	require.NoError(t, bus.Publish(context.Background(), newTestEvent("LeadSubmitted")))
	require.Eventually(t, func() bool { return len(bus.queue) == 0 }, time.Second, 5*time.Millisecond)
	require.NoError(t, bus.Publish(context.Background(), newTestEvent("LeadSubmitted")))

	err := bus.Publish(context.Background(), newTestEvent("LeadSubmitted"))
	assert.ErrorIs(t, err, ErrBusFull)

	close(release)
	require.NoError(t, bus.Stop(context.Background()))
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop(), 4)
	h := &recordingHandler{types: []string{"LeadSubmitted"}}
	bus.Subscribe(h)
	bus.Unsubscribe(h)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("LeadSubmitted")))
	assert.Equal(t, 0, h.count())
	assert.Empty(t, bus.registry.Handlers("LeadSubmitted"))
}

func TestInMemoryEventBus_StopIsIdempotent(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop(), 4)
	require.NoError(t, bus.Stop(context.Background()))
	require.NoError(t, bus.Start(context.Background()))
	require.NoError(t, bus.Start(context.Background()))
	require.NoError(t, bus.Stop(context.Background()))
	require.NoError(t, bus.Stop(context.Background()))
}

func TestInMemoryEventBus_Redelivery(t *testing.T) {
	t.Run("failed event is delivered again", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop(), 4, WithRedelivery(3, time.Millisecond))
		h := &flakyHandler{failures: 2, types: []string{"LeadSubmitted"}}
		bus.Subscribe(h)
		require.NoError(t, bus.Start(context.Background()))
		defer func() { _ = bus.Stop(context.Background()) }()

		require.NoError(t, bus.Publish(context.Background(), newTestEvent("LeadSubmitted")))
		require.Eventually(t, func() bool { return h.calls() == 3 }, time.Second, 5*time.Millisecond)
	})

	t.Run("gives up after the retries", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop(), 4, WithRedelivery(1, time.Millisecond))
		h := &flakyHandler{failures: 10, types: []string{"LeadSubmitted"}}
		bus.Subscribe(h)
		require.NoError(t, bus.Start(context.Background()))
		defer func() { _ = bus.Stop(context.Background()) }()

		require.NoError(t, bus.Publish(context.Background(), newTestEvent("LeadSubmitted")))
		require.Eventually(t, func() bool { return h.calls() == 2 }, time.Second, 5*time.Millisecond)
		time.Sleep(20 * time.Millisecond)
		assert.Equal(t, 2, h.calls())
	})

	t.Run("no redelivery by default", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop(), 4)
		h := &flakyHandler{failures: 1, types: []string{"LeadSubmitted"}}
		bus.Subscribe(h)
		require.NoError(t, bus.Start(context.Background()))

		require.NoError(t, bus.Publish(context.Background(), newTestEvent("LeadSubmitted")))
		require.NoError(t, bus.Stop(context.Background()))
		time.Sleep(10 * time.Millisecond)
		assert.Equal(t, 1, h.calls())
	})
}

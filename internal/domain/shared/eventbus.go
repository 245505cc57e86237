package shared

import "context"

// EventHandler reacts to published events. EventTypes filters what the bus
// delivers; an empty list subscribes to everything.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	EventTypes() []string
}

type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventSubscriber registers handlers. Explicit eventTypes override the
// handler's own EventTypes.
type EventSubscriber interface {
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
}

// EventBus is started with the server and drained on shutdown
type EventBus interface {
	EventPublisher
	EventSubscriber
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// PublishAndClear hands the aggregate's pending events to publisher. The
// pending list is cleared even when publishing fails; a nil publisher drops
// the events.
func PublishAndClear(ctx context.Context, publisher EventPublisher, agg EventRecorder) error {
	events := agg.PendingEvents()
	agg.ClearEvents()
	if publisher == nil || len(events) == 0 {
		return nil
	}
	return publisher.Publish(ctx, events...)
}

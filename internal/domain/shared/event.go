package shared

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is a fact recorded by an aggregate, e.g. "lead.submitted" or
// "invoice.paid". Subscribers on the event bus send notifications, bump
// metrics and invalidate the page cache.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID
	AggregateType() string
}

// EventMeta implements the DomainEvent accessors. Concrete events embed it
// and add their payload fields.
type EventMeta struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	AggID     uuid.UUID `json:"aggregate_id"`
	AggType   string    `json:"aggregate_type"`
}

func NewEventMeta(eventType, aggType string, aggID uuid.UUID) EventMeta {
	return EventMeta{
		ID:        uuid.New(),
		Type:      eventType,
		Timestamp: now(),
		AggID:     aggID,
		AggType:   aggType,
	}
}

func (e *EventMeta) EventID() uuid.UUID     { return e.ID }
func (e *EventMeta) EventType() string      { return e.Type }
func (e *EventMeta) OccurredAt() time.Time  { return e.Timestamp }
func (e *EventMeta) AggregateID() uuid.UUID { return e.AggID }
func (e *EventMeta) AggregateType() string  { return e.AggType }

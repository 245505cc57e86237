package shared

import (
	"time"

	"github.com/google/uuid"
)

// Entity carries identity and timestamps. Leaf records such as content
// blocks and outreach messages embed it directly.
type Entity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewEntity stamps a fresh id and creation time
func NewEntity() Entity {
	t := now()
	return Entity{ID: uuid.New(), CreatedAt: t, UpdatedAt: t}
}

// Aggregate is embedded by leads, invoices, posts, audits, users and the
// catalogue entries. Version backs optimistic locking in the repositories;
// events recorded during a mutation are published by the application service
// once the aggregate is saved.
type Aggregate struct {
	Entity
	Version int
	stored  int
	pending []DomainEvent
}

// NewAggregate starts an aggregate at version 1
func NewAggregate() Aggregate {
	return Aggregate{Entity: NewEntity(), Version: 1}
}

// RestoreAggregate rebuilds an aggregate read from storage at version
func RestoreAggregate(e Entity, version int) Aggregate {
	return Aggregate{Entity: e, Version: version, stored: version}
}

// StoredVersion is the version the row held when the aggregate was read or
// last saved. Zero means the aggregate was never saved.
func (a *Aggregate) StoredVersion() int {
	return a.stored
}

// MarkStored records a successful save at version
func (a *Aggregate) MarkStored(version int) {
	a.Version = version
	a.stored = version
}

// Touch marks a mutation: UpdatedAt moves forward and Version increases by one
func (a *Aggregate) Touch() {
	a.UpdatedAt = now()
	a.Version++
}

func (a *Aggregate) Record(event DomainEvent) {
	a.pending = append(a.pending, event)
}

func (a *Aggregate) PendingEvents() []DomainEvent {
	return a.pending
}

func (a *Aggregate) ClearEvents() {
	a.pending = nil
}

// EventRecorder is satisfied by every type embedding Aggregate
type EventRecorder interface {
	PendingEvents() []DomainEvent
	ClearEvents()
}

// now is truncated to microseconds, the resolution postgres stores
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

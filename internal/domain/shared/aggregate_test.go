package shared

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPublisher struct {
	got []DomainEvent
	err error
}

func (p *stubPublisher) Publish(_ context.Context, events ...DomainEvent) error {
	p.got = append(p.got, events...)
	return p.err
}

func newEvent(agg *Aggregate, eventType string) DomainEvent {
	meta := NewEventMeta(eventType, "Lead", agg.ID)
	return &meta
}

func TestAggregate_TouchBumpsVersion(t *testing.T) {
	agg := NewAggregate()
	require.Equal(t, 1, agg.Version)
	created := agg.UpdatedAt

	agg.Touch()
	agg.Touch()

	assert.Equal(t, 3, agg.Version)
	assert.False(t, agg.UpdatedAt.Before(created))
	assert.Equal(t, agg.CreatedAt, created)
}

func TestPublishAndClear(t *testing.T) {
	agg := NewAggregate()
	agg.Record(newEvent(&agg, "lead.submitted"))
	agg.Record(newEvent(&agg, "lead.status_changed"))

	pub := &stubPublisher{}
	require.NoError(t, PublishAndClear(context.Background(), pub, &agg))
	require.Len(t, pub.got, 2)
	assert.Equal(t, "lead.submitted", pub.got[0].EventType())
	assert.Equal(t, agg.ID, pub.got[1].AggregateID())
	assert.Empty(t, agg.PendingEvents())
}

func TestPublishAndClear_ClearsOnFailureAndNilPublisher(t *testing.T) {
	agg := NewAggregate()
	agg.Record(newEvent(&agg, "lead.submitted"))

	boom := errors.New("queue full")
	err := PublishAndClear(context.Background(), &stubPublisher{err: boom}, &agg)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, agg.PendingEvents())

	agg.Record(newEvent(&agg, "lead.submitted"))
	assert.NoError(t, PublishAndClear(context.Background(), nil, &agg))
	assert.Empty(t, agg.PendingEvents())
}

func TestNewPaginated_TotalPages(t *testing.T) {
	assert.Equal(t, 0, NewPaginated([]int{}, 0, 1, 20).TotalPages)
	assert.Equal(t, 1, NewPaginated([]int{1}, 1, 1, 20).TotalPages)
	assert.Equal(t, 1, NewPaginated([]int{}, 20, 1, 20).TotalPages)
	assert.Equal(t, 2, NewPaginated([]int{}, 21, 1, 20).TotalPages)
	assert.Equal(t, 0, NewPaginated([]int{}, 21, 1, 0).TotalPages)
}

func TestFilter_Offset(t *testing.T) {
	assert.Equal(t, 0, Filter{}.Offset())
	assert.Equal(t, 40, Filter{Page: 3, PageSize: 20}.Offset())
	assert.Equal(t, 0, Filter{Page: -1, PageSize: 20}.Offset())
}

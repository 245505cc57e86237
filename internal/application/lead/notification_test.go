package lead

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webstudio/backend/internal/domain/lead"
	"github.com/webstudio/backend/internal/domain/shared"
	"go.uber.org/zap/zaptest"
)

type fakeNotifier struct {
	sent []Notification
	err  error
}

func (n *fakeNotifier) Notify(_ context.Context, msg Notification) error {
	n.sent = append(n.sent, msg)
	return n.err
}

type fakeRecorder struct {
	calls [][2]string
}

func (r *fakeRecorder) LeadSubmitted(_ context.Context, source, locale string) {
	r.calls = append(r.calls, [2]string{source, locale})
}

func submittedEvent(t *testing.T) *lead.LeadSubmittedEvent {
	t.Helper()
	l, err := lead.NewPublicLead(lead.Contact{
		Name: "Karel", Email: "karel@example.cz", Company: "Pekárna Novák", Message: "Nový e-shop",
	}, lead.SourceLanding, shared.LocaleCS, true, lead.WithInterest("eshop", "praha"))
	require.NoError(t, err)
	return l.PendingEvents()[0].(*lead.LeadSubmittedEvent)
}

func TestLeadSubmittedHandler_Handle(t *testing.T) {
	notifier := &fakeNotifier{}
	recorder := &fakeRecorder{}
	h := NewLeadSubmittedHandler(notifier, recorder, "https://studio.example/admin/", zaptest.NewLogger(t))
	event := submittedEvent(t)

	require.NoError(t, h.Handle(context.Background(), event))

	require.Len(t, notifier.sent, 1)
	n := notifier.sent[0]
	assert.Equal(t, "New lead: Karel (Pekárna Novák)", n.Title)
	assert.Equal(t, "https://studio.example/admin/leads/"+event.AggregateID().String(), n.Link)
	assert.Equal(t, "eshop", n.Fields["service"])
	assert.Equal(t, "landing", n.Fields["source"])
	assert.NotContains(t, n.Fields, "phone")

	assert.Equal(t, [][2]string{{"landing", "cs"}}, recorder.calls)
	assert.Equal(t, []string{lead.EventTypeLeadSubmitted}, h.EventTypes())
}

func TestLeadSubmittedHandler_NotifierError(t *testing.T) {
	notifier := &fakeNotifier{err: errors.New("webhook down")}
	h := NewLeadSubmittedHandler(notifier, nil, "", zaptest.NewLogger(t))

	err := h.Handle(context.Background(), submittedEvent(t))
	assert.Error(t, err)
	assert.Empty(t, notifier.sent[0].Link)
}

func TestLeadSubmittedHandler_WrongEvent(t *testing.T) {
	h := NewLeadSubmittedHandler(nil, nil, "", zaptest.NewLogger(t))
	l, err := lead.NewLead(lead.Contact{Name: "Eva", Email: "eva@example.cz"}, lead.SourceManual, shared.LocaleCS)
	require.NoError(t, err)
	l.ClearEvents()
	require.NoError(t, l.ChangeStatus(lead.StatusContacted, l.CreatedAt))

	assert.Error(t, h.Handle(context.Background(), l.PendingEvents()[0]))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "ábc", truncateRunes("ábc", 3))
	assert.Equal(t, "áb…", truncateRunes("ábcd", 2))
}

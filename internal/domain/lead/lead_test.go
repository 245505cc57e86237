package lead

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webstudio/backend/internal/domain/shared"
)

func validContact() Contact {
	return Contact{
		Name:    "Karel Dvořák",
		Email:   "Karel@Firma.cz",
		Phone:   "+420 777 123 456",
		Company: "Firma s.r.o.",
		Message: "Chci nový web.",
	}
}

func TestNewLead(t *testing.T) {
	t.Run("creates lead in status new", func(t *testing.T) {
		l, err := NewLead(validContact(), SourceContactForm, shared.LocaleCS, WithInterest("tvorba-webu", "brno"))

		require.NoError(t, err)
		assert.Equal(t, StatusNew, l.Status)
		assert.Equal(t, "karel@firma.cz", l.Email)
		assert.Equal(t, "tvorba-webu", l.ServiceInterest)
		assert.Equal(t, "brno", l.CitySlug)
		assert.False(t, l.ConsentGiven)

		events := l.PendingEvents()
		require.Len(t, events, 1)
		ev, ok := events[0].(*LeadSubmittedEvent)
		require.True(t, ok)
		assert.Equal(t, "tvorba-webu", ev.ServiceInterest)
	})

	t.Run("phone alone is enough", func(t *testing.T) {
		c := validContact()
		c.Email = ""
		_, err := NewLead(c, SourceManual, shared.LocaleDE)
		assert.NoError(t, err)
	})

	t.Run("requires email or phone", func(t *testing.T) {
		c := validContact()
		c.Email, c.Phone = "", ""
		_, err := NewLead(c, SourceManual, shared.LocaleDE)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Email or phone")
	})

	t.Run("requires name", func(t *testing.T) {
		c := validContact()
		c.Name = " "
		_, err := NewLead(c, SourceManual, shared.LocaleDE)
		assert.Error(t, err)
	})

	t.Run("rejects malformed phone", func(t *testing.T) {
		c := validContact()
		c.Phone = "call me"
		_, err := NewLead(c, SourceManual, shared.LocaleDE)
		assert.Error(t, err)
	})

	t.Run("unknown locale falls back to default", func(t *testing.T) {
		l, err := NewLead(validContact(), SourceManual, shared.Locale("fr"))
		require.NoError(t, err)
		assert.Equal(t, shared.DefaultLocale, l.Locale)
	})

	t.Run("public lead needs consent", func(t *testing.T) {
		_, err := NewPublicLead(validContact(), SourceContactForm, shared.LocaleCS, false)
		require.Error(t, err)

		auditID := uuid.New()
		l, err := NewPublicLead(validContact(), SourceAudit, shared.LocaleCS, true, WithAudit(auditID))
		require.NoError(t, err)
		assert.True(t, l.ConsentGiven)
		require.NotNil(t, l.AuditID)
		assert.Equal(t, auditID, *l.AuditID)
	})
}

func TestLead_ChangeStatus(t *testing.T) {
	at := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)

	t.Run("walks the happy path", func(t *testing.T) {
		l, err := NewLead(validContact(), SourceManual, shared.LocaleCS)
		require.NoError(t, err)

		require.NoError(t, l.ChangeStatus(StatusContacted, at))
		require.NotNil(t, l.ContactedAt)
		require.NoError(t, l.ChangeStatus(StatusQualified, at.Add(time.Hour)))
		require.NoError(t, l.ChangeStatus(StatusWon, at.Add(2*time.Hour)))
		require.NotNil(t, l.ClosedAt)
		assert.True(t, l.IsClosed())
		assert.Equal(t, at, *l.ContactedAt)
	})

	t.Run("won is terminal", func(t *testing.T) {
		l, _ := NewLead(validContact(), SourceManual, shared.LocaleCS)
		require.NoError(t, l.ChangeStatus(StatusContacted, at))
		require.NoError(t, l.ChangeStatus(StatusQualified, at))
		require.NoError(t, l.ChangeStatus(StatusWon, at))

		for _, s := range AllStatuses {
			assert.Error(t, l.ChangeStatus(s, at), "won -> %s", s)
		}
	})

	t.Run("lost can be reopened", func(t *testing.T) {
		l, _ := NewLead(validContact(), SourceManual, shared.LocaleCS)
		require.NoError(t, l.ChangeStatus(StatusLost, at))
		require.NotNil(t, l.ClosedAt)

		require.NoError(t, l.ChangeStatus(StatusNew, at))
		assert.Nil(t, l.ClosedAt)
		assert.False(t, l.IsClosed())
	})

	t.Run("cannot skip steps", func(t *testing.T) {
		l, _ := NewLead(validContact(), SourceManual, shared.LocaleCS)
		err := l.ChangeStatus(StatusWon, at)
		require.Error(t, err)
		de, ok := shared.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, "INVALID_STATE", de.Code)
	})

	t.Run("emits status changed event", func(t *testing.T) {
		l, _ := NewLead(validContact(), SourceManual, shared.LocaleCS)
		l.ClearEvents()
		require.NoError(t, l.ChangeStatus(StatusContacted, at))

		events := l.PendingEvents()
		require.Len(t, events, 1)
		ev := events[0].(*LeadStatusChangedEvent)
		assert.Equal(t, StatusNew, ev.From)
		assert.Equal(t, StatusContacted, ev.To)
	})
}

func TestLead_AppendNote(t *testing.T) {
	l, _ := NewLead(validContact(), SourceManual, shared.LocaleCS)
	at := time.Date(2026, 4, 2, 10, 5, 0, 0, time.UTC)

	assert.Error(t, l.AppendNote("Petr", "  ", at))
	require.NoError(t, l.AppendNote("Petr", "Called, wants a quote", at))
	require.NoError(t, l.AppendNote("Jana", "Quote sent", at.Add(time.Hour)))

	assert.Equal(t, "[2026-04-02 10:05] Petr: Called, wants a quote\n[2026-04-02 11:05] Jana: Quote sent", l.Notes)
}

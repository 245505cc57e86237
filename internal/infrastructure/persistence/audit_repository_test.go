package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webstudio/backend/internal/domain/audit"
	"github.com/webstudio/backend/internal/domain/outreach"
	"github.com/webstudio/backend/internal/domain/shared"
)

func TestGormAuditRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormAuditRepository(db)
	messages := NewGormOutreachRepository(db)
	ctx := context.Background()
	batchID := uuid.New()

	done, err := audit.NewWebsiteAudit("https://www.pekarna-brno.cz", shared.LocaleCS, audit.Prospect{CompanyName: "Pekárna"})
	require.NoError(t, err)
	done.BatchID = &batchID
	metrics := audit.PageMetrics{FinalURL: "https://www.pekarna-brno.cz/", StatusCode: 200, HTTPS: true, Title: "Pekárna Brno"}
	require.NoError(t, done.Complete(metrics, audit.AnalyzeWebsite(metrics), time.Now()))

	failed, err := audit.NewWebsiteAudit("http://offline.example.de", shared.LocaleDE, audit.Prospect{})
	require.NoError(t, err)
	require.NoError(t, failed.Fail("dial tcp: timeout", time.Now()))

	require.NoError(t, repo.Save(ctx, done))
	require.NoError(t, repo.Save(ctx, failed))

	t.Run("round trip keeps metrics and issues", func(t *testing.T) {
		found, err := repo.FindByID(ctx, done.ID)
		require.NoError(t, err)
		assert.Equal(t, "pekarna-brno.cz", found.Domain)
		assert.Equal(t, audit.StatusCompleted, found.Status)
		require.NotNil(t, found.Metrics)
		assert.Equal(t, "Pekárna Brno", found.Metrics.Title)
		assert.Equal(t, done.Issues, found.Issues)
		assert.Equal(t, done.Grade, found.Grade)
		assert.Equal(t, "Pekárna", found.Prospect.CompanyName)
	})

	t.Run("failed audit has no metrics", func(t *testing.T) {
		found, err := repo.FindByID(ctx, failed.ID)
		require.NoError(t, err)
		assert.Nil(t, found.Metrics)
		assert.Equal(t, "dial tcp: timeout", found.Error)
	})

	t.Run("filters", func(t *testing.T) {
		list, err := repo.FindAll(ctx, shared.Filter{Filters: map[string]interface{}{audit.FilterBatch: batchID}})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, done.ID, list[0].ID)

		count, err := repo.Count(ctx, shared.Filter{Filters: map[string]interface{}{audit.FilterStatus: audit.StatusFailed}})
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		list, err = repo.FindAll(ctx, shared.Filter{Search: "offline"})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, failed.ID, list[0].ID)
	})

	t.Run("outreach messages", func(t *testing.T) {
		first, err := outreach.NewMessage(done.ID, outreach.ChannelEmail, outreach.BandCritical, 0, shared.LocaleCS, "Váš web", "Dobrý den")
		require.NoError(t, err)
		second, err := outreach.NewMessage(done.ID, outreach.ChannelEmail, outreach.BandCritical, 1, shared.LocaleCS, "Váš web", "Dobrý den znovu")
		require.NoError(t, err)
		other, err := outreach.NewMessage(done.ID, outreach.ChannelWhatsApp, outreach.BandCritical, 0, shared.LocaleCS, "", "Ahoj")
		require.NoError(t, err)
		for _, m := range []*outreach.Message{first, second, other} {
			require.NoError(t, messages.Save(ctx, m))
		}

		count, err := messages.CountByChannelAndBand(ctx, outreach.ChannelEmail, outreach.BandCritical)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)

		list, err := messages.FindByAudit(ctx, done.ID)
		require.NoError(t, err)
		assert.Len(t, list, 3)
	})

	t.Run("delete cascades to messages", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, done.ID))
		list, err := messages.FindByAudit(ctx, done.ID)
		require.NoError(t, err)
		assert.Empty(t, list)
		assert.ErrorIs(t, repo.Delete(ctx, done.ID), shared.ErrNotFound)
	})
}

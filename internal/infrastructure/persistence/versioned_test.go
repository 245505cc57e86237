package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	invoiceapp "github.com/webstudio/backend/internal/application/invoice"
	"github.com/webstudio/backend/internal/domain/identity"
	"github.com/webstudio/backend/internal/domain/invoice"
	"github.com/webstudio/backend/internal/domain/lead"
	"github.com/webstudio/backend/internal/domain/shared"
	"go.uber.org/zap"
)

func TestGormLeadRepository_StaleCopyIsRejected(t *testing.T) {
	repo := NewGormLeadRepository(newTestDB(t))
	ctx := context.Background()

	l := newTestLead(t, "Petr Svoboda", "petr@example.cz", lead.SourceContactForm, shared.LocaleCS)
	assert.Zero(t, l.StoredVersion())
	require.NoError(t, repo.Save(ctx, l))
	assert.Equal(t, 1, l.StoredVersion())

	first, err := repo.FindByID(ctx, l.ID)
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, l.ID)
	require.NoError(t, err)

	require.NoError(t, first.ChangeStatus(lead.StatusContacted, time.Now()))
	require.NoError(t, repo.Save(ctx, first))
	assert.Greater(t, first.Version, 1)
	assert.Equal(t, first.Version, first.StoredVersion())

	require.NoError(t, second.AppendNote("anna", "Called back", time.Now()))
	assert.ErrorIs(t, repo.Save(ctx, second), shared.ErrConcurrencyConflict)

	found, err := repo.FindByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, lead.StatusContacted, found.Status)
	assert.Empty(t, found.Notes)
	assert.Equal(t, first.Version, found.Version)

	t.Run("unchanged save still moves the version", func(t *testing.T) {
		before := found.Version
		require.NoError(t, repo.Save(ctx, found))
		assert.Equal(t, before+1, found.Version)
	})

	t.Run("deleted row", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, l.ID))
		assert.ErrorIs(t, repo.Save(ctx, found), shared.ErrNotFound)
	})
}

func TestGormUserRepository_StaleUpdateIsRejected(t *testing.T) {
	repo := NewGormUserRepository(newTestDB(t))
	ctx := context.Background()

	user := newTestUser(t, "eva@example.com", "Eva Editor", identity.RoleEditor)
	require.NoError(t, repo.Create(ctx, user))

	first, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)

	require.NoError(t, first.Update("Eva Admin", identity.RoleAdmin))
	require.NoError(t, repo.Update(ctx, first))

	require.NoError(t, second.Update("Eva Renamed", identity.RoleEditor))
	assert.ErrorIs(t, repo.Update(ctx, second), shared.ErrConcurrencyConflict)

	found, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Eva Admin", found.Name)
}

func TestInvoiceIssue_StaleDraftDoesNotConsumeNumber(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormInvoiceRepository(db)
	scope := NewGormTransactionScope(db)
	svc := invoiceapp.NewInvoiceService(repo, scope, zap.NewNop())
	ctx := context.Background()

	draft := newTestInvoice(t, "Souběh s.r.o.", invoice.CurrencyCZK)
	require.NoError(t, repo.Save(ctx, draft))
	stale, err := repo.FindByID(ctx, draft.ID)
	require.NoError(t, err)

	year := time.Now().UTC().Year()
	issued, err := svc.Issue(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, invoice.FormatNumber(year, 1), issued.Number)

	err = scope.Execute(ctx, func(repos invoiceapp.TransactionalRepositories) error {
		seq, err := repos.Sequence().Next(ctx, year)
		if err != nil {
			return err
		}
		if err := stale.Issue(invoice.FormatNumber(year, seq), time.Now()); err != nil {
			return err
		}
		return repos.InvoiceRepo().Save(ctx, stale)
	})
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)

	found, err := repo.FindByID(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, issued.Number, found.Number)

	next, err := NewGormInvoiceSequence(db).Next(ctx, year)
	require.NoError(t, err)
	assert.Equal(t, 2, next)
}

//go:build integration

package persistence

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	invoiceapp "github.com/webstudio/backend/internal/application/invoice"
	"github.com/webstudio/backend/internal/domain/invoice"
	"github.com/webstudio/backend/internal/domain/lead"
	"github.com/webstudio/backend/internal/domain/shared"
	"github.com/webstudio/backend/internal/infrastructure/persistence/pgtest"
	"go.uber.org/zap"
)

func TestPostgres_InvoiceSequenceIsGapFreeUnderConcurrency(t *testing.T) {
	tdb := pgtest.New(t)
	seq := NewGormInvoiceSequence(tdb.DB)
	ctx := context.Background()

	const issuers = 20
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		values []int
	)
	for i := 0; i < issuers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := seq.Next(ctx, 2026)
			assert.NoError(t, err)
			mu.Lock()
			values = append(values, v)
			mu.Unlock()
		}()
	}
	wg.Wait()

	sort.Ints(values)
	require.Len(t, values, issuers)
	for i, v := range values {
		assert.Equal(t, i+1, v)
	}

	next, err := seq.Next(ctx, 2027)
	require.NoError(t, err)
	assert.Equal(t, 1, next)
}

func TestPostgres_ConcurrentIssueOfOneDraftKeepsNumbersGapFree(t *testing.T) {
	tdb := pgtest.New(t)
	repo := NewGormInvoiceRepository(tdb.DB)
	svc := invoiceapp.NewInvoiceService(repo, NewGormTransactionScope(tdb.DB), zap.NewNop())
	ctx := context.Background()

	draft := newTestInvoice(t, "Souběh s.r.o.", invoice.CurrencyCZK)
	require.NoError(t, repo.Save(ctx, draft))

	const issuers = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		numbers  []string
		rejected int
	)
	for range issuers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			issued, err := svc.Issue(ctx, draft.ID)
			mu.Lock()
			defer mu.Unlock()
			var de *shared.DomainError
			switch {
			case err == nil:
				numbers = append(numbers, issued.Number)
			case errors.As(err, &de) && (de.Code == "CONCURRENCY_CONFLICT" || de.Code == "INVALID_STATE"):
				rejected++
			default:
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	year := time.Now().UTC().Year()
	require.Len(t, numbers, 1)
	assert.Equal(t, issuers-1, rejected)
	assert.Equal(t, invoice.FormatNumber(year, 1), numbers[0])

	next, err := NewGormInvoiceSequence(tdb.DB).Next(ctx, year)
	require.NoError(t, err)
	assert.Equal(t, 2, next)
}

func TestPostgres_DraftInvoicesShareNullNumber(t *testing.T) {
	tdb := pgtest.New(t)
	repo := NewGormInvoiceRepository(tdb.DB)
	ctx := context.Background()

	first := newTestInvoice(t, "Kavárna Praha s.r.o.", invoice.CurrencyCZK)
	second := newTestInvoice(t, "Bäckerei Wien GmbH", invoice.CurrencyEUR)
	require.NoError(t, repo.Save(ctx, first))
	require.NoError(t, repo.Save(ctx, second))

	drafts, err := repo.FindAll(ctx, shared.Filter{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, drafts, 2)

	found, err := repo.FindByID(ctx, second.ID)
	require.NoError(t, err)
	require.Len(t, found.Items, 2)
	assert.True(t, found.Total().Equal(second.Total()))
}

func TestPostgres_LeadRoundTrip(t *testing.T) {
	tdb := pgtest.New(t)
	repo := NewGormLeadRepository(tdb.DB)
	ctx := context.Background()

	l := newTestLead(t, "Jana Nováková", "jana@example.cz", lead.SourceContactForm, shared.LocaleCS)
	require.NoError(t, repo.Save(ctx, l))

	found, err := repo.FindByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jana Nováková", found.Name)
	assert.Equal(t, lead.SourceContactForm, found.Source)

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[l.Status])

	tdb.Truncate()
	_, err = repo.FindByID(ctx, l.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestPostgres_MigrationsRollBackCleanly(t *testing.T) {
	tdb := pgtest.New(t)
	m := tdb.Migrator()

	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, uint(6), version)

	require.NoError(t, m.Down())
	var tables int64
	require.NoError(t, tdb.DB.Raw(`SELECT COUNT(*) FROM pg_tables
		WHERE schemaname = 'public' AND tablename != 'schema_migrations'`).Scan(&tables).Error)
	assert.Zero(t, tables)

	require.NoError(t, m.Up())
	version, _, err = m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(6), version)
}

package telemetry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/webstudio/backend/internal/domain/audit"
	"github.com/webstudio/backend/internal/domain/blog"
	"github.com/webstudio/backend/internal/domain/invoice"
	"github.com/webstudio/backend/internal/domain/shared"
	"github.com/webstudio/backend/internal/infrastructure/telemetry"
)

type stubAuditCounter struct {
	n      int64
	err    error
	status any
}

func (s *stubAuditCounter) Count(_ context.Context, filter shared.Filter) (int64, error) {
	s.status = filter.Filters[audit.FilterStatus]
	return s.n, s.err
}

func newBusinessMetrics(t *testing.T, audits telemetry.AuditCounter) (*telemetry.BusinessMetrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := telemetry.NewWithReader(reader)
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:  mp.Meter("business"),
		Audits: audits,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = bm.Close() })
	return bm, reader
}

func TestNewBusinessMetrics_NilMeter(t *testing.T) {
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{})
	assert.Nil(t, bm)
	assert.ErrorIs(t, err, telemetry.ErrMeterNil)
}

func TestBusinessMetrics_DirectRecorders(t *testing.T) {
	bm, reader := newBusinessMetrics(t, nil)
	ctx := context.Background()

	bm.LeadSubmitted(ctx, "contact", "cs")
	bm.LeadSubmitted(ctx, "audit", "de")
	bm.OutreachGenerated(ctx, "email", "critical")
	bm.JobFinished(ctx, "audit.run", "SUCCESS", time.Second)
	bm.JobFinished(ctx, "audit.run", "FAILED", 2*time.Second)

	metrics := collect(t, reader)
	assert.Equal(t, int64(2), sumFor(t, metrics["webstudio_leads_submitted_total"]))
	assert.Equal(t, int64(1), sumFor(t, metrics["webstudio_leads_submitted_total"],
		attribute.String("source", "audit"), attribute.String("locale", "de")))
	assert.Equal(t, int64(1), sumFor(t, metrics["webstudio_outreach_generated_total"],
		attribute.String("channel", "email"), attribute.String("band", "critical")))
	assert.Equal(t, int64(1), sumFor(t, metrics["webstudio_job_failures_total"], attribute.String("job", "audit.run")))

	h, ok := metrics["webstudio_job_duration_seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	assert.Len(t, h.DataPoints, 2)
}

func TestBusinessMetrics_HandlesEvents(t *testing.T) {
	bm, reader := newBusinessMetrics(t, nil)
	ctx := context.Background()

	completed := &audit.WebsiteAudit{Domain: "example.com", OverallScore: 82, Grade: "B"}
	completed.ID = uuid.New()
	require.NoError(t, bm.Handle(ctx, audit.NewAuditCompletedEvent(completed)))

	post := &blog.Post{Slug: "seo-tipy", Title: "SEO tipy", Locale: shared.LocaleCS, Generated: true}
	post.ID = uuid.New()
	require.NoError(t, bm.Handle(ctx, blog.NewPostPublishedEvent(post)))

	issued := &invoice.InvoiceIssuedEvent{
		EventMeta: shared.NewEventMeta(invoice.EventTypeInvoiceIssued, invoice.AggregateTypeInvoice, uuid.New()),
		Number:    "2026-0001",
		Total:     decimal.RequireFromString("12100.50"),
		Currency:  invoice.CurrencyCZK,
	}
	require.NoError(t, bm.Handle(ctx, issued))

	metrics := collect(t, reader)
	assert.Equal(t, int64(1), sumFor(t, metrics["webstudio_audits_completed_total"], attribute.String("grade", "B")))
	assert.Equal(t, int64(1), sumFor(t, metrics["webstudio_posts_published_total"],
		attribute.String("locale", "cs"), attribute.String("generated", "true")))
	assert.Equal(t, int64(1), sumFor(t, metrics["webstudio_invoices_issued_total"], attribute.String("currency", "CZK")))

	amount, ok := metrics["webstudio_invoice_amount_total"].Data.(metricdata.Sum[float64])
	require.True(t, ok)
	require.Len(t, amount.DataPoints, 1)
	assert.InDelta(t, 12100.50, amount.DataPoints[0].Value, 0.001)

	assert.ElementsMatch(t, []string{
		audit.EventTypeAuditCompleted,
		blog.EventTypePostPublished,
		invoice.EventTypeInvoiceIssued,
	}, bm.EventTypes())
}

func TestBusinessMetrics_PendingAuditGauge(t *testing.T) {
	counter := &stubAuditCounter{n: 7}
	_, reader := newBusinessMetrics(t, counter)

	metrics := collect(t, reader)
	gauge, ok := metrics["webstudio_audits_pending"].Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, gauge.DataPoints, 1)
	assert.Equal(t, int64(7), gauge.DataPoints[0].Value)
	assert.Equal(t, string(audit.StatusPending), counter.status)
}

func TestBusinessMetrics_PendingAuditGaugeSkipsOnError(t *testing.T) {
	_, reader := newBusinessMetrics(t, &stubAuditCounter{err: errors.New("db down")})

	metrics := collect(t, reader)
	if m, present := metrics["webstudio_audits_pending"]; present {
		gauge, ok := m.Data.(metricdata.Gauge[int64])
		require.True(t, ok)
		assert.Empty(t, gauge.DataPoints)
	}
}

package telemetry

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/webstudio/backend/internal/domain/audit"
	"github.com/webstudio/backend/internal/domain/blog"
	"github.com/webstudio/backend/internal/domain/invoice"
	"github.com/webstudio/backend/internal/domain/shared"
)

// AuditCounter counts audits matching a filter
type AuditCounter interface {
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
	// Audits feeds the pending-audit gauge. Optional.
	Audits AuditCounter
}

// BusinessMetrics counts what the agency cares about: leads, audits, outreach, posts and invoices.
// It subscribes to domain events and is called directly by services that have no event.
type BusinessMetrics struct {
	logger *zap.Logger

	leadsSubmitted    *Counter
	auditsCompleted   *Counter
	outreachGenerated *Counter
	postsPublished    *Counter
	invoicesIssued    *Counter
	invoiceAmount     metric.Float64Counter
	jobDuration       *Histogram
	jobFailures       *Counter

	registration metric.Registration
}

// NewBusinessMetrics creates the instruments
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{logger: logger}
	m := cfg.Meter
	var err error

	if bm.leadsSubmitted, err = NewCounter(m, "webstudio_leads_submitted_total", "Leads captured by source and locale", "{leads}"); err != nil {
		return nil, err
	}
	if bm.auditsCompleted, err = NewCounter(m, "webstudio_audits_completed_total", "Website audits completed by grade", "{audits}"); err != nil {
		return nil, err
	}
	if bm.outreachGenerated, err = NewCounter(m, "webstudio_outreach_generated_total", "Outreach messages by channel and band", "{messages}"); err != nil {
		return nil, err
	}
	if bm.postsPublished, err = NewCounter(m, "webstudio_posts_published_total", "Blog posts published", "{posts}"); err != nil {
		return nil, err
	}
	if bm.invoicesIssued, err = NewCounter(m, "webstudio_invoices_issued_total", "Invoices issued by currency", "{invoices}"); err != nil {
		return nil, err
	}
	if bm.invoiceAmount, err = m.Float64Counter("webstudio_invoice_amount_total",
		metric.WithDescription("Gross amount of issued invoices"),
		metric.WithUnit("{currency}"),
	); err != nil {
		return nil, err
	}
	if bm.jobDuration, err = NewHistogram(m, HistogramOpts{
		Name:        "webstudio_job_duration_seconds",
		Description: "Background job attempt duration",
		Unit:        "s",
		Boundaries:  JobDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if bm.jobFailures, err = NewCounter(m, "webstudio_job_failures_total", "Failed background job attempts", "{attempts}"); err != nil {
		return nil, err
	}

	if cfg.Audits != nil {
		pending, err := m.Int64ObservableGauge("webstudio_audits_pending",
			metric.WithDescription("Audits waiting in the queue"),
			metric.WithUnit("{audits}"),
		)
		if err != nil {
			return nil, err
		}
		bm.registration, err = m.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
			filter := shared.DefaultFilter()
			filter.Filters[audit.FilterStatus] = string(audit.StatusPending)
			n, err := cfg.Audits.Count(ctx, filter)
			if err != nil {
				logger.Warn("Failed to count pending audits", zap.Error(err))
				return nil
			}
			o.ObserveInt64(pending, n)
			return nil
		}, pending)
		if err != nil {
			return nil, err
		}
	}

	return bm, nil
}

// LeadSubmitted counts one captured lead
func (bm *BusinessMetrics) LeadSubmitted(ctx context.Context, source, locale string) {
	bm.leadsSubmitted.Inc(ctx, AttrSource.String(source), AttrLocale.String(locale))
}

// OutreachGenerated counts one generated outreach message
func (bm *BusinessMetrics) OutreachGenerated(ctx context.Context, channel, band string) {
	bm.outreachGenerated.Inc(ctx, AttrChannel.String(channel), AttrBand.String(band))
}

// JobFinished records one scheduler attempt
func (bm *BusinessMetrics) JobFinished(ctx context.Context, name, status string, d time.Duration) {
	attrs := []attribute.KeyValue{AttrJob.String(name), AttrStatus.String(status)}
	bm.jobDuration.RecordDuration(ctx, d, attrs...)
	if status == "FAILED" {
		bm.jobFailures.Inc(ctx, AttrJob.String(name))
	}
}

// EventTypes implements shared.EventHandler
func (bm *BusinessMetrics) EventTypes() []string {
	return []string{
		audit.EventTypeAuditCompleted,
		blog.EventTypePostPublished,
		invoice.EventTypeInvoiceIssued,
	}
}

// Handle implements shared.EventHandler
func (bm *BusinessMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *audit.AuditCompletedEvent:
		bm.auditsCompleted.Inc(ctx, AttrGrade.String(e.Grade))
	case *blog.PostPublishedEvent:
		bm.postsPublished.Inc(ctx,
			AttrLocale.String(string(e.Locale)),
			attribute.String("generated", strconv.FormatBool(e.Generated)),
		)
		bm.logger.Info("Post published",
			zap.String("slug", e.Slug),
			zap.String("locale", string(e.Locale)),
			zap.Bool("generated", e.Generated))
	case *invoice.InvoiceIssuedEvent:
		currency := attribute.String("currency", string(e.Currency))
		bm.invoicesIssued.Inc(ctx, currency)
		amount, _ := e.Total.Float64()
		bm.invoiceAmount.Add(ctx, amount, metric.WithAttributes(currency))
	}
	return nil
}

// Close unregisters the pending-audit callback
func (bm *BusinessMetrics) Close() error {
	if bm.registration == nil {
		return nil
	}
	return bm.registration.Unregister()
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "telemetry", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}

var _ shared.EventHandler = (*BusinessMetrics)(nil)

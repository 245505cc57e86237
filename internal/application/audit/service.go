package audit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	leadapp "github.com/webstudio/backend/internal/application/lead"
	"github.com/webstudio/backend/internal/domain/audit"
	"github.com/webstudio/backend/internal/domain/shared"
	"github.com/webstudio/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// MaxBatchSize caps the URLs accepted by SubmitBatch
const MaxBatchSize = 50

// JobNameRun is the scheduler job name of a queued audit
const JobNameRun = "audit.run"

// LeadCapturer creates leads from public audits
type LeadCapturer interface {
	CaptureAuditLead(ctx context.Context, input leadapp.AuditLeadInput) (uuid.UUID, error)
}

// JobQueue runs work on the background worker pool
type JobQueue interface {
	Enqueue(name string, run func(ctx context.Context) error) error
}

// AuditService runs website audits
type AuditService struct {
	repo      audit.AuditRepository
	fetcher   audit.Fetcher
	leads     LeadCapturer
	queue     JobQueue
	publisher shared.EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewAuditService creates an audit service. leads and queue may be nil.
func NewAuditService(
	repo audit.AuditRepository,
	fetcher audit.Fetcher,
	leads LeadCapturer,
	queue JobQueue,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *AuditService {
	return &AuditService{
		repo:      repo,
		fetcher:   fetcher,
		leads:     leads,
		queue:     queue,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// RunAudit fetches and scores a site synchronously. A site that cannot be
// fetched yields a failed audit, not an error.
func (s *AuditService) RunAudit(ctx context.Context, input RunAuditInput) (*AuditDTO, error) {
	a, err := audit.NewWebsiteAudit(input.URL, shared.LocaleOrDefault(input.Locale), audit.Prospect{
		CompanyName:  input.CompanyName,
		ContactEmail: input.ContactEmail,
		ContactPhone: input.ContactPhone,
	})
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, a); err != nil {
		return nil, err
	}
	if err := s.execute(ctx, a); err != nil {
		return nil, err
	}
	dto := ToAuditDTO(a)
	return &dto, nil
}

// PublicAudit runs an audit for a website visitor. With an email and consent
// a lead with source audit is created and linked.
func (s *AuditService) PublicAudit(ctx context.Context, input PublicAuditInput) (*AuditDTO, error) {
	prospect := audit.Prospect{}
	if input.Consent {
		prospect = audit.Prospect{
			CompanyName:  input.Company,
			ContactEmail: input.Email,
			ContactPhone: input.Phone,
		}
	}
	a, err := audit.NewWebsiteAudit(input.URL, shared.LocaleOrDefault(input.Locale), prospect)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, a); err != nil {
		return nil, err
	}
	if err := s.execute(ctx, a); err != nil {
		return nil, err
	}

	if s.leads != nil && input.Consent && strings.TrimSpace(input.Email) != "" {
		leadID, err := s.leads.CaptureAuditLead(ctx, leadapp.AuditLeadInput{
			AuditID: a.ID,
			Name:    input.Name,
			Company: input.Company,
			Email:   input.Email,
			Phone:   input.Phone,
			Website: a.URL,
			Locale:  string(a.Locale),
			Consent: input.Consent,
		})
		if err != nil {
			s.logger.Warn("Failed to create lead from audit", zap.String("audit_id", a.ID.String()), zap.Error(err))
		} else {
			a.LinkLead(leadID)
			if err := s.repo.Save(ctx, a); err != nil {
				s.logger.Warn("Failed to link lead to audit", zap.String("audit_id", a.ID.String()), zap.Error(err))
			}
		}
	}

	dto := toPublicDTO(a)
	return &dto, nil
}

// SubmitBatch stores pending audits under one batch id and queues one job per audit
func (s *AuditService) SubmitBatch(ctx context.Context, input SubmitBatchInput) (*BatchResult, error) {
	if s.queue == nil {
		return nil, shared.NewDomainError("INVALID_STATE", "Background jobs are not running")
	}
	locale := shared.LocaleOrDefault(input.Locale)

	result := &BatchResult{
		BatchID:  uuid.New(),
		Audits:   []AuditDTO{},
		Rejected: []RejectedURL{},
	}
	seen := make(map[string]bool)
	audits := make([]*audit.WebsiteAudit, 0, len(input.URLs))
	for _, raw := range input.URLs {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		a, err := audit.NewWebsiteAudit(raw, locale, audit.Prospect{})
		if err != nil {
			result.Rejected = append(result.Rejected, RejectedURL{URL: raw, Reason: err.Error()})
			continue
		}
		if seen[a.URL] {
			continue
		}
		seen[a.URL] = true
		a.AssignBatch(result.BatchID)
		audits = append(audits, a)
	}

	if len(audits) == 0 {
		return nil, shared.NewDomainError("EMPTY_BATCH", "No valid URLs in batch")
	}
	if len(audits) > MaxBatchSize {
		return nil, shared.NewDomainError("BATCH_TOO_LARGE",
			fmt.Sprintf("A batch can contain at most %d URLs, got %d", MaxBatchSize, len(audits)))
	}

	for _, a := range audits {
		if err := s.repo.Save(ctx, a); err != nil {
			return nil, err
		}
		id := a.ID
		if err := s.queue.Enqueue(JobNameRun, func(ctx context.Context) error {
			return s.ProcessQueued(ctx, id)
		}); err != nil {
			s.logger.Error("Failed to queue audit", zap.String("audit_id", id.String()), zap.Error(err))
			if ferr := a.Fail("could not be queued: "+err.Error(), s.now()); ferr == nil {
				if err := s.repo.Save(ctx, a); err != nil {
					return nil, err
				}
			}
		} else {
			result.Queued++
		}
		result.Audits = append(result.Audits, ToAuditDTO(a))
	}

	s.logger.Info("Audit batch submitted",
		zap.String("batch_id", result.BatchID.String()),
		zap.Int("queued", result.Queued),
		zap.Int("rejected", len(result.Rejected)))
	return result, nil
}

// ProcessQueued runs a pending audit taken from the queue. Audits that are
// no longer pending are skipped; storage errors are returned for retry.
func (s *AuditService) ProcessQueued(ctx context.Context, id uuid.UUID) error {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Debug("Queued audit was deleted", zap.String("audit_id", id.String()))
			return nil
		}
		return err
	}
	if a.Status != audit.StatusPending {
		return nil
	}
	return s.execute(ctx, a)
}

// GetAudit returns an audit by id
func (s *AuditService) GetAudit(ctx context.Context, id uuid.UUID) (*AuditDTO, error) {
	a, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := ToAuditDTO(a)
	return &dto, nil
}

// ListAudits is the admin list
func (s *AuditService) ListAudits(ctx context.Context, input ListAuditsInput) (shared.Paginated[AuditDTO], error) {
	filter := shared.DefaultFilter()
	if input.Page > 0 {
		filter.Page = input.Page
	}
	if input.PageSize > 0 && input.PageSize <= 100 {
		filter.PageSize = input.PageSize
	}
	if input.OrderBy != "" {
		filter.OrderBy = input.OrderBy
	}
	if input.OrderDir != "" {
		filter.OrderDir = input.OrderDir
	}
	filter.Search = strings.ToLower(strings.TrimSpace(input.Search))
	if input.Status != "" {
		filter.Filters[audit.FilterStatus] = strings.ToLower(input.Status)
	}
	if input.Grade != "" {
		filter.Filters[audit.FilterGrade] = strings.ToUpper(input.Grade)
	}
	if input.BatchID != nil {
		filter.Filters[audit.FilterBatch] = *input.BatchID
	}

	audits, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[AuditDTO]{}, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[AuditDTO]{}, err
	}
	items := make([]AuditDTO, len(audits))
	for i := range audits {
		items[i] = ToAuditDTO(&audits[i])
		// lists stay light
		items[i].Metrics = nil
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// DeleteAudit removes an audit
func (s *AuditService) DeleteAudit(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFound(err)
	}
	return nil
}

// execute fetches, scores and stores a pending audit
func (s *AuditService) execute(ctx context.Context, a *audit.WebsiteAudit) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "audit.execute",
		attribute.String(telemetry.SpanAttrAuditURL, a.URL),
		attribute.String(telemetry.SpanAttrDomain, a.Domain))
	defer func() { telemetry.EndSpan(span, err) }()

	started := s.now()
	metrics, err := s.fetcher.Fetch(ctx, a.URL)
	if err != nil {
		s.logger.Info("Website could not be audited",
			zap.String("audit_id", a.ID.String()),
			zap.String("domain", a.Domain),
			zap.Error(err))
		if ferr := a.Fail(err.Error(), s.now()); ferr != nil {
			return ferr
		}
		return s.repo.Save(ctx, a)
	}

	result := audit.AnalyzeWebsite(metrics)
	if err := a.Complete(metrics, result, s.now()); err != nil {
		return err
	}
	if err := s.repo.Save(ctx, a); err != nil {
		return err
	}
	if err := shared.PublishAndClear(ctx, s.publisher, a); err != nil {
		s.logger.Warn("Failed to publish audit events", zap.String("audit_id", a.ID.String()), zap.Error(err))
	}

	s.logger.Info("Website audited",
		zap.String("audit_id", a.ID.String()),
		zap.String("domain", a.Domain),
		zap.Int("overall", result.Overall),
		zap.String("grade", result.Grade),
		zap.Duration("duration", s.now().Sub(started)))
	return nil
}

func (s *AuditService) find(ctx context.Context, id uuid.UUID) (*audit.WebsiteAudit, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

func notFound(err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return shared.WrapDomainError("NOT_FOUND", "Audit not found", err)
	}
	return err
}

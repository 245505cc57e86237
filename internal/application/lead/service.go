package lead

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/webstudio/backend/internal/domain/lead"
	"github.com/webstudio/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const idempotencyPrefix = "lead:submit:"

// LeadService handles lead capture and the sales pipeline
type LeadService struct {
	repo        lead.LeadRepository
	publisher   shared.EventPublisher
	idempotency shared.IdempotencyStore
	logger      *zap.Logger
	now         func() time.Time
}

// NewLeadService creates a lead service. publisher and idempotency may be nil.
func NewLeadService(
	repo lead.LeadRepository,
	publisher shared.EventPublisher,
	idempotency shared.IdempotencyStore,
	logger *zap.Logger,
) *LeadService {
	return &LeadService{
		repo:        repo,
		publisher:   publisher,
		idempotency: idempotency,
		logger:      logger,
		now:         time.Now,
	}
}

// SubmitLead stores a public contact form submission
func (s *LeadService) SubmitLead(ctx context.Context, input SubmitLeadInput) (*SubmitResult, error) {
	if strings.TrimSpace(input.Honeypot) != "" {
		s.logger.Info("Dropped lead submission with filled honeypot",
			zap.String("source", input.Source))
		return &SubmitResult{Dropped: true}, nil
	}

	source := lead.Source(input.Source)
	if source == "" || source == lead.SourceManual || !source.IsValid() {
		source = lead.SourceContactForm
	}

	l, err := lead.NewPublicLead(lead.Contact{
		Name:    input.Name,
		Email:   input.Email,
		Phone:   input.Phone,
		Company: input.Company,
		Website: input.Website,
		Message: input.Message,
	}, source, shared.LocaleOrDefault(input.Locale), input.Consent,
		lead.WithInterest(input.ServiceInterest, input.CitySlug))
	if err != nil {
		return nil, err
	}

	// only valid submissions consume the key
	key := strings.TrimSpace(input.IdempotencyKey)
	if s.idempotency == nil {
		key = ""
	}
	if key != "" {
		fresh, err := s.idempotency.MarkProcessed(ctx, idempotencyPrefix+key, shared.DefaultIdempotencyTTL)
		switch {
		case err != nil:
			s.logger.Warn("Idempotency store unavailable, accepting submission", zap.Error(err))
			key = ""
		case !fresh:
			s.logger.Info("Duplicate lead submission ignored", zap.String("idempotency_key", key))
			return &SubmitResult{Duplicate: true}, nil
		}
	}

	if err := s.save(ctx, l); err != nil {
		s.releaseKey(ctx, key)
		return nil, err
	}

	s.logger.Info("Lead submitted",
		zap.String("lead_id", l.ID.String()),
		zap.String("source", string(l.Source)),
		zap.String("locale", string(l.Locale)))

	return &SubmitResult{LeadID: l.ID}, nil
}

// CaptureAuditLead creates a lead for a visitor who ran a public audit
func (s *LeadService) CaptureAuditLead(ctx context.Context, input AuditLeadInput) (uuid.UUID, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = input.Email
		if i := strings.IndexByte(name, '@'); i > 0 {
			name = name[:i]
		}
	}

	l, err := lead.NewPublicLead(lead.Contact{
		Name:    name,
		Email:   input.Email,
		Phone:   input.Phone,
		Company: input.Company,
		Website: input.Website,
	}, lead.SourceAudit, shared.LocaleOrDefault(input.Locale), input.Consent, lead.WithAudit(input.AuditID))
	if err != nil {
		return uuid.Nil, err
	}
	if err := s.save(ctx, l); err != nil {
		return uuid.Nil, err
	}
	return l.ID, nil
}

// CreateLead stores a lead entered by staff
func (s *LeadService) CreateLead(ctx context.Context, input CreateLeadInput) (*LeadDTO, error) {
	l, err := lead.NewLead(lead.Contact{
		Name:    input.Name,
		Email:   input.Email,
		Phone:   input.Phone,
		Company: input.Company,
		Website: input.Website,
		Message: input.Message,
	}, lead.SourceManual, shared.LocaleOrDefault(input.Locale),
		lead.WithInterest(input.ServiceInterest, input.CitySlug))
	if err != nil {
		return nil, err
	}
	// staff-entered leads do not trigger the new lead notification
	l.ClearEvents()

	if err := s.save(ctx, l); err != nil {
		return nil, err
	}
	dto := ToLeadDTO(l)
	return &dto, nil
}

// GetLead returns a lead by id
func (s *LeadService) GetLead(ctx context.Context, id uuid.UUID) (*LeadDTO, error) {
	l, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := ToLeadDTO(l)
	return &dto, nil
}

// ListLeads returns a filtered page of leads
func (s *LeadService) ListLeads(ctx context.Context, input ListLeadsInput) (shared.Paginated[LeadDTO], error) {
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
	filter.Search = input.Search
	filter.Filters["status"] = input.Status
	filter.Filters["source"] = input.Source
	filter.Filters["locale"] = input.Locale

	leads, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[LeadDTO]{}, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[LeadDTO]{}, err
	}

	items := make([]LeadDTO, len(leads))
	for i := range leads {
		items[i] = ToLeadDTO(&leads[i])
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// UpdateLead replaces the contact and interest fields
func (s *LeadService) UpdateLead(ctx context.Context, id uuid.UUID, input UpdateLeadInput) (*LeadDTO, error) {
	l, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := l.UpdateContact(lead.Contact{
		Name:    input.Name,
		Email:   input.Email,
		Phone:   input.Phone,
		Company: input.Company,
		Website: input.Website,
		Message: input.Message,
	}); err != nil {
		return nil, err
	}
	l.SetInterest(input.ServiceInterest, input.CitySlug)

	if err := s.save(ctx, l); err != nil {
		return nil, err
	}
	dto := ToLeadDTO(l)
	return &dto, nil
}

// ChangeStatus moves a lead along the pipeline
func (s *LeadService) ChangeStatus(ctx context.Context, id uuid.UUID, status string) (*LeadDTO, error) {
	l, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := l.ChangeStatus(lead.Status(strings.ToLower(strings.TrimSpace(status))), s.now()); err != nil {
		return nil, err
	}
	if err := s.save(ctx, l); err != nil {
		return nil, err
	}

	s.logger.Info("Lead status changed",
		zap.String("lead_id", id.String()),
		zap.String("status", string(l.Status)))

	dto := ToLeadDTO(l)
	return &dto, nil
}

// AppendNote adds a timestamped note line signed by author
func (s *LeadService) AppendNote(ctx context.Context, id uuid.UUID, author, note string) (*LeadDTO, error) {
	l, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := l.AppendNote(author, note, s.now()); err != nil {
		return nil, err
	}
	if err := s.save(ctx, l); err != nil {
		return nil, err
	}
	dto := ToLeadDTO(l)
	return &dto, nil
}

// DeleteLead removes a lead
func (s *LeadService) DeleteLead(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.WrapDomainError("NOT_FOUND", "Lead not found", err)
		}
		return err
	}
	s.logger.Info("Lead deleted", zap.String("lead_id", id.String()))
	return nil
}

// Stats counts leads per status. Every status is present in the result.
func (s *LeadService) Stats(ctx context.Context) (*StatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	stats := &StatsDTO{ByStatus: make(map[string]int64, len(lead.AllStatuses))}
	for _, status := range lead.AllStatuses {
		stats.ByStatus[string(status)] = counts[status]
		stats.Total += counts[status]
	}
	return stats, nil
}

// releaseKey frees the idempotency key of a submission that was not stored
func (s *LeadService) releaseKey(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.idempotency.Release(context.WithoutCancel(ctx), idempotencyPrefix+key); err != nil {
		s.logger.Warn("Failed to release idempotency key", zap.String("idempotency_key", key), zap.Error(err))
	}
}

func (s *LeadService) find(ctx context.Context, id uuid.UUID) (*lead.Lead, error) {
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.WrapDomainError("NOT_FOUND", "Lead not found", err)
		}
		return nil, err
	}
	return l, nil
}

func (s *LeadService) save(ctx context.Context, l *lead.Lead) error {
	if err := s.repo.Save(ctx, l); err != nil {
		s.logger.Error("Failed to save lead", zap.String("lead_id", l.ID.String()), zap.Error(err))
		return err
	}
	if err := shared.PublishAndClear(ctx, s.publisher, l); err != nil {
		s.logger.Warn("Failed to publish lead events", zap.String("lead_id", l.ID.String()), zap.Error(err))
	}
	return nil
}

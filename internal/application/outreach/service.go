package outreach

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	printingapp "github.com/webstudio/backend/internal/application/printing"
	"github.com/webstudio/backend/internal/domain/audit"
	"github.com/webstudio/backend/internal/domain/outreach"
	"github.com/webstudio/backend/internal/domain/shared"
	infra "github.com/webstudio/backend/internal/infrastructure/printing"
	"go.uber.org/zap"
)

// Printer turns a document template into a PDF
type Printer interface {
	PrintPDF(ctx context.Context, req printingapp.PrintRequest) (*printingapp.Document, error)
}

// GenerationRecorder counts generated messages
type GenerationRecorder interface {
	OutreachGenerated(ctx context.Context, channel, band string)
}

// OutreachService writes sales messages from audit results
type OutreachService struct {
	audits   audit.AuditRepository
	messages outreach.MessageRepository
	composer *composer
	printer  Printer
	recorder GenerationRecorder
	logger   *zap.Logger
	now      func() time.Time
}

// OutreachServiceOption configures optional collaborators
type OutreachServiceOption func(*OutreachService)

// WithPrinter enables PDF reports
func WithPrinter(p Printer) OutreachServiceOption {
	return func(s *OutreachService) { s.printer = p }
}

// WithRecorder counts generations
func WithRecorder(r GenerationRecorder) OutreachServiceOption {
	return func(s *OutreachService) { s.recorder = r }
}

// NewOutreachService creates an outreach service. agency signs the messages.
func NewOutreachService(
	audits audit.AuditRepository,
	messages outreach.MessageRepository,
	phrases Translator,
	html HTMLRenderer,
	agency infra.Party,
	logger *zap.Logger,
	opts ...OutreachServiceOption,
) *OutreachService {
	s := &OutreachService{
		audits:   audits,
		messages: messages,
		composer: &composer{phrases: phrases, html: html, agency: agency},
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate composes and stores the next message for a completed audit
func (s *OutreachService) Generate(ctx context.Context, input GenerateInput) (*MessageDTO, error) {
	channel := outreach.Channel(strings.ToLower(strings.TrimSpace(input.Channel)))
	if !channel.IsValid() {
		return nil, shared.NewDomainError("INVALID_CHANNEL", "Channel must be email, whatsapp or pdf")
	}
	a, err := s.completedAudit(ctx, input.AuditID)
	if err != nil {
		return nil, err
	}
	locale, err := s.locale(input.Locale, a)
	if err != nil {
		return nil, err
	}

	band := outreach.BandFor(a.OverallScore)
	previous, err := s.messages.CountByChannelAndBand(ctx, channel, band)
	if err != nil {
		return nil, err
	}
	variant := outreach.SelectVariant(previous, input.Variant)

	text, err := s.composer.compose(a, channel, band, variant, locale, s.now())
	if err != nil {
		return nil, err
	}
	msg, err := outreach.NewMessage(a.ID, channel, band, variant, locale, text.subject, text.body)
	if err != nil {
		return nil, err
	}
	if err := s.messages.Save(ctx, msg); err != nil {
		return nil, err
	}
	if s.recorder != nil {
		s.recorder.OutreachGenerated(ctx, string(channel), string(band))
	}

	s.logger.Info("Outreach message generated",
		zap.String("audit_id", a.ID.String()),
		zap.String("channel", string(channel)),
		zap.String("band", string(band)),
		zap.Int("variant", variant))

	dto := ToMessageDTO(msg)
	if channel == outreach.ChannelWhatsApp && a.Prospect.ContactPhone != "" {
		if link, err := outreach.WhatsAppLink(a.Prospect.ContactPhone, msg.Body); err == nil {
			dto.WhatsAppLink = link
		}
	}
	return &dto, nil
}

// ListMessages returns the messages generated for an audit, oldest first
func (s *OutreachService) ListMessages(ctx context.Context, auditID uuid.UUID) ([]MessageDTO, error) {
	if _, err := s.findAudit(ctx, auditID); err != nil {
		return nil, err
	}
	msgs, err := s.messages.FindByAudit(ctx, auditID)
	if err != nil {
		return nil, err
	}
	out := make([]MessageDTO, len(msgs))
	for i := range msgs {
		out[i] = ToMessageDTO(&msgs[i])
	}
	return out, nil
}

// RenderReportPDF prints the audit report. The variant of the latest PDF
// message in that locale is reused so the download matches what was sent.
func (s *OutreachService) RenderReportPDF(ctx context.Context, auditID uuid.UUID, locale string) (*printingapp.Document, error) {
	if s.printer == nil {
		return nil, shared.NewDomainError("INVALID_STATE", "PDF rendering is not configured")
	}
	a, err := s.completedAudit(ctx, auditID)
	if err != nil {
		return nil, err
	}
	loc, err := s.locale(locale, a)
	if err != nil {
		return nil, err
	}

	variant := 0
	msgs, err := s.messages.FindByAudit(ctx, auditID)
	if err != nil {
		return nil, err
	}
	for _, m := range msgs {
		if m.Channel == outreach.ChannelPDF && m.Locale == loc {
			variant = m.Variant
		}
	}

	doc := s.composer.report(a, outreach.BandFor(a.OverallScore), variant, loc, s.now())
	return s.printer.PrintPDF(ctx, printingapp.PrintRequest{
		Template: infra.TemplateAuditReport,
		Data:     doc,
		Title:    doc.Title(),
		Filename: doc.Title() + ".pdf",
	})
}

// WhatsAppLink builds a click-to-chat link with prefilled text
func (s *OutreachService) WhatsAppLink(input WhatsAppLinkInput) (string, error) {
	return outreach.WhatsAppLink(input.Phone, strings.TrimSpace(input.Text))
}

func (s *OutreachService) locale(requested string, a *audit.WebsiteAudit) (shared.Locale, error) {
	if strings.TrimSpace(requested) == "" {
		return a.Locale, nil
	}
	return shared.ParseLocale(requested)
}

func (s *OutreachService) completedAudit(ctx context.Context, id uuid.UUID) (*audit.WebsiteAudit, error) {
	a, err := s.findAudit(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status != audit.StatusCompleted {
		return nil, shared.NewDomainError("AUDIT_NOT_COMPLETED", "Outreach needs a completed audit")
	}
	return a, nil
}

func (s *OutreachService) findAudit(ctx context.Context, id uuid.UUID) (*audit.WebsiteAudit, error) {
	a, err := s.audits.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.WrapDomainError("NOT_FOUND", "Audit not found", err)
		}
		return nil, err
	}
	return a, nil
}

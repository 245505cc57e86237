package lead

import (
	"context"
	"fmt"
	"strings"

	"github.com/webstudio/backend/internal/domain/lead"
	"github.com/webstudio/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Notification is a staff alert about site activity
type Notification struct {
	Title  string
	Text   string
	Link   string
	Fields map[string]string
}

// Notifier delivers staff notifications (chat webhook, log)
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// SubmissionRecorder counts submitted leads
type SubmissionRecorder interface {
	LeadSubmitted(ctx context.Context, source, locale string)
}

// LeadSubmittedHandler tells staff about new leads
type LeadSubmittedHandler struct {
	notifier Notifier
	metrics  SubmissionRecorder
	adminURL string
	logger   *zap.Logger
}

// NewLeadSubmittedHandler creates the handler. adminURL is the admin panel base, e.g. https://example.cz/admin.
func NewLeadSubmittedHandler(notifier Notifier, metrics SubmissionRecorder, adminURL string, logger *zap.Logger) *LeadSubmittedHandler {
	return &LeadSubmittedHandler{
		notifier: notifier,
		metrics:  metrics,
		adminURL: strings.TrimRight(adminURL, "/"),
		logger:   logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *LeadSubmittedHandler) EventTypes() []string {
	return []string{lead.EventTypeLeadSubmitted}
}

// Handle notifies staff and counts the submission
func (h *LeadSubmittedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	submitted, ok := event.(*lead.LeadSubmittedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", lead.EventTypeLeadSubmitted),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			lead.EventTypeLeadSubmitted, event.EventType())
	}

	if h.metrics != nil {
		h.metrics.LeadSubmitted(ctx, string(submitted.Source), string(submitted.Locale))
	}
	if h.notifier == nil {
		return nil
	}

	if err := h.notifier.Notify(ctx, buildNotification(submitted, h.adminURL)); err != nil {
		h.logger.Error("Failed to send lead notification",
			zap.String("lead_id", submitted.AggregateID().String()),
			zap.Error(err))
		return err
	}
	return nil
}

func buildNotification(e *lead.LeadSubmittedEvent, adminURL string) Notification {
	who := e.Name
	if e.Company != "" {
		who += " (" + e.Company + ")"
	}

	fields := map[string]string{
		"source": string(e.Source),
		"locale": string(e.Locale),
	}
	for k, v := range map[string]string{
		"email":   e.Email,
		"phone":   e.Phone,
		"service": e.ServiceInterest,
		"message": truncateRunes(e.Message, 300),
	} {
		if v != "" {
			fields[k] = v
		}
	}

	n := Notification{
		Title:  "New lead: " + who,
		Text:   fmt.Sprintf("New %s lead from %s", e.Source, who),
		Fields: fields,
	}
	if adminURL != "" {
		n.Link = adminURL + "/leads/" + e.AggregateID().String()
	}
	return n
}

func truncateRunes(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "…"
}

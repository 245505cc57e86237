package audit

import "github.com/webstudio/backend/internal/domain/shared"

// AggregateTypeAudit is the aggregate type for audit events
const AggregateTypeAudit = "WebsiteAudit"

// EventTypeAuditCompleted is emitted when scoring finishes
const EventTypeAuditCompleted = "AuditCompleted"

// AuditCompletedEvent is published after a successful analysis
type AuditCompletedEvent struct {
	shared.EventMeta
	Domain  string `json:"domain"`
	Overall int    `json:"overall"`
	Grade   string `json:"grade"`
}

// NewAuditCompletedEvent creates a new AuditCompletedEvent
func NewAuditCompletedEvent(a *WebsiteAudit) *AuditCompletedEvent {
	return &AuditCompletedEvent{
		EventMeta: shared.NewEventMeta(EventTypeAuditCompleted, AggregateTypeAudit, a.ID),
		Domain:    a.Domain,
		Overall:   a.OverallScore,
		Grade:     a.Grade,
	}
}

package lead

import "github.com/webstudio/backend/internal/domain/shared"

// AggregateTypeLead is the aggregate type for lead events
const AggregateTypeLead = "Lead"

const (
	EventTypeLeadSubmitted     = "LeadSubmitted"
	EventTypeLeadStatusChanged = "LeadStatusChanged"
)

// LeadSubmittedEvent is published when a new lead is captured
type LeadSubmittedEvent struct {
	shared.EventMeta
	Name            string        `json:"name"`
	Email           string        `json:"email"`
	Phone           string        `json:"phone"`
	Company         string        `json:"company"`
	Message         string        `json:"message"`
	ServiceInterest string        `json:"service_interest"`
	Source          Source        `json:"source"`
	Locale          shared.Locale `json:"locale"`
}

// NewLeadSubmittedEvent creates a new LeadSubmittedEvent
func NewLeadSubmittedEvent(l *Lead) *LeadSubmittedEvent {
	return &LeadSubmittedEvent{
		EventMeta:       shared.NewEventMeta(EventTypeLeadSubmitted, AggregateTypeLead, l.ID),
		Name:            l.Name,
		Email:           l.Email,
		Phone:           l.Phone,
		Company:         l.Company,
		Message:         l.Message,
		ServiceInterest: l.ServiceInterest,
		Source:          l.Source,
		Locale:          l.Locale,
	}
}

// LeadStatusChangedEvent is published on every pipeline move
type LeadStatusChangedEvent struct {
	shared.EventMeta
	From Status `json:"from"`
	To   Status `json:"to"`
}

// NewLeadStatusChangedEvent creates a new LeadStatusChangedEvent
func NewLeadStatusChangedEvent(l *Lead, from Status) *LeadStatusChangedEvent {
	return &LeadStatusChangedEvent{
		EventMeta: shared.NewEventMeta(EventTypeLeadStatusChanged, AggregateTypeLead, l.ID),
		From:      from,
		To:        l.Status,
	}
}

package outreach

import (
	"time"

	"github.com/google/uuid"
	"github.com/webstudio/backend/internal/domain/outreach"
)

// GenerateInput asks for a message about a completed audit.
// Locale defaults to the audit's locale; Variant overrides rotation.
type GenerateInput struct {
	AuditID uuid.UUID
	Channel string
	Locale  string
	Variant *int
}

// WhatsAppLinkInput is a phone number and the prefilled text
type WhatsAppLinkInput struct {
	Phone string
	Text  string
}

// MessageDTO is a generated outreach message
type MessageDTO struct {
	ID           uuid.UUID `json:"id"`
	AuditID      uuid.UUID `json:"audit_id"`
	Channel      string    `json:"channel"`
	Band         string    `json:"band"`
	Variant      int       `json:"variant"`
	Locale       string    `json:"locale"`
	Subject      string    `json:"subject,omitempty"`
	Body         string    `json:"body"`
	WhatsAppLink string    `json:"whatsapp_link,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// ToMessageDTO converts a domain message
func ToMessageDTO(m *outreach.Message) MessageDTO {
	return MessageDTO{
		ID:        m.ID,
		AuditID:   m.AuditID,
		Channel:   string(m.Channel),
		Band:      string(m.Band),
		Variant:   m.Variant,
		Locale:    string(m.Locale),
		Subject:   m.Subject,
		Body:      m.Body,
		CreatedAt: m.CreatedAt,
	}
}

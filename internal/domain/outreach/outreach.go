package outreach

import (
	"context"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/webstudio/backend/internal/domain/shared"
)

// Channel is the medium an outreach message is written for
type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelWhatsApp Channel = "whatsapp"
	ChannelPDF      Channel = "pdf"
)

// IsValid reports whether c is a known channel
func (c Channel) IsValid() bool {
	switch c {
	case ChannelEmail, ChannelWhatsApp, ChannelPDF:
		return true
	}
	return false
}

// Band buckets audits by how much help the site needs
type Band string

const (
	BandCritical   Band = "critical"
	BandImprovable Band = "improvable"
	BandPolish     Band = "polish"
)

// VariantsPerBand is the number of alternative texts per channel and band
const VariantsPerBand = 2

// MaxWhatsAppRunes caps WhatsApp bodies
const MaxWhatsAppRunes = 1000

// BandFor picks the band for an overall audit score
func BandFor(overall int) Band {
	switch {
	case overall < 50:
		return BandCritical
	case overall < 75:
		return BandImprovable
	default:
		return BandPolish
	}
}

// SelectVariant rotates through variants: the nth message of a channel and band gets n mod count.
// A forced variant in range wins over rotation.
func SelectVariant(previous int64, forced *int) int {
	if forced != nil && *forced >= 0 && *forced < VariantsPerBand {
		return *forced
	}
	if previous < 0 {
		previous = 0
	}
	return int(previous % VariantsPerBand)
}

// Message is a generated outreach text kept for history and rotation
type Message struct {
	shared.Entity
	AuditID uuid.UUID
	Channel Channel
	Band    Band
	Variant int
	Locale  shared.Locale
	Subject string
	Body    string
}

// NewMessage records a generated message
func NewMessage(auditID uuid.UUID, channel Channel, band Band, variant int, locale shared.Locale, subject, body string) (*Message, error) {
	if !channel.IsValid() {
		return nil, shared.NewDomainError("INVALID_CHANNEL", "Channel must be email, whatsapp or pdf")
	}
	if strings.TrimSpace(body) == "" {
		return nil, shared.NewDomainError("EMPTY_BODY", "Message body is empty")
	}
	if channel == ChannelWhatsApp {
		body = TruncateAtWord(body, MaxWhatsAppRunes)
	}
	return &Message{
		Entity:  shared.NewEntity(),
		AuditID: auditID,
		Channel: channel,
		Band:    band,
		Variant: variant,
		Locale:  locale,
		Subject: subject,
		Body:    body,
	}, nil
}

// TruncateAtWord shortens s to at most max runes, cutting at whitespace and appending an ellipsis
func TruncateAtWord(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)[:max-1]
	cut := string(r)
	if i := strings.LastIndexAny(cut, " \n\t"); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " \n\t,.;:") + "…"
}

// WhatsAppLink builds a click-to-chat link. Non-digits are stripped from phone.
func WhatsAppLink(phone, text string) (string, error) {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := strings.TrimPrefix(digits.String(), "00")
	if len(d) < 8 || len(d) > 15 {
		return "", shared.NewDomainError("INVALID_PHONE", "Phone number must contain 8 to 15 digits including country code")
	}
	link := "https://wa.me/" + d
	if text != "" {
		link += "?text=" + url.QueryEscape(text)
	}
	return link, nil
}

// MessageRepository persists generated messages
type MessageRepository interface {
	Save(ctx context.Context, m *Message) error
	FindByAudit(ctx context.Context, auditID uuid.UUID) ([]Message, error)
	// CountByChannelAndBand counts all messages ever generated for a channel and band
	CountByChannelAndBand(ctx context.Context, channel Channel, band Band) (int64, error)
}

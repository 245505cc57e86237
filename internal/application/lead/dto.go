package lead

import (
	"time"

	"github.com/google/uuid"
	"github.com/webstudio/backend/internal/domain/lead"
)

// SubmitLeadInput is a contact form submission from the public site
type SubmitLeadInput struct {
	Name            string
	Email           string
	Phone           string
	Company         string
	Website         string
	Message         string
	ServiceInterest string
	CitySlug        string
	Source          string
	Locale          string
	Consent         bool
	// Honeypot is the hidden website_url2 field. Bots fill it, people do not.
	Honeypot       string
	IdempotencyKey string
}

// SubmitResult tells the caller what happened to a public submission.
// Dropped submissions look successful from the outside.
type SubmitResult struct {
	LeadID    uuid.UUID
	Duplicate bool
	Dropped   bool
}

// AuditLeadInput creates a lead from a public website audit
type AuditLeadInput struct {
	AuditID uuid.UUID
	Name    string
	Company string
	Email   string
	Phone   string
	Website string
	Locale  string
	Consent bool
}

// CreateLeadInput is a lead entered by staff
type CreateLeadInput struct {
	Name            string
	Email           string
	Phone           string
	Company         string
	Website         string
	Message         string
	ServiceInterest string
	CitySlug        string
	Locale          string
}

// UpdateLeadInput replaces contact and interest fields
type UpdateLeadInput struct {
	Name            string
	Email           string
	Phone           string
	Company         string
	Website         string
	Message         string
	ServiceInterest string
	CitySlug        string
}

// ListLeadsInput filters the admin lead list
type ListLeadsInput struct {
	Status   string
	Source   string
	Locale   string
	Search   string
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
}

// LeadDTO is the admin view of a lead
type LeadDTO struct {
	ID              uuid.UUID  `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email,omitempty"`
	Phone           string     `json:"phone,omitempty"`
	Company         string     `json:"company,omitempty"`
	Website         string     `json:"website,omitempty"`
	Message         string     `json:"message,omitempty"`
	ServiceInterest string     `json:"service_interest,omitempty"`
	CitySlug        string     `json:"city_slug,omitempty"`
	Source          string     `json:"source"`
	Locale          string     `json:"locale"`
	Status          string     `json:"status"`
	Notes           string     `json:"notes,omitempty"`
	AuditID         *uuid.UUID `json:"audit_id,omitempty"`
	ConsentGiven    bool       `json:"consent_given"`
	ContactedAt     *time.Time `json:"contacted_at,omitempty"`
	ClosedAt        *time.Time `json:"closed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	Version         int        `json:"version"`
}

// StatsDTO counts leads per pipeline status
type StatsDTO struct {
	ByStatus map[string]int64 `json:"by_status"`
	Total    int64            `json:"total"`
}

// ToLeadDTO converts a domain lead
func ToLeadDTO(l *lead.Lead) LeadDTO {
	return LeadDTO{
		ID:              l.ID,
		Name:            l.Name,
		Email:           l.Email,
		Phone:           l.Phone,
		Company:         l.Company,
		Website:         l.Website,
		Message:         l.Message,
		ServiceInterest: l.ServiceInterest,
		CitySlug:        l.CitySlug,
		Source:          string(l.Source),
		Locale:          string(l.Locale),
		Status:          string(l.Status),
		Notes:           l.Notes,
		AuditID:         l.AuditID,
		ConsentGiven:    l.ConsentGiven,
		ContactedAt:     l.ContactedAt,
		ClosedAt:        l.ClosedAt,
		CreatedAt:       l.CreatedAt,
		UpdatedAt:       l.UpdatedAt,
		Version:         l.Version,
	}
}

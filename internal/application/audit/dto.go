package audit

import (
	"time"

	"github.com/google/uuid"
	"github.com/webstudio/backend/internal/domain/audit"
)

// RunAuditInput starts an audit from the admin
type RunAuditInput struct {
	URL          string
	CompanyName  string
	ContactEmail string
	ContactPhone string
	Locale       string
}

// PublicAuditInput is the "check my website" form. Contact data is kept only with consent.
type PublicAuditInput struct {
	URL     string
	Name    string
	Company string
	Email   string
	Phone   string
	Locale  string
	Consent bool
}

// SubmitBatchInput queues audits for many prospect sites
type SubmitBatchInput struct {
	URLs   []string
	Locale string
}

// RejectedURL is a batch entry that could not be queued
type RejectedURL struct {
	URL    string `json:"url"`
	Reason string `json:"reason"`
}

// BatchResult reports what SubmitBatch queued
type BatchResult struct {
	BatchID  uuid.UUID     `json:"batch_id"`
	Queued   int           `json:"queued"`
	Audits   []AuditDTO    `json:"audits"`
	Rejected []RejectedURL `json:"rejected"`
}

// ListAuditsInput filters the audit list. Search matches the domain.
type ListAuditsInput struct {
	Search   string
	Status   string
	Grade    string
	BatchID  *uuid.UUID
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
}

// AuditDTO is an audit as returned by the API
type AuditDTO struct {
	ID               uuid.UUID          `json:"id"`
	URL              string             `json:"url"`
	Domain           string             `json:"domain"`
	Status           string             `json:"status"`
	SEOScore         int                `json:"seo_score"`
	PerformanceScore int                `json:"performance_score"`
	MobileScore      int                `json:"mobile_score"`
	OverallScore     int                `json:"overall_score"`
	Grade            string             `json:"grade,omitempty"`
	Issues           []audit.Issue      `json:"issues"`
	Metrics          *audit.PageMetrics `json:"metrics,omitempty"`
	Error            string             `json:"error,omitempty"`
	CompanyName      string             `json:"company_name,omitempty"`
	ContactEmail     string             `json:"contact_email,omitempty"`
	ContactPhone     string             `json:"contact_phone,omitempty"`
	Locale           string             `json:"locale"`
	LeadID           *uuid.UUID         `json:"lead_id,omitempty"`
	BatchID          *uuid.UUID         `json:"batch_id,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
	CompletedAt      *time.Time         `json:"completed_at,omitempty"`
}

// ToAuditDTO converts a domain audit
func ToAuditDTO(a *audit.WebsiteAudit) AuditDTO {
	issues := a.Issues
	if issues == nil {
		issues = []audit.Issue{}
	}
	return AuditDTO{
		ID:               a.ID,
		URL:              a.URL,
		Domain:           a.Domain,
		Status:           string(a.Status),
		SEOScore:         a.SEOScore,
		PerformanceScore: a.PerformanceScore,
		MobileScore:      a.MobileScore,
		OverallScore:     a.OverallScore,
		Grade:            a.Grade,
		Issues:           issues,
		Metrics:          a.Metrics,
		Error:            a.Error,
		CompanyName:      a.Prospect.CompanyName,
		ContactEmail:     a.Prospect.ContactEmail,
		ContactPhone:     a.Prospect.ContactPhone,
		Locale:           string(a.Locale),
		LeadID:           a.LeadID,
		BatchID:          a.BatchID,
		CreatedAt:        a.CreatedAt,
		CompletedAt:      a.CompletedAt,
	}
}

// toPublicDTO hides contact and internal fields from website visitors
func toPublicDTO(a *audit.WebsiteAudit) AuditDTO {
	dto := ToAuditDTO(a)
	dto.CompanyName = ""
	dto.ContactEmail = ""
	dto.ContactPhone = ""
	dto.LeadID = nil
	dto.BatchID = nil
	dto.Metrics = nil
	return dto
}

package audit

import (
	"net"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/webstudio/backend/internal/domain/shared"
)

// Status of an audit run
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Prospect is the optional contact attached to an audit
type Prospect struct {
	CompanyName  string
	ContactEmail string
	ContactPhone string
}

// WebsiteAudit is one analysis of a site, usually a prospect or a competitor
type WebsiteAudit struct {
	shared.Aggregate
	URL              string
	Domain           string
	Status           Status
	Metrics          *PageMetrics
	SEOScore         int
	PerformanceScore int
	MobileScore      int
	OverallScore     int
	Grade            string
	Issues           []Issue
	Error            string
	Prospect         Prospect
	Locale           shared.Locale
	LeadID           *uuid.UUID
	BatchID          *uuid.UUID
	CompletedAt      *time.Time
}

// NewWebsiteAudit normalizes the URL and creates a pending audit
func NewWebsiteAudit(rawURL string, locale shared.Locale, prospect Prospect) (*WebsiteAudit, error) {
	u, err := NormalizeURL(rawURL)
	if err != nil {
		return nil, err
	}
	if !locale.IsValid() {
		locale = shared.DefaultLocale
	}
	prospect.ContactEmail = strings.ToLower(strings.TrimSpace(prospect.ContactEmail))
	if prospect.ContactEmail != "" {
		if err := shared.ValidateEmail(prospect.ContactEmail); err != nil {
			return nil, err
		}
	}
	prospect.CompanyName = strings.TrimSpace(prospect.CompanyName)
	prospect.ContactPhone = strings.TrimSpace(prospect.ContactPhone)

	return &WebsiteAudit{
		Aggregate: shared.NewAggregate(),
		URL:       u.String(),
		Domain:    strings.TrimPrefix(strings.ToLower(u.Hostname()), "www."),
		Status:    StatusPending,
		Prospect:  prospect,
		Locale:    locale,
		Issues:    []Issue{},
	}, nil
}

// Complete stores metrics and the scoring result
func (a *WebsiteAudit) Complete(m PageMetrics, r Result, at time.Time) error {
	if a.Status != StatusPending {
		return shared.NewDomainError("INVALID_STATE", "Audit is not pending")
	}
	at = at.UTC()
	a.Metrics = &m
	a.SEOScore = r.SEO
	a.PerformanceScore = r.Performance
	a.MobileScore = r.Mobile
	a.OverallScore = r.Overall
	a.Grade = r.Grade
	a.Issues = r.Issues
	a.Error = ""
	a.Status = StatusCompleted
	a.CompletedAt = &at
	a.Touch()

	a.Record(NewAuditCompletedEvent(a))
	return nil
}

const maxFailureRunes = 1000

// Fail records why the site could not be analyzed
func (a *WebsiteAudit) Fail(reason string, at time.Time) error {
	if a.Status != StatusPending {
		return shared.NewDomainError("INVALID_STATE", "Audit is not pending")
	}
	at = at.UTC()
	if utf8.RuneCountInString(reason) > maxFailureRunes {
		reason = string([]rune(reason)[:maxFailureRunes])
	}
	a.Error = reason
	a.Status = StatusFailed
	a.CompletedAt = &at
	a.Touch()
	return nil
}

// Result rebuilds the scoring result of a completed audit
func (a *WebsiteAudit) Result() Result {
	return Result{
		SEO:         a.SEOScore,
		Performance: a.PerformanceScore,
		Mobile:      a.MobileScore,
		Overall:     a.OverallScore,
		Grade:       a.Grade,
		Issues:      a.Issues,
	}
}

// LinkLead ties the audit to a lead created from it
func (a *WebsiteAudit) LinkLead(id uuid.UUID) {
	a.LeadID = &id
}

// AssignBatch groups the audit with others submitted together
func (a *WebsiteAudit) AssignBatch(id uuid.UUID) {
	a.BatchID = &id
}

// NormalizeURL adds https:// when the scheme is missing and rejects non-web URLs
func NormalizeURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, shared.NewDomainError("INVALID_URL", "URL is required")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, shared.WrapDomainError("INVALID_URL", "URL cannot be parsed", err)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, shared.NewDomainError("INVALID_URL", "Only http and https URLs can be audited")
	}
	if u.User != nil {
		return nil, shared.NewDomainError("INVALID_URL", "URLs with credentials cannot be audited")
	}
	host := u.Hostname()
	if host == "" || !strings.Contains(host, ".") {
		return nil, shared.NewDomainError("INVALID_URL", "URL must contain a domain")
	}
	if ip := net.ParseIP(host); ip != nil && (ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified()) {
		return nil, shared.NewDomainError("INVALID_URL", "Private addresses cannot be audited")
	}
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""
	if u.Path == "" {
		u.Path = "/"
	}
	return u, nil
}

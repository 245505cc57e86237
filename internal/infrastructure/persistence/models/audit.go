package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/webstudio/backend/internal/domain/audit"
	"github.com/webstudio/backend/internal/domain/outreach"
	"github.com/webstudio/backend/internal/domain/shared"
)

// MetricsJSON stores collected page metrics as JSON
type MetricsJSON struct {
	Metrics *audit.PageMetrics
}

func (j MetricsJSON) Value() (driver.Value, error) {
	if j.Metrics == nil {
		return nil, nil
	}
	b, err := json.Marshal(j.Metrics)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (j *MetricsJSON) Scan(src any) error {
	if src == nil {
		j.Metrics = nil
		return nil
	}
	var m audit.PageMetrics
	if err := scanJSON(src, &m); err != nil {
		return err
	}
	j.Metrics = &m
	return nil
}

// IssueList stores analyzer issues as JSON
type IssueList []audit.Issue

func (l IssueList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]audit.Issue(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *IssueList) Scan(src any) error {
	return scanJSON(src, (*[]audit.Issue)(l))
}

// WebsiteAuditModel is the persistence model for website audits
type WebsiteAuditModel struct {
	AggregateModel
	URL              string        `gorm:"column:url;type:varchar(2000);not null"`
	Domain           string        `gorm:"type:varchar(255);not null;index"`
	Status           audit.Status  `gorm:"type:varchar(20);not null;index"`
	Metrics          MetricsJSON   `gorm:"type:text"`
	SEOScore         int           `gorm:"column:seo_score;not null;default:0"`
	PerformanceScore int           `gorm:"not null;default:0"`
	MobileScore      int           `gorm:"not null;default:0"`
	OverallScore     int           `gorm:"not null;default:0"`
	Grade            string        `gorm:"type:varchar(1);index"`
	Issues           IssueList     `gorm:"type:text"`
	Error            string        `gorm:"type:text"`
	CompanyName      string        `gorm:"type:varchar(200)"`
	ContactEmail     string        `gorm:"type:varchar(200)"`
	ContactPhone     string        `gorm:"type:varchar(50)"`
	Locale           shared.Locale `gorm:"type:varchar(5);not null"`
	LeadID           *uuid.UUID    `gorm:"type:uuid"`
	BatchID          *uuid.UUID    `gorm:"type:uuid;index"`
	CompletedAt      *time.Time
}

func (WebsiteAuditModel) TableName() string {
	return "website_audits"
}

func (m *WebsiteAuditModel) ToDomain() *audit.WebsiteAudit {
	issues := make([]audit.Issue, len(m.Issues))
	copy(issues, m.Issues)
	return &audit.WebsiteAudit{
		Aggregate:        m.ToAggregate(),
		URL:              m.URL,
		Domain:           m.Domain,
		Status:           m.Status,
		Metrics:          m.Metrics.Metrics,
		SEOScore:         m.SEOScore,
		PerformanceScore: m.PerformanceScore,
		MobileScore:      m.MobileScore,
		OverallScore:     m.OverallScore,
		Grade:            m.Grade,
		Issues:           issues,
		Error:            m.Error,
		Prospect: audit.Prospect{
			CompanyName:  m.CompanyName,
			ContactEmail: m.ContactEmail,
			ContactPhone: m.ContactPhone,
		},
		Locale:      m.Locale,
		LeadID:      m.LeadID,
		BatchID:     m.BatchID,
		CompletedAt: toUTC(m.CompletedAt),
	}
}

func WebsiteAuditModelFromDomain(a *audit.WebsiteAudit) *WebsiteAuditModel {
	m := &WebsiteAuditModel{
		URL:              a.URL,
		Domain:           a.Domain,
		Status:           a.Status,
		Metrics:          MetricsJSON{Metrics: a.Metrics},
		SEOScore:         a.SEOScore,
		PerformanceScore: a.PerformanceScore,
		MobileScore:      a.MobileScore,
		OverallScore:     a.OverallScore,
		Grade:            a.Grade,
		Issues:           IssueList(a.Issues),
		Error:            a.Error,
		CompanyName:      a.Prospect.CompanyName,
		ContactEmail:     a.Prospect.ContactEmail,
		ContactPhone:     a.Prospect.ContactPhone,
		Locale:           a.Locale,
		LeadID:           a.LeadID,
		BatchID:          a.BatchID,
		CompletedAt:      a.CompletedAt,
	}
	m.FromDomainAggregate(a.Aggregate)
	return m
}

// OutreachMessageModel stores every generated outreach message
type OutreachMessageModel struct {
	BaseModel
	AuditID uuid.UUID        `gorm:"type:uuid;not null;index"`
	Channel outreach.Channel `gorm:"type:varchar(20);not null;index:idx_outreach_channel_band"`
	Band    outreach.Band    `gorm:"type:varchar(20);not null;index:idx_outreach_channel_band"`
	Variant int              `gorm:"not null"`
	Locale  shared.Locale    `gorm:"type:varchar(5);not null"`
	Subject string           `gorm:"type:varchar(300)"`
	Body    string           `gorm:"type:text;not null"`
}

func (OutreachMessageModel) TableName() string {
	return "outreach_messages"
}

func (m *OutreachMessageModel) ToDomain() *outreach.Message {
	return &outreach.Message{
		Entity:  m.BaseModel.ToDomain(),
		AuditID: m.AuditID,
		Channel: m.Channel,
		Band:    m.Band,
		Variant: m.Variant,
		Locale:  m.Locale,
		Subject: m.Subject,
		Body:    m.Body,
	}
}

func OutreachMessageModelFromDomain(msg *outreach.Message) *OutreachMessageModel {
	m := &OutreachMessageModel{
		AuditID: msg.AuditID,
		Channel: msg.Channel,
		Band:    msg.Band,
		Variant: msg.Variant,
		Locale:  msg.Locale,
		Subject: msg.Subject,
		Body:    msg.Body,
	}
	m.FromDomainEntity(msg.Entity)
	return m
}

// All returns every model for AutoMigrate in tests
func All() []any {
	return []any{
		&UserModel{},
		&LeadModel{},
		&InvoiceModel{},
		&InvoiceItemModel{},
		&InvoiceSequenceModel{},
		&ServiceModel{},
		&PricingPackageModel{},
		&PortfolioItemModel{},
		&ContentBlockModel{},
		&PostModel{},
		&WebsiteAuditModel{},
		&OutreachMessageModel{},
	}
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/webstudio/backend/internal/domain/lead"
	"github.com/webstudio/backend/internal/domain/shared"
)

// LeadModel is the persistence model for leads
type LeadModel struct {
	AggregateModel
	Name            string        `gorm:"type:varchar(200);not null"`
	Email           string        `gorm:"type:varchar(200);index"`
	Phone           string        `gorm:"type:varchar(50)"`
	Company         string        `gorm:"type:varchar(200)"`
	Website         string        `gorm:"type:varchar(500)"`
	Message         string        `gorm:"type:text"`
	ServiceInterest string        `gorm:"type:varchar(120)"`
	CitySlug        string        `gorm:"type:varchar(120)"`
	Source          lead.Source   `gorm:"type:varchar(20);not null;index"`
	Locale          shared.Locale `gorm:"type:varchar(5);not null"`
	Status          lead.Status   `gorm:"type:varchar(20);not null;index"`
	Notes           string        `gorm:"type:text"`
	AuditID         *uuid.UUID    `gorm:"type:uuid;index"`
	ConsentGiven    bool          `gorm:"not null;default:false"`
	ContactedAt     *time.Time
	ClosedAt        *time.Time
}

func (LeadModel) TableName() string {
	return "leads"
}

func (m *LeadModel) ToDomain() *lead.Lead {
	return &lead.Lead{
		Aggregate:       m.ToAggregate(),
		Name:            m.Name,
		Email:           m.Email,
		Phone:           m.Phone,
		Company:         m.Company,
		Website:         m.Website,
		Message:         m.Message,
		ServiceInterest: m.ServiceInterest,
		CitySlug:        m.CitySlug,
		Source:          m.Source,
		Locale:          m.Locale,
		Status:          m.Status,
		Notes:           m.Notes,
		AuditID:         m.AuditID,
		ConsentGiven:    m.ConsentGiven,
		ContactedAt:     toUTC(m.ContactedAt),
		ClosedAt:        toUTC(m.ClosedAt),
	}
}

func (m *LeadModel) FromDomain(l *lead.Lead) {
	m.FromDomainAggregate(l.Aggregate)
	m.Name = l.Name
	m.Email = l.Email
	m.Phone = l.Phone
	m.Company = l.Company
	m.Website = l.Website
	m.Message = l.Message
	m.ServiceInterest = l.ServiceInterest
	m.CitySlug = l.CitySlug
	m.Source = l.Source
	m.Locale = l.Locale
	m.Status = l.Status
	m.Notes = l.Notes
	m.AuditID = l.AuditID
	m.ConsentGiven = l.ConsentGiven
	m.ContactedAt = l.ContactedAt
	m.ClosedAt = l.ClosedAt
}

func LeadModelFromDomain(l *lead.Lead) *LeadModel {
	m := &LeadModel{}
	m.FromDomain(l)
	return m
}

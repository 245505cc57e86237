package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/webstudio/backend/internal/domain/invoice"
	"github.com/webstudio/backend/internal/domain/shared"
)

// InvoiceModel is the persistence model for invoices
type InvoiceModel struct {
	AggregateModel
	Number           *string          `gorm:"type:varchar(20);uniqueIndex"`
	ClientName       string           `gorm:"type:varchar(200);not null"`
	ClientEmail      string           `gorm:"type:varchar(200)"`
	ClientAddress    string           `gorm:"type:text"`
	ClientICO        string           `gorm:"column:client_ico;type:varchar(20)"`
	ClientDIC        string           `gorm:"column:client_dic;type:varchar(20)"`
	LeadID           *uuid.UUID       `gorm:"type:uuid;index"`
	Currency         invoice.Currency `gorm:"type:varchar(3);not null"`
	Locale           shared.Locale    `gorm:"type:varchar(5);not null"`
	Status           invoice.Status   `gorm:"type:varchar(20);not null;index"`
	IssueDate        *time.Time       `gorm:"index"`
	DueDate          *time.Time       `gorm:"index"`
	PaidAt           *time.Time
	PaymentTermsDays int                `gorm:"not null;default:14"`
	Notes            string             `gorm:"type:text"`
	Items            []InvoiceItemModel `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
}

func (InvoiceModel) TableName() string {
	return "invoices"
}

// InvoiceItemModel is one invoice line
type InvoiceItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position    int             `gorm:"not null"`
	Description string          `gorm:"type:varchar(500);not null"`
	Quantity    decimal.Decimal `gorm:"type:numeric(12,3);not null"`
	Unit        string          `gorm:"type:varchar(20);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	VATRate     decimal.Decimal `gorm:"column:vat_rate;type:numeric(5,2);not null"`
}

func (InvoiceItemModel) TableName() string {
	return "invoice_items"
}

// InvoiceSequenceModel holds the last issued number per year
type InvoiceSequenceModel struct {
	Year      int `gorm:"primaryKey;autoIncrement:false"`
	LastValue int `gorm:"not null;default:0"`
}

func (InvoiceSequenceModel) TableName() string {
	return "invoice_sequences"
}

func (m *InvoiceModel) ToDomain() *invoice.Invoice {
	inv := &invoice.Invoice{
		Aggregate: m.ToAggregate(),
		Client: invoice.Client{
			Name:    m.ClientName,
			Email:   m.ClientEmail,
			Address: m.ClientAddress,
			ICO:     m.ClientICO,
			DIC:     m.ClientDIC,
		},
		LeadID:           m.LeadID,
		Currency:         m.Currency,
		Locale:           m.Locale,
		Status:           m.Status,
		IssueDate:        toUTC(m.IssueDate),
		DueDate:          toUTC(m.DueDate),
		PaidAt:           toUTC(m.PaidAt),
		PaymentTermsDays: m.PaymentTermsDays,
		Notes:            m.Notes,
		Items:            make([]invoice.Item, 0, len(m.Items)),
	}
	if m.Number != nil {
		inv.Number = *m.Number
	}
	for _, it := range m.Items {
		inv.Items = append(inv.Items, invoice.Item{
			Position:    it.Position,
			Description: it.Description,
			Quantity:    it.Quantity,
			Unit:        it.Unit,
			UnitPrice:   it.UnitPrice,
			VATRate:     it.VATRate,
		})
	}
	return inv
}

func (m *InvoiceModel) FromDomain(inv *invoice.Invoice) {
	m.FromDomainAggregate(inv.Aggregate)
	// drafts share an empty number, so store NULL to keep the unique index usable
	m.Number = nil
	if inv.Number != "" {
		n := inv.Number
		m.Number = &n
	}
	m.ClientName = inv.Client.Name
	m.ClientEmail = inv.Client.Email
	m.ClientAddress = inv.Client.Address
	m.ClientICO = inv.Client.ICO
	m.ClientDIC = inv.Client.DIC
	m.LeadID = inv.LeadID
	m.Currency = inv.Currency
	m.Locale = inv.Locale
	m.Status = inv.Status
	m.IssueDate = inv.IssueDate
	m.DueDate = inv.DueDate
	m.PaidAt = inv.PaidAt
	m.PaymentTermsDays = inv.PaymentTermsDays
	m.Notes = inv.Notes
	m.Items = make([]InvoiceItemModel, 0, len(inv.Items))
	for _, it := range inv.Items {
		m.Items = append(m.Items, InvoiceItemModel{
			ID:          uuid.New(),
			InvoiceID:   inv.ID,
			Position:    it.Position,
			Description: it.Description,
			Quantity:    it.Quantity,
			Unit:        it.Unit,
			UnitPrice:   it.UnitPrice,
			VATRate:     it.VATRate,
		})
	}
}

func InvoiceModelFromDomain(inv *invoice.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

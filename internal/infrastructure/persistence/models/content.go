package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/webstudio/backend/internal/domain/content"
	"github.com/webstudio/backend/internal/domain/shared"
)

// ServiceModel is the persistence model for services
type ServiceModel struct {
	AggregateModel
	Locale    shared.Locale `gorm:"type:varchar(5);not null;uniqueIndex:idx_services_locale_slug"`
	Slug      string        `gorm:"type:varchar(120);not null;uniqueIndex:idx_services_locale_slug"`
	Title     string        `gorm:"type:varchar(200);not null"`
	Summary   string        `gorm:"type:text"`
	Body      string        `gorm:"type:text"`
	Icon      string        `gorm:"type:varchar(100)"`
	Keywords  StringList    `gorm:"type:text"`
	SortOrder int           `gorm:"not null;default:0"`
	Published bool          `gorm:"not null;default:false;index"`
}

func (ServiceModel) TableName() string {
	return "services"
}

func (m *ServiceModel) ToDomain() *content.Service {
	return &content.Service{
		Aggregate: m.ToAggregate(),
		Locale:    m.Locale,
		Slug:      m.Slug,
		Title:     m.Title,
		Summary:   m.Summary,
		Body:      m.Body,
		Icon:      m.Icon,
		Keywords:  m.Keywords.Strings(),
		SortOrder: m.SortOrder,
		Published: m.Published,
	}
}

func ServiceModelFromDomain(s *content.Service) *ServiceModel {
	m := &ServiceModel{
		Locale:    s.Locale,
		Slug:      s.Slug,
		Title:     s.Title,
		Summary:   s.Summary,
		Body:      s.Body,
		Icon:      s.Icon,
		Keywords:  StringList(s.Keywords),
		SortOrder: s.SortOrder,
		Published: s.Published,
	}
	m.FromDomainAggregate(s.Aggregate)
	return m
}

// PricingPackageModel is the persistence model for pricing packages
type PricingPackageModel struct {
	AggregateModel
	Locale        shared.Locale         `gorm:"type:varchar(5);not null;uniqueIndex:idx_pricing_locale_slug"`
	Slug          string                `gorm:"type:varchar(120);not null;uniqueIndex:idx_pricing_locale_slug"`
	Name          string                `gorm:"type:varchar(200);not null"`
	Description   string                `gorm:"type:text"`
	Price         decimal.Decimal       `gorm:"type:numeric(14,2);not null"`
	Currency      string                `gorm:"type:varchar(3);not null"`
	BillingPeriod content.BillingPeriod `gorm:"type:varchar(20);not null"`
	Features      StringList            `gorm:"type:text"`
	Highlighted   bool                  `gorm:"not null;default:false"`
	SortOrder     int                   `gorm:"not null;default:0"`
	Published     bool                  `gorm:"not null;default:false;index"`
}

func (PricingPackageModel) TableName() string {
	return "pricing_packages"
}

func (m *PricingPackageModel) ToDomain() *content.PricingPackage {
	return &content.PricingPackage{
		Aggregate:     m.ToAggregate(),
		Locale:        m.Locale,
		Slug:          m.Slug,
		Name:          m.Name,
		Description:   m.Description,
		Price:         m.Price,
		Currency:      m.Currency,
		BillingPeriod: m.BillingPeriod,
		Features:      m.Features.Strings(),
		Highlighted:   m.Highlighted,
		SortOrder:     m.SortOrder,
		Published:     m.Published,
	}
}

func PricingPackageModelFromDomain(p *content.PricingPackage) *PricingPackageModel {
	m := &PricingPackageModel{
		Locale:        p.Locale,
		Slug:          p.Slug,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		Currency:      p.Currency,
		BillingPeriod: p.BillingPeriod,
		Features:      StringList(p.Features),
		Highlighted:   p.Highlighted,
		SortOrder:     p.SortOrder,
		Published:     p.Published,
	}
	m.FromDomainAggregate(p.Aggregate)
	return m
}

// PortfolioItemModel is the persistence model for portfolio items
type PortfolioItemModel struct {
	AggregateModel
	Locale      shared.Locale `gorm:"type:varchar(5);not null;uniqueIndex:idx_portfolio_locale_slug"`
	Slug        string        `gorm:"type:varchar(120);not null;uniqueIndex:idx_portfolio_locale_slug"`
	Title       string        `gorm:"type:varchar(200);not null"`
	ClientName  string        `gorm:"type:varchar(200)"`
	Description string        `gorm:"type:text"`
	ProjectURL  string        `gorm:"column:project_url;type:varchar(500)"`
	ImageKey    string        `gorm:"type:varchar(300)"`
	Tags        StringList    `gorm:"type:text"`
	CompletedAt *time.Time
	SortOrder   int  `gorm:"not null;default:0"`
	Published   bool `gorm:"not null;default:false;index"`
}

func (PortfolioItemModel) TableName() string {
	return "portfolio_items"
}

func (m *PortfolioItemModel) ToDomain() *content.PortfolioItem {
	return &content.PortfolioItem{
		Aggregate:   m.ToAggregate(),
		Locale:      m.Locale,
		Slug:        m.Slug,
		Title:       m.Title,
		ClientName:  m.ClientName,
		Description: m.Description,
		ProjectURL:  m.ProjectURL,
		ImageKey:    m.ImageKey,
		Tags:        m.Tags.Strings(),
		CompletedAt: toUTC(m.CompletedAt),
		SortOrder:   m.SortOrder,
		Published:   m.Published,
	}
}

func PortfolioItemModelFromDomain(p *content.PortfolioItem) *PortfolioItemModel {
	m := &PortfolioItemModel{
		Locale:      p.Locale,
		Slug:        p.Slug,
		Title:       p.Title,
		ClientName:  p.ClientName,
		Description: p.Description,
		ProjectURL:  p.ProjectURL,
		ImageKey:    p.ImageKey,
		Tags:        StringList(p.Tags),
		CompletedAt: p.CompletedAt,
		SortOrder:   p.SortOrder,
		Published:   p.Published,
	}
	m.FromDomainAggregate(p.Aggregate)
	return m
}

// ContentBlockModel is a localized text snippet keyed by a dotted name
type ContentBlockModel struct {
	BaseModel
	Key    string        `gorm:"type:varchar(200);not null;uniqueIndex:idx_blocks_key_locale"`
	Locale shared.Locale `gorm:"type:varchar(5);not null;uniqueIndex:idx_blocks_key_locale"`
	Value  string        `gorm:"type:text;not null"`
}

func (ContentBlockModel) TableName() string {
	return "content_blocks"
}

func (m *ContentBlockModel) ToDomain() *content.Block {
	return &content.Block{
		Entity: m.BaseModel.ToDomain(),
		Key:    m.Key,
		Locale: m.Locale,
		Value:  m.Value,
	}
}

func ContentBlockModelFromDomain(b *content.Block) *ContentBlockModel {
	m := &ContentBlockModel{Key: b.Key, Locale: b.Locale, Value: b.Value}
	m.FromDomainEntity(b.Entity)
	return m
}

package content

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/webstudio/backend/internal/domain/shared"
)

// BillingPeriod says how often a package price is charged
type BillingPeriod string

const (
	BillingOneTime BillingPeriod = "one_time"
	BillingMonthly BillingPeriod = "monthly"
	BillingYearly  BillingPeriod = "yearly"
)

// IsValid reports whether p is a known period
func (p BillingPeriod) IsValid() bool {
	switch p {
	case BillingOneTime, BillingMonthly, BillingYearly:
		return true
	}
	return false
}

// PricingPackage is a priced bundle on the pricing page
type PricingPackage struct {
	shared.Aggregate
	Locale        shared.Locale
	Slug          string
	Name          string
	Description   string
	Price         decimal.Decimal
	Currency      string
	BillingPeriod BillingPeriod
	Features      []string
	Highlighted   bool
	SortOrder     int
	Published     bool
}

// PricingInput carries the editable fields of a PricingPackage
type PricingInput struct {
	Slug          string
	Name          string
	Description   string
	Price         decimal.Decimal
	Currency      string
	BillingPeriod BillingPeriod
	Features      []string
	Highlighted   bool
	SortOrder     int
	Published     bool
}

// NewPricingPackage creates a package for one locale
func NewPricingPackage(locale shared.Locale, in PricingInput) (*PricingPackage, error) {
	p := &PricingPackage{Aggregate: shared.NewAggregate()}
	if err := p.apply(locale, in); err != nil {
		return nil, err
	}
	return p, nil
}

// Update replaces editable fields
func (p *PricingPackage) Update(in PricingInput) error {
	if err := p.apply(p.Locale, in); err != nil {
		return err
	}
	p.Touch()
	return nil
}

func (p *PricingPackage) apply(locale shared.Locale, in PricingInput) error {
	if !locale.IsValid() {
		return shared.NewDomainError("INVALID_LOCALE", "Unsupported locale")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Name is required")
	}
	slug, err := shared.NormalizeSlug(in.Slug, name)
	if err != nil {
		return err
	}
	if in.Price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency != "CZK" && currency != "EUR" {
		return shared.NewDomainError("INVALID_CURRENCY", "Currency must be CZK or EUR")
	}
	period := in.BillingPeriod
	if period == "" {
		period = BillingOneTime
	}
	if !period.IsValid() {
		return shared.NewDomainError("INVALID_BILLING_PERIOD", "Billing period must be one_time, monthly or yearly")
	}

	p.Locale = locale
	p.Slug = slug
	p.Name = name
	p.Description = strings.TrimSpace(in.Description)
	p.Price = in.Price.Round(2)
	p.Currency = currency
	p.BillingPeriod = period
	p.Features = cleanList(in.Features)
	p.Highlighted = in.Highlighted
	p.SortOrder = in.SortOrder
	p.Published = in.Published
	return nil
}

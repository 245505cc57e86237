package invoice

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/webstudio/backend/internal/domain/shared"
)

// Allowed Czech VAT rates in percent
var allowedVATRates = []decimal.Decimal{
	decimal.Zero,
	decimal.NewFromInt(12),
	decimal.NewFromInt(21),
}

// Item is one invoice line
type Item struct {
	Position    int
	Description string
	Quantity    decimal.Decimal
	Unit        string
	UnitPrice   decimal.Decimal
	VATRate     decimal.Decimal // percent
}

// NewItem builds and validates a line
func NewItem(description string, quantity decimal.Decimal, unit string, unitPrice, vatRate decimal.Decimal) (Item, error) {
	it := Item{
		Description: strings.TrimSpace(description),
		Quantity:    quantity,
		Unit:        strings.TrimSpace(unit),
		UnitPrice:   unitPrice,
		VATRate:     vatRate,
	}
	if it.Unit == "" {
		it.Unit = "ks"
	}
	return it, it.Validate()
}

// Validate checks line invariants
func (it Item) Validate() error {
	if it.Description == "" {
		return shared.NewDomainError("INVALID_ITEM", "Item description is required")
	}
	if !it.Quantity.IsPositive() {
		return shared.NewDomainError("INVALID_ITEM", "Item quantity must be greater than zero")
	}
	if it.UnitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_ITEM", "Item unit price cannot be negative")
	}
	for _, r := range allowedVATRates {
		if it.VATRate.Equal(r) {
			return nil
		}
	}
	return shared.NewDomainError("INVALID_VAT_RATE", "VAT rate must be 0, 12 or 21 percent")
}

// Net is quantity times unit price rounded to cents
func (it Item) Net() decimal.Decimal {
	return it.Quantity.Mul(it.UnitPrice).Round(2)
}

// VAT is the tax on the line net rounded to cents
func (it Item) VAT() decimal.Decimal {
	return it.Net().Mul(it.VATRate).Div(decimal.NewFromInt(100)).Round(2)
}

// Gross is Net plus VAT
func (it Item) Gross() decimal.Decimal {
	return it.Net().Add(it.VAT())
}

// VATLine aggregates lines sharing a VAT rate
type VATLine struct {
	Rate decimal.Decimal
	Net  decimal.Decimal
	VAT  decimal.Decimal
}

package invoice

import (
	"github.com/shopspring/decimal"
	"github.com/webstudio/backend/internal/domain/shared"
)

// AggregateTypeInvoice is the aggregate type for invoice events
const AggregateTypeInvoice = "Invoice"

const (
	EventTypeInvoiceIssued = "InvoiceIssued"
	EventTypeInvoicePaid   = "InvoicePaid"
)

// InvoiceIssuedEvent is published when a draft receives its number
type InvoiceIssuedEvent struct {
	shared.EventMeta
	Number   string          `json:"number"`
	Client   string          `json:"client"`
	Total    decimal.Decimal `json:"total"`
	Currency Currency        `json:"currency"`
}

// NewInvoiceIssuedEvent creates a new InvoiceIssuedEvent
func NewInvoiceIssuedEvent(inv *Invoice) *InvoiceIssuedEvent {
	return &InvoiceIssuedEvent{
		EventMeta: shared.NewEventMeta(EventTypeInvoiceIssued, AggregateTypeInvoice, inv.ID),
		Number:    inv.Number,
		Client:    inv.Client.Name,
		Total:     inv.Total(),
		Currency:  inv.Currency,
	}
}

// InvoicePaidEvent is published when payment is recorded
type InvoicePaidEvent struct {
	shared.EventMeta
	Number   string          `json:"number"`
	Total    decimal.Decimal `json:"total"`
	Currency Currency        `json:"currency"`
}

// NewInvoicePaidEvent creates a new InvoicePaidEvent
func NewInvoicePaidEvent(inv *Invoice) *InvoicePaidEvent {
	return &InvoicePaidEvent{
		EventMeta: shared.NewEventMeta(EventTypeInvoicePaid, AggregateTypeInvoice, inv.ID),
		Number:    inv.Number,
		Total:     inv.Total(),
		Currency:  inv.Currency,
	}
}

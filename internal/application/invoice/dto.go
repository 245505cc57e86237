package invoice

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/webstudio/backend/internal/domain/invoice"
)

// ItemInput is one invoice line as entered by staff
type ItemInput struct {
	Description string
	Quantity    decimal.Decimal
	Unit        string
	UnitPrice   decimal.Decimal
	VATRate     decimal.Decimal
}

// ClientInput is the billed party
type ClientInput struct {
	Name    string
	Email   string
	Address string
	ICO     string
	DIC     string
}

// CreateInvoiceInput creates a draft
type CreateInvoiceInput struct {
	Client           ClientInput
	LeadID           *uuid.UUID
	Currency         string
	Locale           string
	PaymentTermsDays *int
	Notes            string
	Items            []ItemInput
}

// UpdateInvoiceInput replaces the editable fields of a draft
type UpdateInvoiceInput struct {
	Client           ClientInput
	LeadID           *uuid.UUID
	Currency         string
	Locale           string
	PaymentTermsDays *int
	Notes            string
	Items            []ItemInput
}

// ListInvoicesInput filters the invoice list. From and To bound the issue date.
type ListInvoicesInput struct {
	Status   string
	Currency string
	Search   string
	From     *time.Time
	To       *time.Time
	Overdue  bool
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
}

// ItemDTO is an invoice line with computed amounts
type ItemDTO struct {
	Position    int             `json:"position"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	VATRate     decimal.Decimal `json:"vat_rate"`
	Net         decimal.Decimal `json:"net"`
	VAT         decimal.Decimal `json:"vat"`
	Gross       decimal.Decimal `json:"gross"`
}

// InvoiceDTO is the admin view of an invoice
type InvoiceDTO struct {
	ID               uuid.UUID       `json:"id"`
	Number           string          `json:"number,omitempty"`
	VariableSymbol   string          `json:"variable_symbol,omitempty"`
	ClientName       string          `json:"client_name"`
	ClientEmail      string          `json:"client_email,omitempty"`
	ClientAddress    string          `json:"client_address,omitempty"`
	ClientICO        string          `json:"client_ico,omitempty"`
	ClientDIC        string          `json:"client_dic,omitempty"`
	LeadID           *uuid.UUID      `json:"lead_id,omitempty"`
	Currency         string          `json:"currency"`
	Locale           string          `json:"locale"`
	Status           string          `json:"status"`
	IssueDate        *time.Time      `json:"issue_date,omitempty"`
	DueDate          *time.Time      `json:"due_date,omitempty"`
	PaidAt           *time.Time      `json:"paid_at,omitempty"`
	PaymentTermsDays int             `json:"payment_terms_days"`
	Overdue          bool            `json:"overdue"`
	Notes            string          `json:"notes,omitempty"`
	Items            []ItemDTO       `json:"items"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	VATTotal         decimal.Decimal `json:"vat_total"`
	Total            decimal.Decimal `json:"total"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	Version          int             `json:"version"`
}

// ToInvoiceDTO converts a domain invoice. now decides the overdue flag.
func ToInvoiceDTO(inv *invoice.Invoice, now time.Time) InvoiceDTO {
	items := make([]ItemDTO, len(inv.Items))
	for i, it := range inv.Items {
		items[i] = ItemDTO{
			Position:    it.Position,
			Description: it.Description,
			Quantity:    it.Quantity,
			Unit:        it.Unit,
			UnitPrice:   it.UnitPrice,
			VATRate:     it.VATRate,
			Net:         it.Net(),
			VAT:         it.VAT(),
			Gross:       it.Gross(),
		}
	}
	return InvoiceDTO{
		ID:               inv.ID,
		Number:           inv.Number,
		VariableSymbol:   inv.VariableSymbol(),
		ClientName:       inv.Client.Name,
		ClientEmail:      inv.Client.Email,
		ClientAddress:    inv.Client.Address,
		ClientICO:        inv.Client.ICO,
		ClientDIC:        inv.Client.DIC,
		LeadID:           inv.LeadID,
		Currency:         string(inv.Currency),
		Locale:           string(inv.Locale),
		Status:           string(inv.Status),
		IssueDate:        inv.IssueDate,
		DueDate:          inv.DueDate,
		PaidAt:           inv.PaidAt,
		PaymentTermsDays: inv.PaymentTermsDays,
		Overdue:          inv.IsOverdue(now),
		Notes:            inv.Notes,
		Items:            items,
		Subtotal:         inv.Subtotal(),
		VATTotal:         inv.VATTotal(),
		Total:            inv.Total(),
		CreatedAt:        inv.CreatedAt,
		UpdatedAt:        inv.UpdatedAt,
		Version:          inv.Version,
	}
}

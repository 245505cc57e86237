package handler

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	invoiceapp "github.com/webstudio/backend/internal/application/invoice"
)

// ============================================================================
// Invoice Request DTOs
// ============================================================================

// InvoiceItemRequest is one invoice line
// @Description Invoice line
type InvoiceItemRequest struct {
	Description string          `json:"description" binding:"required,min=1,max=500" example:"Tvorba webových stránek"`
	Quantity    decimal.Decimal `json:"quantity" swaggertype:"string" example:"1"`
	Unit        string          `json:"unit" binding:"max=20" example:"ks"`
	UnitPrice   decimal.Decimal `json:"unit_price" swaggertype:"string" example:"25000.00"`
	VATRate     decimal.Decimal `json:"vat_rate" swaggertype:"string" example:"21"`
}

// InvoiceClientRequest is the billed party
// @Description Invoice client
type InvoiceClientRequest struct {
	Name    string `json:"name" binding:"required,min=1,max=200" example:"Firma s.r.o."`
	Email   string `json:"email" binding:"omitempty,email,max=254"`
	Address string `json:"address" binding:"max=500"`
	ICO     string `json:"ico" binding:"max=20" example:"12345678"`
	DIC     string `json:"dic" binding:"max=20" example:"CZ12345678"`
}

// InvoiceRequest creates or replaces a draft invoice
// @Description Invoice draft
type InvoiceRequest struct {
	Client           InvoiceClientRequest `json:"client" binding:"required"`
	LeadID           *uuid.UUID           `json:"lead_id"`
	Currency         string               `json:"currency" binding:"omitempty,oneof=CZK EUR" example:"CZK"`
	Locale           string               `json:"locale" binding:"omitempty,locale" example:"cs"`
	PaymentTermsDays *int                 `json:"payment_terms_days" binding:"omitempty,min=0,max=365" example:"14"`
	Notes            string               `json:"notes" binding:"max=2000"`
	Items            []InvoiceItemRequest `json:"items" binding:"required,min=1,max=100,dive"`
}

// MarkPaidRequest records a payment. PaidAt defaults to now.
// @Description Payment record
type MarkPaidRequest struct {
	PaidAt *time.Time `json:"paid_at"`
}

// ListInvoicesQuery represents query parameters for listing invoices
// @Description Invoice list filters
type ListInvoicesQuery struct {
	Status   string `form:"status" binding:"omitempty,oneof=draft issued paid cancelled"`
	Currency string `form:"currency" binding:"omitempty,oneof=CZK EUR"`
	Search   string `form:"search"`
	From     string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To       string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	Overdue  bool   `form:"overdue"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

func (r InvoiceRequest) items() []invoiceapp.ItemInput {
	items := make([]invoiceapp.ItemInput, len(r.Items))
	for i, it := range r.Items {
		items[i] = invoiceapp.ItemInput{
			Description: it.Description,
			Quantity:    it.Quantity,
			Unit:        it.Unit,
			UnitPrice:   it.UnitPrice,
			VATRate:     it.VATRate,
		}
	}
	return items
}

func (r InvoiceRequest) client() invoiceapp.ClientInput {
	return invoiceapp.ClientInput{
		Name:    r.Client.Name,
		Email:   r.Client.Email,
		Address: r.Client.Address,
		ICO:     r.Client.ICO,
		DIC:     r.Client.DIC,
	}
}

// parseDay reads a YYYY-MM-DD query value. An empty value yields nil.
// to selects the end of the day.
func parseDay(value string, end bool) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return nil
	}
	if end {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t
}

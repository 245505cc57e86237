package invoice

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/webstudio/backend/internal/domain/shared"
)

// Status of an invoice
type Status string

const (
	StatusDraft     Status = "draft"
	StatusIssued    Status = "issued"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
)

// IsValid reports whether s is a known status
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusIssued, StatusPaid, StatusCancelled:
		return true
	}
	return false
}

// Currency is an ISO 4217 code accepted on invoices
type Currency string

const (
	CurrencyCZK Currency = "CZK"
	CurrencyEUR Currency = "EUR"
)

// IsValid reports whether c is an accepted currency
func (c Currency) IsValid() bool {
	return c == CurrencyCZK || c == CurrencyEUR
}

// DefaultPaymentTermsDays is used when a draft does not set its own terms
const DefaultPaymentTermsDays = 14

// Client holds the billed party
type Client struct {
	Name    string
	Email   string
	Address string
	ICO     string // company registration number
	DIC     string // VAT id
}

// Invoice is a billing document. Numbers are assigned only when it is issued.
type Invoice struct {
	shared.Aggregate
	Number           string
	Client           Client
	LeadID           *uuid.UUID
	Currency         Currency
	Locale           shared.Locale
	Status           Status
	IssueDate        *time.Time
	DueDate          *time.Time
	PaidAt           *time.Time
	PaymentTermsDays int
	Notes            string
	Items            []Item
}

// NewInvoice creates a draft invoice
func NewInvoice(client Client, currency Currency, locale shared.Locale) (*Invoice, error) {
	inv := &Invoice{
		Aggregate:        shared.NewAggregate(),
		Status:           StatusDraft,
		PaymentTermsDays: DefaultPaymentTermsDays,
		Items:            make([]Item, 0),
	}
	if err := inv.applyHeader(client, currency, locale); err != nil {
		return nil, err
	}
	return inv, nil
}

func (inv *Invoice) applyHeader(client Client, currency Currency, locale shared.Locale) error {
	client.Name = strings.TrimSpace(client.Name)
	client.Email = strings.ToLower(strings.TrimSpace(client.Email))
	client.ICO = strings.TrimSpace(client.ICO)
	client.DIC = strings.ToUpper(strings.TrimSpace(client.DIC))
	if client.Name == "" {
		return shared.NewDomainError("INVALID_CLIENT", "Client name is required")
	}
	if client.Email != "" {
		if err := shared.ValidateEmail(client.Email); err != nil {
			return err
		}
	}
	if !currency.IsValid() {
		return shared.NewDomainError("INVALID_CURRENCY", "Currency must be CZK or EUR")
	}
	if !locale.IsValid() {
		locale = shared.DefaultLocale
	}
	inv.Client = client
	inv.Currency = currency
	inv.Locale = locale
	return nil
}

func (inv *Invoice) requireDraft(action string) error {
	if inv.Status != StatusDraft {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot %s an invoice in status %s", action, inv.Status))
	}
	return nil
}

// UpdateHeader replaces client, currency and locale of a draft
func (inv *Invoice) UpdateHeader(client Client, currency Currency, locale shared.Locale) error {
	if err := inv.requireDraft("edit"); err != nil {
		return err
	}
	if err := inv.applyHeader(client, currency, locale); err != nil {
		return err
	}
	inv.Touch()
	return nil
}

// SetNotes sets the free text printed under the items
func (inv *Invoice) SetNotes(notes string) error {
	if err := inv.requireDraft("edit"); err != nil {
		return err
	}
	inv.Notes = strings.TrimSpace(notes)
	inv.Touch()
	return nil
}

// SetPaymentTerms sets the days between issue and due date
func (inv *Invoice) SetPaymentTerms(days int) error {
	if err := inv.requireDraft("edit"); err != nil {
		return err
	}
	if days < 0 || days > 365 {
		return shared.NewDomainError("INVALID_TERMS", "Payment terms must be between 0 and 365 days")
	}
	inv.PaymentTermsDays = days
	inv.Touch()
	return nil
}

// SetLead links the invoice to the lead it was won from
func (inv *Invoice) SetLead(leadID *uuid.UUID) {
	inv.LeadID = leadID
}

// ReplaceItems swaps all line items of a draft
func (inv *Invoice) ReplaceItems(items []Item) error {
	if err := inv.requireDraft("edit"); err != nil {
		return err
	}
	for i := range items {
		if err := items[i].Validate(); err != nil {
			return err
		}
		items[i].Position = i + 1
	}
	inv.Items = items
	inv.Touch()
	return nil
}

// Subtotal is the sum of line nets
func (inv *Invoice) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range inv.Items {
		sum = sum.Add(it.Net())
	}
	return sum
}

// VATTotal is the sum of line VAT amounts
func (inv *Invoice) VATTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range inv.Items {
		sum = sum.Add(it.VAT())
	}
	return sum
}

// Total is Subtotal plus VATTotal
func (inv *Invoice) Total() decimal.Decimal {
	return inv.Subtotal().Add(inv.VATTotal())
}

// VATBreakdown sums net and VAT per rate, ordered by rate ascending
func (inv *Invoice) VATBreakdown() []VATLine {
	byRate := make(map[string]*VATLine)
	order := make([]string, 0)
	for _, it := range inv.Items {
		key := it.VATRate.String()
		line, ok := byRate[key]
		if !ok {
			line = &VATLine{Rate: it.VATRate, Net: decimal.Zero, VAT: decimal.Zero}
			byRate[key] = line
			order = append(order, key)
		}
		line.Net = line.Net.Add(it.Net())
		line.VAT = line.VAT.Add(it.VAT())
	}
	out := make([]VATLine, 0, len(order))
	for _, k := range order {
		out = append(out, *byRate[k])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rate.LessThan(out[j].Rate) })
	return out
}

// Issue assigns the number and dates. number must come from the yearly sequence.
func (inv *Invoice) Issue(number string, at time.Time) error {
	if err := inv.requireDraft("issue"); err != nil {
		return err
	}
	if len(inv.Items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Cannot issue an invoice without items")
	}
	if strings.TrimSpace(number) == "" {
		return shared.NewDomainError("INVALID_NUMBER", "Invoice number is required")
	}

	issue := dateOnly(at)
	due := issue.AddDate(0, 0, inv.PaymentTermsDays)
	inv.Number = number
	inv.IssueDate = &issue
	inv.DueDate = &due
	inv.Status = StatusIssued
	inv.Touch()

	inv.Record(NewInvoiceIssuedEvent(inv))
	return nil
}

// MarkPaid records payment of an issued invoice
func (inv *Invoice) MarkPaid(at time.Time) error {
	if inv.Status != StatusIssued {
		return shared.NewDomainError("INVALID_STATE", "Only issued invoices can be marked as paid")
	}
	at = at.UTC()
	inv.PaidAt = &at
	inv.Status = StatusPaid
	inv.Touch()

	inv.Record(NewInvoicePaidEvent(inv))
	return nil
}

// Cancel voids a draft or issued invoice
func (inv *Invoice) Cancel() error {
	if inv.Status != StatusDraft && inv.Status != StatusIssued {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot cancel an invoice in status %s", inv.Status))
	}
	inv.Status = StatusCancelled
	inv.Touch()
	return nil
}

// CanDelete reports whether the invoice may be removed; issued numbers must stay in the books
func (inv *Invoice) CanDelete() error {
	return inv.requireDraft("delete")
}

// IsOverdue reports whether an issued invoice is past its due date
func (inv *Invoice) IsOverdue(now time.Time) bool {
	if inv.Status != StatusIssued || inv.DueDate == nil {
		return false
	}
	return inv.DueDate.Before(dateOnly(now))
}

// VariableSymbol is the payment reference: the digits of the number
func (inv *Invoice) VariableSymbol() string {
	var b strings.Builder
	for _, r := range inv.Number {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatNumber renders the yearly sequence as YYYY-NNNN
func FormatNumber(year, seq int) string {
	return fmt.Sprintf("%04d-%04d", year, seq)
}

func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

package printing

import (
	"fmt"
	"time"

	"github.com/webstudio/backend/internal/domain/audit"
	"github.com/webstudio/backend/internal/domain/invoice"
	"github.com/webstudio/backend/internal/domain/shared"
)

// Party is the agency or customer block printed on documents
type Party struct {
	Name      string
	LegalName string
	Address   string
	ICO       string
	DIC       string
	IBAN      string
	Email     string
	Phone     string
	Web       string
	LogoURL   string
	VATPayer  bool
}

// InvoiceDocument is the data bound to the invoice template
type InvoiceDocument struct {
	Locale   shared.Locale
	Supplier Party
	Invoice  *invoice.Invoice
}

// Title is used for the PDF metadata
func (d InvoiceDocument) Title() string {
	if d.Invoice.Number == "" {
		return "invoice-draft"
	}
	return "invoice-" + d.Invoice.Number
}

// AuditReportDocument is the data bound to the audit report template
type AuditReportDocument struct {
	Locale      shared.Locale
	Agency      Party
	Audit       *audit.WebsiteAudit
	Band        string
	Variant     int
	GeneratedAt time.Time
}

// PhraseKey builds the i18n key of a band and variant specific phrase
func (d AuditReportDocument) PhraseKey(name string) string {
	return fmt.Sprintf("outreach.pdf.%s.v%d.%s", d.Band, d.Variant, name)
}

// Title is used for the PDF metadata
func (d AuditReportDocument) Title() string {
	return "audit-" + d.Audit.Domain
}

// OutreachEmailDocument wraps composed outreach paragraphs in HTML
type OutreachEmailDocument struct {
	Locale    shared.Locale
	Subject   string
	Greeting  string
	Intro     string
	Heading   string
	Issues    []string
	Scores    string
	Closing   string
	Signature string
}

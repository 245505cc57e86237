package invoice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	printingapp "github.com/webstudio/backend/internal/application/printing"
	"github.com/webstudio/backend/internal/domain/invoice"
	"github.com/webstudio/backend/internal/domain/shared"
	infra "github.com/webstudio/backend/internal/infrastructure/printing"
	"go.uber.org/zap"
)

// Printer prints document templates to PDF
type Printer interface {
	PrintPDF(ctx context.Context, req printingapp.PrintRequest) (*printingapp.Document, error)
}

// DocumentArchive keeps copies of issued documents
type DocumentArchive interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
}

// ArchiveKey is the object key of an invoice PDF
func ArchiveKey(number string) string {
	return "invoices/" + number + ".pdf"
}

// InvoiceService manages invoices from draft to payment
type InvoiceService struct {
	repo      invoice.InvoiceRepository
	txScope   TransactionScope
	publisher shared.EventPublisher
	printer   Printer
	archive   DocumentArchive
	supplier  infra.Party
	logger    *zap.Logger
	now       func() time.Time
}

// InvoiceServiceOption configures optional collaborators
type InvoiceServiceOption func(*InvoiceService)

// WithPrinter enables PDF rendering
func WithPrinter(p Printer, supplier infra.Party) InvoiceServiceOption {
	return func(s *InvoiceService) {
		s.printer = p
		s.supplier = supplier
	}
}

// WithArchive stores rendered PDFs of numbered invoices
func WithArchive(a DocumentArchive) InvoiceServiceOption {
	return func(s *InvoiceService) { s.archive = a }
}

// WithPublisher publishes invoice events
func WithPublisher(p shared.EventPublisher) InvoiceServiceOption {
	return func(s *InvoiceService) { s.publisher = p }
}

// NewInvoiceService creates an invoice service
func NewInvoiceService(repo invoice.InvoiceRepository, txScope TransactionScope, logger *zap.Logger, opts ...InvoiceServiceOption) *InvoiceService {
	s := &InvoiceService{
		repo:    repo,
		txScope: txScope,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create stores a new draft
func (s *InvoiceService) Create(ctx context.Context, input CreateInvoiceInput) (*InvoiceDTO, error) {
	inv, err := invoice.NewInvoice(toClient(input.Client), parseCurrency(input.Currency), shared.LocaleOrDefault(input.Locale))
	if err != nil {
		return nil, err
	}
	if err := applyDraftFields(inv, input.LeadID, input.PaymentTermsDays, input.Notes, input.Items); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, inv); err != nil {
		s.logger.Error("Failed to save invoice", zap.Error(err))
		return nil, err
	}
	s.logger.Info("Invoice draft created", zap.String("invoice_id", inv.ID.String()))
	return s.dto(inv), nil
}

// Update replaces the editable fields of a draft
func (s *InvoiceService) Update(ctx context.Context, id uuid.UUID, input UpdateInvoiceInput) (*InvoiceDTO, error) {
	inv, err := s.find(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	if err := inv.UpdateHeader(toClient(input.Client), parseCurrency(input.Currency), shared.LocaleOrDefault(input.Locale)); err != nil {
		return nil, err
	}
	if err := applyDraftFields(inv, input.LeadID, input.PaymentTermsDays, input.Notes, input.Items); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, inv); err != nil {
		return nil, err
	}
	return s.dto(inv), nil
}

// Issue numbers a draft from the yearly sequence and sets its dates.
// The sequence and the save share a transaction, which keeps numbers gap-free:
// a second issuer of the same draft fails the version check on save and its
// sequence step rolls back with it.
func (s *InvoiceService) Issue(ctx context.Context, id uuid.UUID) (*InvoiceDTO, error) {
	var issued *invoice.Invoice
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		inv, err := s.find(ctx, repos.InvoiceRepo(), id)
		if err != nil {
			return err
		}
		if inv.Status != invoice.StatusDraft {
			return shared.NewDomainError("INVALID_STATE",
				fmt.Sprintf("Cannot issue an invoice in status %s", inv.Status))
		}
		if len(inv.Items) == 0 {
			return shared.NewDomainError("NO_ITEMS", "Cannot issue an invoice without items")
		}

		now := s.now().UTC()
		seq, err := repos.Sequence().Next(ctx, now.Year())
		if err != nil {
			return err
		}
		if err := inv.Issue(invoice.FormatNumber(now.Year(), seq), now); err != nil {
			return err
		}
		if err := repos.InvoiceRepo().Save(ctx, inv); err != nil {
			return err
		}
		issued = inv
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Invoice issued",
		zap.String("invoice_id", id.String()),
		zap.String("number", issued.Number),
		zap.String("total", issued.Total().StringFixed(2)))
	s.publish(ctx, issued)
	return s.dto(issued), nil
}

// MarkPaid records payment of an issued invoice
func (s *InvoiceService) MarkPaid(ctx context.Context, id uuid.UUID, paidAt *time.Time) (*InvoiceDTO, error) {
	inv, err := s.find(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	at := s.now()
	if paidAt != nil {
		at = *paidAt
	}
	if err := inv.MarkPaid(at); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, inv); err != nil {
		return nil, err
	}
	s.publish(ctx, inv)
	return s.dto(inv), nil
}

// Cancel voids a draft or issued invoice
func (s *InvoiceService) Cancel(ctx context.Context, id uuid.UUID) (*InvoiceDTO, error) {
	inv, err := s.find(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	if err := inv.Cancel(); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, inv); err != nil {
		return nil, err
	}
	s.logger.Info("Invoice cancelled", zap.String("invoice_id", id.String()), zap.String("number", inv.Number))
	return s.dto(inv), nil
}

// Delete removes a draft
func (s *InvoiceService) Delete(ctx context.Context, id uuid.UUID) error {
	inv, err := s.find(ctx, s.repo, id)
	if err != nil {
		return err
	}
	if err := inv.CanDelete(); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// Get returns an invoice by id
func (s *InvoiceService) Get(ctx context.Context, id uuid.UUID) (*InvoiceDTO, error) {
	inv, err := s.find(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	return s.dto(inv), nil
}

// List returns a filtered page of invoices
func (s *InvoiceService) List(ctx context.Context, input ListInvoicesInput) (shared.Paginated[InvoiceDTO], error) {
	filter := shared.DefaultFilter()
	if input.Page > 0 {
		filter.Page = input.Page
	}
	if input.PageSize > 0 && input.PageSize <= 100 {
		filter.PageSize = input.PageSize
	}
	if input.OrderBy != "" {
		filter.OrderBy = input.OrderBy
	}
	if input.OrderDir != "" {
		filter.OrderDir = input.OrderDir
	}
	filter.Search = input.Search
	if input.Status != "" {
		filter.Filters[invoice.FilterStatus] = strings.ToLower(input.Status)
	}
	if input.Currency != "" {
		filter.Filters[invoice.FilterCurrency] = strings.ToUpper(input.Currency)
	}
	if input.From != nil {
		filter.Filters[invoice.FilterFrom] = *input.From
	}
	if input.To != nil {
		filter.Filters[invoice.FilterTo] = *input.To
	}
	if input.Overdue {
		filter.Filters[invoice.FilterOverdueAt] = invoice.OverdueFilterValue(s.now())
	}

	invoices, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[InvoiceDTO]{}, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[InvoiceDTO]{}, err
	}

	now := s.now()
	items := make([]InvoiceDTO, len(invoices))
	for i := range invoices {
		items[i] = ToInvoiceDTO(&invoices[i], now)
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// RenderPDF prints an invoice. Numbered invoices are also archived when an archive is configured.
func (s *InvoiceService) RenderPDF(ctx context.Context, id uuid.UUID) (*printingapp.Document, error) {
	if s.printer == nil {
		return nil, shared.NewDomainError("INVALID_STATE", "PDF rendering is not configured")
	}
	inv, err := s.find(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}

	data := infra.InvoiceDocument{Locale: inv.Locale, Supplier: s.supplier, Invoice: inv}
	doc, err := s.printer.PrintPDF(ctx, printingapp.PrintRequest{
		Template: infra.TemplateInvoice,
		Data:     data,
		Title:    data.Title(),
	})
	if err != nil {
		return nil, err
	}

	if s.archive != nil && inv.Number != "" {
		if err := s.archive.Upload(ctx, ArchiveKey(inv.Number), doc.Data, doc.ContentType); err != nil {
			// the caller still gets the document
			s.logger.Error("Failed to archive invoice PDF",
				zap.String("number", inv.Number),
				zap.Error(err))
		}
	}
	return doc, nil
}

func (s *InvoiceService) find(ctx context.Context, repo invoice.InvoiceRepository, id uuid.UUID) (*invoice.Invoice, error) {
	inv, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.WrapDomainError("NOT_FOUND", "Invoice not found", err)
		}
		return nil, err
	}
	return inv, nil
}

func (s *InvoiceService) publish(ctx context.Context, inv *invoice.Invoice) {
	if err := shared.PublishAndClear(ctx, s.publisher, inv); err != nil {
		s.logger.Warn("Failed to publish invoice events", zap.String("invoice_id", inv.ID.String()), zap.Error(err))
	}
}

func (s *InvoiceService) dto(inv *invoice.Invoice) *InvoiceDTO {
	dto := ToInvoiceDTO(inv, s.now())
	return &dto
}

func applyDraftFields(inv *invoice.Invoice, leadID *uuid.UUID, terms *int, notes string, inputs []ItemInput) error {
	inv.SetLead(leadID)
	if terms != nil {
		if err := inv.SetPaymentTerms(*terms); err != nil {
			return err
		}
	}
	if err := inv.SetNotes(notes); err != nil {
		return err
	}

	items := make([]invoice.Item, 0, len(inputs))
	for _, in := range inputs {
		item, err := invoice.NewItem(in.Description, in.Quantity, in.Unit, in.UnitPrice, in.VATRate)
		if err != nil {
			return err
		}
		items = append(items, item)
	}
	return inv.ReplaceItems(items)
}

func toClient(c ClientInput) invoice.Client {
	return invoice.Client{
		Name:    c.Name,
		Email:   c.Email,
		Address: strings.TrimSpace(c.Address),
		ICO:     c.ICO,
		DIC:     c.DIC,
	}
}

func parseCurrency(s string) invoice.Currency {
	if s == "" {
		return invoice.CurrencyCZK
	}
	return invoice.Currency(strings.ToUpper(strings.TrimSpace(s)))
}

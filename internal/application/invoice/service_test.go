package invoice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	printingapp "github.com/webstudio/backend/internal/application/printing"
	"github.com/webstudio/backend/internal/domain/invoice"
	"github.com/webstudio/backend/internal/domain/shared"
	infra "github.com/webstudio/backend/internal/infrastructure/printing"
	"go.uber.org/zap"
)

type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoice.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByNumber(ctx context.Context, number string) (*invoice.Invoice, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoice.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]invoice.Invoice, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]invoice.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, inv *invoice.Invoice) error {
	return m.Called(ctx, inv).Error(0)
}

func (m *MockInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockNumberSequence struct {
	mock.Mock
}

func (m *MockNumberSequence) Next(ctx context.Context, year int) (int, error) {
	args := m.Called(ctx, year)
	return args.Int(0), args.Error(1)
}

type MockPrinter struct {
	mock.Mock
}

func (m *MockPrinter) PrintPDF(ctx context.Context, req printingapp.PrintRequest) (*printingapp.Document, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*printingapp.Document), args.Error(1)
}

type MockArchive struct {
	mock.Mock
}

func (m *MockArchive) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	return m.Called(ctx, key, data, contentType).Error(0)
}

// fakeTxScope runs the callback directly against the mocks
type fakeTxScope struct {
	repo *MockInvoiceRepository
	seq  *MockNumberSequence
}

func (f *fakeTxScope) Execute(ctx context.Context, fn func(TransactionalRepositories) error) error {
	return fn(f)
}

func (f *fakeTxScope) InvoiceRepo() invoice.InvoiceRepository { return f.repo }
func (f *fakeTxScope) Sequence() invoice.NumberSequence       { return f.seq }

type recordingPublisher struct {
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestService(opts ...InvoiceServiceOption) (*InvoiceService, *MockInvoiceRepository, *MockNumberSequence) {
	repo := new(MockInvoiceRepository)
	seq := new(MockNumberSequence)
	svc := NewInvoiceService(repo, &fakeTxScope{repo: repo, seq: seq}, zap.NewNop(), opts...)
	svc.now = func() time.Time { return fixedNow }
	return svc, repo, seq
}

func draftInput() CreateInvoiceInput {
	return CreateInvoiceInput{
		Client:   ClientInput{Name: "Kavárna U Mostu s.r.o.", Email: "info@umostu.cz", ICO: "12345678"},
		Currency: "czk",
		Locale:   "cs",
		Items: []ItemInput{
			{Description: "Webdesign", Quantity: decimal.NewFromInt(1), Unit: "ks", UnitPrice: decimal.NewFromInt(20000), VATRate: decimal.NewFromInt(21)},
			{Description: "Hosting", Quantity: decimal.NewFromInt(12), Unit: "měs", UnitPrice: decimal.NewFromInt(100), VATRate: decimal.NewFromInt(21)},
		},
	}
}

func newDraft(t *testing.T) *invoice.Invoice {
	t.Helper()
	inv, err := invoice.NewInvoice(invoice.Client{Name: "Bäckerei Müller"}, invoice.CurrencyEUR, shared.LocaleDE)
	require.NoError(t, err)
	item, err := invoice.NewItem("Landing page", decimal.NewFromInt(1), "Stk", decimal.NewFromInt(900), decimal.NewFromInt(21))
	require.NoError(t, err)
	require.NoError(t, inv.ReplaceItems([]invoice.Item{item}))
	return inv
}

func TestInvoiceService_Create(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.On("Save", mock.Anything, mock.AnythingOfType("*invoice.Invoice")).Return(nil)

	dto, err := svc.Create(context.Background(), draftInput())
	require.NoError(t, err)

	assert.Equal(t, "draft", dto.Status)
	assert.Equal(t, "CZK", dto.Currency)
	assert.Empty(t, dto.Number)
	require.Len(t, dto.Items, 2)
	assert.True(t, decimal.NewFromInt(21200).Equal(dto.Subtotal))
	assert.True(t, decimal.NewFromInt(25652).Equal(dto.Total))
}

func TestInvoiceService_Create_InvalidItem(t *testing.T) {
	svc, repo, _ := newTestService()

	input := draftInput()
	input.Items[0].Quantity = decimal.Zero
	_, err := svc.Create(context.Background(), input)
	require.Error(t, err)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestInvoiceService_Issue(t *testing.T) {
	pub := &recordingPublisher{}
	svc, repo, seq := newTestService(WithPublisher(pub))
	inv := newDraft(t)

	repo.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)
	seq.On("Next", mock.Anything, 2026).Return(7, nil)
	repo.On("Save", mock.Anything, inv).Return(nil)

	dto, err := svc.Issue(context.Background(), inv.ID)
	require.NoError(t, err)

	assert.Equal(t, "2026-0007", dto.Number)
	assert.Equal(t, "20260007", dto.VariableSymbol)
	assert.Equal(t, "issued", dto.Status)
	require.NotNil(t, dto.DueDate)
	assert.Equal(t, time.Date(2026, 3, 28, 0, 0, 0, 0, time.UTC), dto.DueDate.UTC())
	require.Len(t, pub.events, 1)
	assert.Equal(t, invoice.EventTypeInvoiceIssued, pub.events[0].EventType())
}

func TestInvoiceService_Issue_NoItemsDoesNotConsumeNumber(t *testing.T) {
	svc, repo, seq := newTestService()
	inv, err := invoice.NewInvoice(invoice.Client{Name: "Empty"}, invoice.CurrencyCZK, shared.LocaleCS)
	require.NoError(t, err)

	repo.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)

	_, err = svc.Issue(context.Background(), inv.ID)
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "NO_ITEMS", de.Code)
	seq.AssertNotCalled(t, "Next", mock.Anything, mock.Anything)
}

func TestInvoiceService_Issue_AlreadyIssued(t *testing.T) {
	svc, repo, seq := newTestService()
	inv := newDraft(t)
	require.NoError(t, inv.Issue("2026-0001", fixedNow))

	repo.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)

	_, err := svc.Issue(context.Background(), inv.ID)
	assert.ErrorIs(t, err, shared.ErrInvalidState)
	seq.AssertNotCalled(t, "Next", mock.Anything, mock.Anything)
}

func TestInvoiceService_Issue_SaveFailure(t *testing.T) {
	pub := &recordingPublisher{}
	svc, repo, seq := newTestService(WithPublisher(pub))
	inv := newDraft(t)

	repo.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)
	seq.On("Next", mock.Anything, 2026).Return(1, nil)
	repo.On("Save", mock.Anything, inv).Return(errors.New("db down"))

	_, err := svc.Issue(context.Background(), inv.ID)
	require.Error(t, err)
	assert.Empty(t, pub.events)
}

func TestInvoiceService_NotFound(t *testing.T) {
	svc, repo, _ := newTestService()
	id := uuid.New()
	repo.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

	_, err := svc.Get(context.Background(), id)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestInvoiceService_MarkPaid(t *testing.T) {
	pub := &recordingPublisher{}
	svc, repo, _ := newTestService(WithPublisher(pub))
	inv := newDraft(t)
	require.NoError(t, inv.Issue("2026-0002", fixedNow))
	inv.ClearEvents()

	repo.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)
	repo.On("Save", mock.Anything, inv).Return(nil)

	dto, err := svc.MarkPaid(context.Background(), inv.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "paid", dto.Status)
	require.NotNil(t, dto.PaidAt)
	assert.Equal(t, fixedNow, *dto.PaidAt)
	require.Len(t, pub.events, 1)
	assert.Equal(t, invoice.EventTypeInvoicePaid, pub.events[0].EventType())

	_, err = svc.MarkPaid(context.Background(), inv.ID, nil)
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestInvoiceService_CancelAndDelete(t *testing.T) {
	svc, repo, _ := newTestService()
	draft := newDraft(t)
	issued := newDraft(t)
	require.NoError(t, issued.Issue("2026-0003", fixedNow))

	repo.On("FindByID", mock.Anything, draft.ID).Return(draft, nil)
	repo.On("FindByID", mock.Anything, issued.ID).Return(issued, nil)
	repo.On("Delete", mock.Anything, draft.ID).Return(nil)
	repo.On("Save", mock.Anything, issued).Return(nil)

	require.NoError(t, svc.Delete(context.Background(), draft.ID))

	err := svc.Delete(context.Background(), issued.ID)
	assert.ErrorIs(t, err, shared.ErrInvalidState)
	repo.AssertNotCalled(t, "Delete", mock.Anything, issued.ID)

	dto, err := svc.Cancel(context.Background(), issued.ID)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", dto.Status)
	assert.Equal(t, "2026-0003", dto.Number)
}

func TestInvoiceService_List(t *testing.T) {
	svc, repo, _ := newTestService()
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	repo.On("FindAll", mock.Anything, mock.MatchedBy(func(f shared.Filter) bool {
		_, hasTo := f.Filters[invoice.FilterTo]
		return f.Filters[invoice.FilterStatus] == "issued" &&
			f.Filters[invoice.FilterFrom] == from &&
			!hasTo &&
			f.Filters[invoice.FilterOverdueAt] == time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC) &&
			f.PageSize == 20
	})).Return([]invoice.Invoice{*newDraft(t)}, nil)
	repo.On("Count", mock.Anything, mock.Anything).Return(int64(1), nil)

	result, err := svc.List(context.Background(), ListInvoicesInput{
		Status:   "Issued",
		From:     &from,
		Overdue:  true,
		PageSize: 500,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Total)
	assert.Len(t, result.Items, 1)
}

func TestInvoiceService_RenderPDF(t *testing.T) {
	supplier := infra.Party{Name: "Webstudio"}

	t.Run("archives numbered invoices", func(t *testing.T) {
		printer := new(MockPrinter)
		archive := new(MockArchive)
		svc, repo, _ := newTestService(WithPrinter(printer, supplier), WithArchive(archive))
		inv := newDraft(t)
		require.NoError(t, inv.Issue("2026-0004", fixedNow))

		doc := &printingapp.Document{Filename: "Rechnung-2026-0004.pdf", ContentType: printingapp.ContentTypePDF, Data: []byte("%PDF-1.4")}
		repo.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)
		printer.On("PrintPDF", mock.Anything, mock.MatchedBy(func(req printingapp.PrintRequest) bool {
			data, ok := req.Data.(infra.InvoiceDocument)
			return ok && req.Template == infra.TemplateInvoice && data.Supplier.Name == "Webstudio" && data.Invoice == inv
		})).Return(doc, nil)
		archive.On("Upload", mock.Anything, "invoices/2026-0004.pdf", doc.Data, printingapp.ContentTypePDF).Return(nil)

		got, err := svc.RenderPDF(context.Background(), inv.ID)
		require.NoError(t, err)
		assert.Same(t, doc, got)
		archive.AssertExpectations(t)
	})

	t.Run("archive failure still returns document", func(t *testing.T) {
		printer := new(MockPrinter)
		archive := new(MockArchive)
		svc, repo, _ := newTestService(WithPrinter(printer, supplier), WithArchive(archive))
		inv := newDraft(t)
		require.NoError(t, inv.Issue("2026-0005", fixedNow))

		doc := &printingapp.Document{Data: []byte("%PDF"), ContentType: printingapp.ContentTypePDF}
		repo.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)
		printer.On("PrintPDF", mock.Anything, mock.Anything).Return(doc, nil)
		archive.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("s3 down"))

		got, err := svc.RenderPDF(context.Background(), inv.ID)
		require.NoError(t, err)
		assert.Same(t, doc, got)
	})

	t.Run("drafts are not archived", func(t *testing.T) {
		printer := new(MockPrinter)
		archive := new(MockArchive)
		svc, repo, _ := newTestService(WithPrinter(printer, supplier), WithArchive(archive))
		inv := newDraft(t)

		repo.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)
		printer.On("PrintPDF", mock.Anything, mock.Anything).Return(&printingapp.Document{}, nil)

		_, err := svc.RenderPDF(context.Background(), inv.ID)
		require.NoError(t, err)
		archive.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("no printer", func(t *testing.T) {
		svc, _, _ := newTestService()
		_, err := svc.RenderPDF(context.Background(), uuid.New())
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})
}

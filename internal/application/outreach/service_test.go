package outreach

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	printingapp "github.com/webstudio/backend/internal/application/printing"
	"github.com/webstudio/backend/internal/domain/audit"
	"github.com/webstudio/backend/internal/domain/outreach"
	"github.com/webstudio/backend/internal/domain/shared"
	"github.com/webstudio/backend/internal/infrastructure/i18n"
	infra "github.com/webstudio/backend/internal/infrastructure/printing"
	"go.uber.org/zap"
)

type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) FindByID(ctx context.Context, id uuid.UUID) (*audit.WebsiteAudit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*audit.WebsiteAudit), args.Error(1)
}

func (m *MockAuditRepository) FindAll(ctx context.Context, filter shared.Filter) ([]audit.WebsiteAudit, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]audit.WebsiteAudit), args.Error(1)
}

func (m *MockAuditRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAuditRepository) Save(ctx context.Context, a *audit.WebsiteAudit) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockAuditRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) Save(ctx context.Context, msg *outreach.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *MockMessageRepository) FindByAudit(ctx context.Context, auditID uuid.UUID) ([]outreach.Message, error) {
	args := m.Called(ctx, auditID)
	return args.Get(0).([]outreach.Message), args.Error(1)
}

func (m *MockMessageRepository) CountByChannelAndBand(ctx context.Context, channel outreach.Channel, band outreach.Band) (int64, error) {
	args := m.Called(ctx, channel, band)
	return args.Get(0).(int64), args.Error(1)
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

type countingRecorder struct {
	channels []string
}

func (r *countingRecorder) OutreachGenerated(_ context.Context, channel, _ string) {
	r.channels = append(r.channels, channel)
}

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

var testAgency = infra.Party{
	Name:  "Webové studio",
	Email: "ahoj@webstudio.test",
	Phone: "+420 777 000 111",
}

type fixture struct {
	svc      *OutreachService
	audits   *MockAuditRepository
	messages *MockMessageRepository
	printer  *MockPrinter
	recorder *countingRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	bundle := i18n.MustLoad()
	engine, err := infra.NewTemplateEngine(bundle)
	require.NoError(t, err)

	f := &fixture{
		audits:   new(MockAuditRepository),
		messages: new(MockMessageRepository),
		printer:  new(MockPrinter),
		recorder: &countingRecorder{},
	}
	f.svc = NewOutreachService(f.audits, f.messages, bundle, engine, testAgency, zap.NewNop(),
		WithPrinter(f.printer), WithRecorder(f.recorder))
	f.svc.now = func() time.Time { return fixedNow }
	return f
}

// criticalAudit scores 40/100 with two findings
func criticalAudit(t *testing.T) *audit.WebsiteAudit {
	t.Helper()
	a, err := audit.NewWebsiteAudit("example.com", shared.LocaleCS, audit.Prospect{
		CompanyName:  "Example",
		ContactPhone: "+420 777 123 456",
	})
	require.NoError(t, err)
	require.NoError(t, a.Complete(audit.PageMetrics{StatusCode: 200}, audit.Result{
		SEO:         40,
		Performance: 45,
		Mobile:      30,
		Overall:     40,
		Grade:       "E",
		Issues: []audit.Issue{
			{Category: audit.CategoryMobile, Code: "missing_viewport", Points: 25},
			{Category: audit.CategorySEO, Code: "missing_title", Points: 20},
		},
	}, fixedNow))
	return a
}

func TestOutreachService_GenerateEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := criticalAudit(t)

	f.audits.On("FindByID", ctx, a.ID).Return(a, nil)
	f.messages.On("CountByChannelAndBand", ctx, outreach.ChannelEmail, outreach.BandCritical).Return(int64(3), nil)
	f.messages.On("Save", ctx, mock.AnythingOfType("*outreach.Message")).Return(nil)

	msg, err := f.svc.Generate(ctx, GenerateInput{AuditID: a.ID, Channel: "Email"})
	require.NoError(t, err)

	assert.Equal(t, "email", msg.Channel)
	assert.Equal(t, "critical", msg.Band)
	assert.Equal(t, 1, msg.Variant, "fourth message rotates to the second variant")
	assert.Equal(t, "cs", msg.Locale)
	assert.Equal(t, "Audit webu example.com zdarma: 40/100", msg.Subject)
	assert.Contains(t, msg.Body, "Dobrý den, tým Example,")
	assert.Contains(t, msg.Body, "<li>Web není přizpůsobený mobilním telefonům.</li>")
	assert.Contains(t, msg.Body, "<li>Stránka nemá titulek (title).</li>")
	assert.Contains(t, msg.Body, "SEO 40/100")
	assert.Contains(t, msg.Body, "ahoj@webstudio.test")
	assert.NotContains(t, msg.Body, "outreach.")
	assert.Empty(t, msg.WhatsAppLink)
	assert.Equal(t, []string{"email"}, f.recorder.channels)
	f.messages.AssertExpectations(t)
}

func TestOutreachService_GenerateWhatsApp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := criticalAudit(t)

	f.audits.On("FindByID", ctx, a.ID).Return(a, nil)
	f.messages.On("CountByChannelAndBand", ctx, outreach.ChannelWhatsApp, outreach.BandCritical).Return(int64(1), nil)
	f.messages.On("Save", ctx, mock.Anything).Return(nil)

	forced := 0
	msg, err := f.svc.Generate(ctx, GenerateInput{AuditID: a.ID, Channel: "whatsapp", Locale: "de", Variant: &forced})
	require.NoError(t, err)

	assert.Equal(t, 0, msg.Variant)
	assert.Equal(t, "de", msg.Locale)
	assert.Empty(t, msg.Subject)
	assert.Contains(t, msg.Body, "example.com")
	assert.Contains(t, msg.Body, "40/100")
	assert.NotContains(t, msg.Body, "{top_issue}")
	assert.Contains(t, msg.WhatsAppLink, "https://wa.me/420777123456?text=")
}

func TestOutreachService_GeneratePDFMessage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := criticalAudit(t)

	f.audits.On("FindByID", ctx, a.ID).Return(a, nil)
	f.messages.On("CountByChannelAndBand", ctx, outreach.ChannelPDF, outreach.BandCritical).Return(int64(0), nil)
	f.messages.On("Save", ctx, mock.Anything).Return(nil)

	msg, err := f.svc.Generate(ctx, GenerateInput{AuditID: a.ID, Channel: "pdf", Locale: "en"})
	require.NoError(t, err)

	assert.Contains(t, msg.Subject, "example.com")
	assert.Contains(t, msg.Body, "<html")
	assert.NotContains(t, msg.Body, "audit.issue.")
}

func TestOutreachService_GenerateRejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Generate(ctx, GenerateInput{AuditID: uuid.New(), Channel: "sms"})
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "INVALID_CHANNEL", de.Code)

	pending, err := audit.NewWebsiteAudit("example.com", shared.LocaleCS, audit.Prospect{})
	require.NoError(t, err)
	f.audits.On("FindByID", ctx, pending.ID).Return(pending, nil)
	_, err = f.svc.Generate(ctx, GenerateInput{AuditID: pending.ID, Channel: "email"})
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "AUDIT_NOT_COMPLETED", de.Code)

	missing := uuid.New()
	f.audits.On("FindByID", ctx, missing).Return(nil, shared.ErrNotFound)
	_, err = f.svc.Generate(ctx, GenerateInput{AuditID: missing, Channel: "email"})
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "NOT_FOUND", de.Code)

	a := criticalAudit(t)
	f.audits.On("FindByID", ctx, a.ID).Return(a, nil)
	_, err = f.svc.Generate(ctx, GenerateInput{AuditID: a.ID, Channel: "email", Locale: "fr"})
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "INVALID_LOCALE", de.Code)

	f.messages.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestOutreachService_ListMessages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := criticalAudit(t)

	m, err := outreach.NewMessage(a.ID, outreach.ChannelEmail, outreach.BandCritical, 1, shared.LocaleCS, "s", "body")
	require.NoError(t, err)
	f.audits.On("FindByID", ctx, a.ID).Return(a, nil)
	f.messages.On("FindByAudit", ctx, a.ID).Return([]outreach.Message{*m}, nil)

	list, err := f.svc.ListMessages(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, m.ID, list[0].ID)
	assert.Equal(t, "email", list[0].Channel)
}

func TestOutreachService_RenderReportPDF(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := criticalAudit(t)

	first, err := outreach.NewMessage(a.ID, outreach.ChannelPDF, outreach.BandCritical, 0, shared.LocaleCS, "s", "b")
	require.NoError(t, err)
	latest, err := outreach.NewMessage(a.ID, outreach.ChannelPDF, outreach.BandCritical, 1, shared.LocaleCS, "s", "b")
	require.NoError(t, err)
	other, err := outreach.NewMessage(a.ID, outreach.ChannelPDF, outreach.BandCritical, 0, shared.LocaleDE, "s", "b")
	require.NoError(t, err)

	f.audits.On("FindByID", ctx, a.ID).Return(a, nil)
	f.messages.On("FindByAudit", ctx, a.ID).Return([]outreach.Message{*first, *latest, *other}, nil)
	f.printer.On("PrintPDF", ctx, mock.MatchedBy(func(req printingapp.PrintRequest) bool {
		doc, ok := req.Data.(infra.AuditReportDocument)
		return ok && req.Template == infra.TemplateAuditReport &&
			doc.Variant == 1 && doc.Band == "critical" && doc.Locale == shared.LocaleCS &&
			doc.Agency.Name == testAgency.Name && doc.GeneratedAt.Equal(fixedNow) &&
			req.Filename == "audit-example.com.pdf"
	})).Return(&printingapp.Document{Filename: "audit-example.com.pdf", ContentType: "application/pdf", Data: []byte("%PDF")}, nil)

	doc, err := f.svc.RenderReportPDF(ctx, a.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "audit-example.com.pdf", doc.Filename)
	f.printer.AssertExpectations(t)
}

func TestOutreachService_RenderReportPDF_NoPrinter(t *testing.T) {
	svc := NewOutreachService(new(MockAuditRepository), new(MockMessageRepository), i18n.MustLoad(), nil, testAgency, zap.NewNop())

	_, err := svc.RenderReportPDF(context.Background(), uuid.New(), "cs")
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "INVALID_STATE", de.Code)
}

func TestOutreachService_WhatsAppLink(t *testing.T) {
	f := newFixture(t)

	link, err := f.svc.WhatsAppLink(WhatsAppLinkInput{Phone: "+49 151 2345678", Text: " Hallo "})
	require.NoError(t, err)
	assert.Equal(t, "https://wa.me/491512345678?text=Hallo", link)

	_, err = f.svc.WhatsAppLink(WhatsAppLinkInput{Phone: "12"})
	assert.Error(t, err)
}

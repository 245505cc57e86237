package handler

import (
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	invoiceapp "github.com/webstudio/backend/internal/application/invoice"
	"github.com/webstudio/backend/internal/domain/identity"
	"github.com/webstudio/backend/internal/infrastructure/persistence"
	"github.com/webstudio/backend/internal/interfaces/http/dto"
	"github.com/webstudio/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

func newInvoiceRouter(t *testing.T, role identity.Role) *gin.Engine {
	t.Helper()
	db := newTestDB(t)
	svc := invoiceapp.NewInvoiceService(persistence.NewGormInvoiceRepository(db), persistence.NewGormTransactionScope(db), zap.NewNop())
	h := NewInvoiceHandler(svc, zap.NewNop())

	user, _ := asUser(role)
	router := gin.New()
	g := router.Group("/admin/invoices", user, middleware.RequireResource("invoice"))
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.POST("/:id/issue", h.Issue)
	g.POST("/:id/pay", h.MarkPaid)
	g.POST("/:id/cancel", h.Cancel)
	g.GET("/:id/pdf", h.PDF)
	return router
}

func webInvoice() InvoiceRequest {
	return InvoiceRequest{
		Client: InvoiceClientRequest{Name: "Pekárna Svoboda s.r.o.", ICO: "12345678"},
		Items: []InvoiceItemRequest{{
			Description: "Tvorba webových stránek",
			Quantity:    decimal.NewFromInt(1),
			Unit:        "ks",
			UnitPrice:   decimal.NewFromInt(25000),
			VATRate:     decimal.NewFromInt(21),
		}},
	}
}

func TestInvoiceHandler_Lifecycle(t *testing.T) {
	router := newInvoiceRouter(t, identity.RoleAdmin)

	w := doJSON(t, router, http.MethodPost, "/admin/invoices", webInvoice())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var draft invoiceapp.InvoiceDTO
	decodeData(t, w, &draft)
	assert.Equal(t, "draft", draft.Status)
	assert.Empty(t, draft.Number)
	assert.Equal(t, "CZK", draft.Currency)
	assert.True(t, decimal.NewFromInt(30250).Equal(draft.Total), draft.Total.String())
	base := "/admin/invoices/" + draft.ID.String()

	w = doJSON(t, router, http.MethodPost, base+"/pay", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doJSON(t, router, http.MethodPost, base+"/issue", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var issued invoiceapp.InvoiceDTO
	decodeData(t, w, &issued)
	assert.Equal(t, "issued", issued.Status)
	assert.Equal(t, strconv.Itoa(time.Now().UTC().Year())+"-0001", issued.Number)
	require.NotNil(t, issued.DueDate)

	w = doJSON(t, router, http.MethodPost, base+"/issue", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidState, errorCode(t, w))

	w = doJSON(t, router, http.MethodPut, base, webInvoice())
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doJSON(t, router, http.MethodPost, base+"/pay", MarkPaidRequest{})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var paid invoiceapp.InvoiceDTO
	decodeData(t, w, &paid)
	assert.Equal(t, "paid", paid.Status)
	assert.NotNil(t, paid.PaidAt)

	w = doJSON(t, router, http.MethodGet, "/admin/invoices?status=paid", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []invoiceapp.InvoiceDTO
	decodeData(t, w, &list)
	require.Len(t, list, 1)
	assert.Equal(t, issued.Number, list[0].Number)
}

func TestInvoiceHandler_NumbersAreSequential(t *testing.T) {
	router := newInvoiceRouter(t, identity.RoleAdmin)
	year := strconv.Itoa(time.Now().UTC().Year())

	for i, want := range []string{year + "-0001", year + "-0002"} {
		w := doJSON(t, router, http.MethodPost, "/admin/invoices", webInvoice())
		require.Equal(t, http.StatusCreated, w.Code)
		var draft invoiceapp.InvoiceDTO
		decodeData(t, w, &draft)

		w = doJSON(t, router, http.MethodPost, "/admin/invoices/"+draft.ID.String()+"/issue", nil)
		require.Equal(t, http.StatusOK, w.Code, "invoice %d", i)
		var issued invoiceapp.InvoiceDTO
		decodeData(t, w, &issued)
		assert.Equal(t, want, issued.Number)
	}
}

func TestInvoiceHandler_Validation(t *testing.T) {
	router := newInvoiceRouter(t, identity.RoleAdmin)

	noItems := webInvoice()
	noItems.Items = nil
	badCurrency := webInvoice()
	badCurrency.Currency = "USD"

	for name, body := range map[string]InvoiceRequest{"no items": noItems, "bad currency": badCurrency} {
		t.Run(name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPost, "/admin/invoices", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, dto.ErrCodeValidation, errorCode(t, w))
		})
	}
}

func TestInvoiceHandler_DraftDeleteAndPDF(t *testing.T) {
	router := newInvoiceRouter(t, identity.RoleAdmin)

	w := doJSON(t, router, http.MethodPost, "/admin/invoices", webInvoice())
	require.Equal(t, http.StatusCreated, w.Code)
	var draft invoiceapp.InvoiceDTO
	decodeData(t, w, &draft)
	base := "/admin/invoices/" + draft.ID.String()

	w = doJSON(t, router, http.MethodGet, base+"/pdf", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doJSON(t, router, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInvoiceHandler_EditorHasNoAccess(t *testing.T) {
	router := newInvoiceRouter(t, identity.RoleEditor)

	w := doJSON(t, router, http.MethodGet, "/admin/invoices", nil)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

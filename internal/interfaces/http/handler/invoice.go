package handler

import (
	"github.com/gin-gonic/gin"
	invoiceapp "github.com/webstudio/backend/internal/application/invoice"
	"go.uber.org/zap"
)

// InvoiceHandler handles invoice endpoints
type InvoiceHandler struct {
	BaseHandler
	invoiceService *invoiceapp.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *invoiceapp.InvoiceService, logger *zap.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		BaseHandler:    BaseHandler{logger: logger},
		invoiceService: invoiceService,
	}
}

// Create godoc
// @ID           createInvoice
// @Summary      Create invoice draft
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body InvoiceRequest true "Invoice draft"
// @Success      201 {object} APIResponse[invoiceapp.InvoiceDTO]
// @Failure      400 {object} ErrorResponse
// @Router       /admin/invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req InvoiceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	inv, err := h.invoiceService.Create(c.Request.Context(), invoiceapp.CreateInvoiceInput{
		Client:           req.client(),
		LeadID:           req.LeadID,
		Currency:         req.Currency,
		Locale:           req.Locale,
		PaymentTermsDays: req.PaymentTermsDays,
		Notes:            req.Notes,
		Items:            req.items(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, inv)
}

// List godoc
// @ID           listInvoices
// @Summary      List invoices
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        status    query string false "Status" Enums(draft, issued, paid, cancelled)
// @Param        currency  query string false "Currency" Enums(CZK, EUR)
// @Param        search    query string false "Search in number and client"
// @Param        from      query string false "Issued on or after (YYYY-MM-DD)"
// @Param        to        query string false "Issued on or before (YYYY-MM-DD)"
// @Param        overdue   query bool   false "Only overdue invoices"
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Success      200 {object} ListResponse[invoiceapp.InvoiceDTO]
// @Failure      400 {object} ErrorResponse
// @Router       /admin/invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	var q ListInvoicesQuery
	if !h.BindQuery(c, &q) {
		return
	}

	page, err := h.invoiceService.List(c.Request.Context(), invoiceapp.ListInvoicesInput{
		Status:   q.Status,
		Currency: q.Currency,
		Search:   q.Search,
		From:     parseDay(q.From, false),
		To:       parseDay(q.To, true),
		Overdue:  q.Overdue,
		Page:     q.Page,
		PageSize: q.PageSize,
		OrderBy:  q.OrderBy,
		OrderDir: q.OrderDir,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	successPage(&h.BaseHandler, c, page)
}

// Get godoc
// @ID           getInvoice
// @Summary      Get invoice
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} APIResponse[invoiceapp.InvoiceDTO]
// @Failure      404 {object} ErrorResponse
// @Router       /admin/invoices/{id} [get]
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	inv, err := h.invoiceService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, inv)
}

// Update godoc
// @ID           updateInvoice
// @Summary      Update invoice draft
// @Description  Replace the editable fields. Only drafts can be edited.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string         true "Invoice ID" format(uuid)
// @Param        request body InvoiceRequest true "Invoice draft"
// @Success      200 {object} APIResponse[invoiceapp.InvoiceDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /admin/invoices/{id} [put]
func (h *InvoiceHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req InvoiceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	inv, err := h.invoiceService.Update(c.Request.Context(), id, invoiceapp.UpdateInvoiceInput{
		Client:           req.client(),
		LeadID:           req.LeadID,
		Currency:         req.Currency,
		Locale:           req.Locale,
		PaymentTermsDays: req.PaymentTermsDays,
		Notes:            req.Notes,
		Items:            req.items(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, inv)
}

// Issue godoc
// @ID           issueInvoice
// @Summary      Issue invoice
// @Description  Assign the next number of the year and set issue and due dates
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} APIResponse[invoiceapp.InvoiceDTO]
// @Failure      422 {object} ErrorResponse
// @Router       /admin/invoices/{id}/issue [post]
func (h *InvoiceHandler) Issue(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	inv, err := h.invoiceService.Issue(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, inv)
}

// MarkPaid godoc
// @ID           markInvoicePaid
// @Summary      Mark invoice paid
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string          true  "Invoice ID" format(uuid)
// @Param        request body MarkPaidRequest false "Payment date"
// @Success      200 {object} APIResponse[invoiceapp.InvoiceDTO]
// @Failure      422 {object} ErrorResponse
// @Router       /admin/invoices/{id}/pay [post]
func (h *InvoiceHandler) MarkPaid(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req MarkPaidRequest
	if c.Request.ContentLength > 0 && !h.BindJSON(c, &req) {
		return
	}

	inv, err := h.invoiceService.MarkPaid(c.Request.Context(), id, req.PaidAt)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, inv)
}

// Cancel godoc
// @ID           cancelInvoice
// @Summary      Cancel invoice
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} APIResponse[invoiceapp.InvoiceDTO]
// @Failure      422 {object} ErrorResponse
// @Router       /admin/invoices/{id}/cancel [post]
func (h *InvoiceHandler) Cancel(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	inv, err := h.invoiceService.Cancel(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, inv)
}

// Delete godoc
// @ID           deleteInvoice
// @Summary      Delete invoice draft
// @Tags         invoices
// @Security     BearerAuth
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      204
// @Failure      422 {object} ErrorResponse
// @Router       /admin/invoices/{id} [delete]
func (h *InvoiceHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	if err := h.invoiceService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// PDF godoc
// @ID           invoicePDF
// @Summary      Download invoice PDF
// @Tags         invoices
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id     path  string true  "Invoice ID" format(uuid)
// @Param        inline query bool   false "Show in browser instead of downloading"
// @Success      200 {file} binary
// @Failure      404 {object} ErrorResponse
// @Router       /admin/invoices/{id}/pdf [get]
func (h *InvoiceHandler) PDF(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	doc, err := h.invoiceService.RenderPDF(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.sendDocument(c, doc, "invoice-"+id.String()+".pdf", c.Query("inline") == "true")
}

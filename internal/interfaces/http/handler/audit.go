package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	auditapp "github.com/webstudio/backend/internal/application/audit"
	outreachapp "github.com/webstudio/backend/internal/application/outreach"
	"github.com/webstudio/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// AuditHandler handles website audits and the outreach built on them
type AuditHandler struct {
	BaseHandler
	auditService    *auditapp.AuditService
	outreachService *outreachapp.OutreachService
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(auditService *auditapp.AuditService, outreachService *outreachapp.OutreachService, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{
		BaseHandler:     BaseHandler{logger: logger},
		auditService:    auditService,
		outreachService: outreachService,
	}
}

// PublicAudit godoc
// @ID           publicRunAudit
// @Summary      Check my website
// @Description  Audit a website for a visitor. With an email and consent the visitor also becomes a lead.
// @Description  Contact data and internal fields are not returned.
// @Tags         public
// @Accept       json
// @Produce      json
// @Param        request body PublicAuditRequest true "Website and optional contact"
// @Success      200 {object} APIResponse[auditapp.AuditDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      429 {object} ErrorResponse
// @Router       /public/audits [post]
func (h *AuditHandler) PublicAudit(c *gin.Context) {
	var req PublicAuditRequest
	if !h.BindJSON(c, &req) {
		return
	}

	locale := req.Locale
	if locale == "" {
		locale = middleware.GetLocale(c).String()
	}

	result, err := h.auditService.PublicAudit(c.Request.Context(), auditapp.PublicAuditInput{
		URL:     req.URL,
		Name:    req.Name,
		Company: req.Company,
		Email:   req.Email,
		Phone:   req.Phone,
		Locale:  locale,
		Consent: req.Consent,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Run godoc
// @ID           runAudit
// @Summary      Run audit
// @Description  Fetch and score a website synchronously. Unreachable sites give a failed audit.
// @Tags         audits
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body RunAuditRequest true "Website and prospect"
// @Success      201 {object} APIResponse[auditapp.AuditDTO]
// @Failure      400 {object} ErrorResponse
// @Router       /admin/audits [post]
func (h *AuditHandler) Run(c *gin.Context) {
	var req RunAuditRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.auditService.RunAudit(c.Request.Context(), auditapp.RunAuditInput{
		URL:          req.URL,
		CompanyName:  req.CompanyName,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		Locale:       localeOrDefault(req.Locale),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// Batch godoc
// @ID           batchAudit
// @Summary      Queue audit batch
// @Description  Queue audits for many prospect sites. Invalid URLs are reported, duplicates skipped.
// @Tags         audits
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body BatchAuditRequest true "Website URLs"
// @Success      202 {object} APIResponse[auditapp.BatchResult]
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /admin/audits/batch [post]
func (h *AuditHandler) Batch(c *gin.Context) {
	var req BatchAuditRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.auditService.SubmitBatch(c.Request.Context(), auditapp.SubmitBatchInput{
		URLs:   req.URLs,
		Locale: req.Locale,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Accepted(c, result)
}

// List godoc
// @ID           listAudits
// @Summary      List audits
// @Tags         audits
// @Produce      json
// @Security     BearerAuth
// @Param        search    query string false "Search in domain"
// @Param        status    query string false "Status" Enums(pending, completed, failed)
// @Param        grade     query string false "Grade" Enums(A, B, C, D, F)
// @Param        batch_id  query string false "Batch ID" format(uuid)
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Success      200 {object} ListResponse[auditapp.AuditDTO]
// @Router       /admin/audits [get]
func (h *AuditHandler) List(c *gin.Context) {
	var q ListAuditsQuery
	if !h.BindQuery(c, &q) {
		return
	}

	input := auditapp.ListAuditsInput{
		Search:   q.Search,
		Status:   q.Status,
		Grade:    q.Grade,
		Page:     q.Page,
		PageSize: q.PageSize,
		OrderBy:  q.OrderBy,
		OrderDir: q.OrderDir,
	}
	if q.BatchID != "" {
		batchID := uuid.MustParse(q.BatchID)
		input.BatchID = &batchID
	}

	page, err := h.auditService.ListAudits(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	successPage(&h.BaseHandler, c, page)
}

// Get godoc
// @ID           getAudit
// @Summary      Get audit
// @Tags         audits
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Audit ID" format(uuid)
// @Success      200 {object} APIResponse[auditapp.AuditDTO]
// @Failure      404 {object} ErrorResponse
// @Router       /admin/audits/{id} [get]
func (h *AuditHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	result, err := h.auditService.GetAudit(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Delete godoc
// @ID           deleteAudit
// @Summary      Delete audit
// @Tags         audits
// @Security     BearerAuth
// @Param        id path string true "Audit ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Router       /admin/audits/{id} [delete]
func (h *AuditHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	if err := h.auditService.DeleteAudit(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// GenerateOutreach godoc
// @ID           generateOutreach
// @Summary      Generate outreach message
// @Description  Write an email, WhatsApp text or PDF cover note from a completed audit.
// @Description  Successive messages rotate through the template variants.
// @Tags         audits
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string                  true "Audit ID" format(uuid)
// @Param        request body GenerateOutreachRequest true "Channel"
// @Success      201 {object} APIResponse[outreachapp.MessageDTO]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /admin/audits/{id}/outreach [post]
func (h *AuditHandler) GenerateOutreach(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req GenerateOutreachRequest
	if !h.BindJSON(c, &req) {
		return
	}

	msg, err := h.outreachService.Generate(c.Request.Context(), outreachapp.GenerateInput{
		AuditID: id,
		Channel: req.Channel,
		Locale:  req.Locale,
		Variant: req.Variant,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, msg)
}

// ListOutreach godoc
// @ID           listOutreach
// @Summary      List outreach messages
// @Tags         audits
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Audit ID" format(uuid)
// @Success      200 {object} APIResponse[[]outreachapp.MessageDTO]
// @Failure      404 {object} ErrorResponse
// @Router       /admin/audits/{id}/outreach [get]
func (h *AuditHandler) ListOutreach(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	msgs, err := h.outreachService.ListMessages(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, msgs)
}

// ReportPDF godoc
// @ID           auditReportPDF
// @Summary      Download audit report
// @Tags         audits
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id     path  string true  "Audit ID" format(uuid)
// @Param        locale query string false "Report language; defaults to the audit's" Enums(cs, de, en)
// @Success      200 {file} binary
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /admin/audits/{id}/report.pdf [get]
func (h *AuditHandler) ReportPDF(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	doc, err := h.outreachService.RenderReportPDF(c.Request.Context(), id, c.Query("locale"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.sendDocument(c, doc, "audit-"+id.String()+".pdf", c.Query("inline") == "true")
}

// WhatsAppLink godoc
// @ID           whatsAppLink
// @Summary      Build WhatsApp link
// @Description  Build a wa.me click-to-chat link with prefilled text
// @Tags         audits
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body WhatsAppLinkRequest true "Phone and text"
// @Success      200 {object} APIResponse[WhatsAppLinkResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /admin/outreach/whatsapp-link [post]
func (h *AuditHandler) WhatsAppLink(c *gin.Context) {
	var req WhatsAppLinkRequest
	if !h.BindJSON(c, &req) {
		return
	}

	link, err := h.outreachService.WhatsAppLink(outreachapp.WhatsAppLinkInput{
		Phone: req.Phone,
		Text:  req.Text,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, WhatsAppLinkResponse{URL: link})
}

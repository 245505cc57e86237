package handler

import (
	"github.com/gin-gonic/gin"
	leadapp "github.com/webstudio/backend/internal/application/lead"
	"github.com/webstudio/backend/internal/domain/shared"
	"github.com/webstudio/backend/internal/infrastructure/i18n"
	"github.com/webstudio/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// LeadHandler handles the public contact form and the admin lead pipeline
type LeadHandler struct {
	BaseHandler
	leadService *leadapp.LeadService
	bundle      *i18n.Bundle
}

// NewLeadHandler creates a new LeadHandler
func NewLeadHandler(leadService *leadapp.LeadService, bundle *i18n.Bundle, logger *zap.Logger) *LeadHandler {
	return &LeadHandler{
		BaseHandler: BaseHandler{logger: logger},
		leadService: leadService,
		bundle:      bundle,
	}
}

// Submit godoc
// @ID           publicSubmitLead
// @Summary      Submit contact form
// @Description  Store a contact form submission. Resubmits with the same Idempotency-Key are ignored.
// @Tags         public
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string            false "Deduplication key"
// @Param        request         body   SubmitLeadRequest true  "Contact form"
// @Success      201 {object} APIResponse[SubmitLeadResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      429 {object} ErrorResponse
// @Router       /public/leads [post]
func (h *LeadHandler) Submit(c *gin.Context) {
	var req SubmitLeadRequest
	if !h.BindJSON(c, &req) {
		return
	}

	locale := req.Locale
	if locale == "" {
		locale = middleware.GetLocale(c).String()
	}

	_, err := h.leadService.SubmitLead(c.Request.Context(), leadapp.SubmitLeadInput{
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		Company:         req.Company,
		Website:         req.Website,
		Message:         req.Message,
		ServiceInterest: req.ServiceInterest,
		CitySlug:        req.CitySlug,
		Source:          req.Source,
		Locale:          locale,
		Consent:         req.Consent,
		Honeypot:        req.WebsiteURL2,
		IdempotencyKey:  c.GetHeader(middleware.IdempotencyKeyHeader),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	// dropped and duplicate submissions get the same answer as stored ones
	h.Created(c, SubmitLeadResponse{
		Received: true,
		Message:  h.bundle.T(shared.LocaleOrDefault(locale), "lead.thanks"),
	})
}

// Create godoc
// @ID           createLead
// @Summary      Create lead
// @Description  Enter a lead by hand. The source is manual.
// @Tags         leads
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateLeadRequest true "Lead data"
// @Success      201 {object} APIResponse[leadapp.LeadDTO]
// @Failure      400 {object} ErrorResponse
// @Router       /admin/leads [post]
func (h *LeadHandler) Create(c *gin.Context) {
	var req CreateLeadRequest
	if !h.BindJSON(c, &req) {
		return
	}

	l, err := h.leadService.CreateLead(c.Request.Context(), leadapp.CreateLeadInput{
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		Company:         req.Company,
		Website:         req.Website,
		Message:         req.Message,
		ServiceInterest: req.ServiceInterest,
		CitySlug:        req.CitySlug,
		Locale:          req.Locale,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, l)
}

// List godoc
// @ID           listLeads
// @Summary      List leads
// @Tags         leads
// @Produce      json
// @Security     BearerAuth
// @Param        status    query string false "Status" Enums(new, contacted, qualified, won, lost)
// @Param        source    query string false "Source" Enums(contact_form, audit, landing, manual)
// @Param        locale    query string false "Locale" Enums(cs, de, en)
// @Param        search    query string false "Search in name, email and company"
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Param        order_by  query string false "Sort field" default(created_at)
// @Param        order_dir query string false "Sort order" Enums(asc, desc)
// @Success      200 {object} ListResponse[leadapp.LeadDTO]
// @Failure      400 {object} ErrorResponse
// @Router       /admin/leads [get]
func (h *LeadHandler) List(c *gin.Context) {
	var q ListLeadsQuery
	if !h.BindQuery(c, &q) {
		return
	}

	page, err := h.leadService.ListLeads(c.Request.Context(), leadapp.ListLeadsInput{
		Status:   q.Status,
		Source:   q.Source,
		Locale:   q.Locale,
		Search:   q.Search,
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
// @ID           getLead
// @Summary      Get lead
// @Tags         leads
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Lead ID" format(uuid)
// @Success      200 {object} APIResponse[leadapp.LeadDTO]
// @Failure      404 {object} ErrorResponse
// @Router       /admin/leads/{id} [get]
func (h *LeadHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	l, err := h.leadService.GetLead(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, l)
}

// Update godoc
// @ID           updateLead
// @Summary      Update lead
// @Tags         leads
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string            true "Lead ID" format(uuid)
// @Param        request body UpdateLeadRequest true "Lead data"
// @Success      200 {object} APIResponse[leadapp.LeadDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /admin/leads/{id} [put]
func (h *LeadHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req UpdateLeadRequest
	if !h.BindJSON(c, &req) {
		return
	}

	l, err := h.leadService.UpdateLead(c.Request.Context(), id, leadapp.UpdateLeadInput{
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		Company:         req.Company,
		Website:         req.Website,
		Message:         req.Message,
		ServiceInterest: req.ServiceInterest,
		CitySlug:        req.CitySlug,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, l)
}

// ChangeStatus godoc
// @ID           changeLeadStatus
// @Summary      Change lead status
// @Description  Move a lead in the pipeline. Invalid transitions fail with 422.
// @Tags         leads
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string                  true "Lead ID" format(uuid)
// @Param        request body ChangeLeadStatusRequest true "Target status"
// @Success      200 {object} APIResponse[leadapp.LeadDTO]
// @Failure      422 {object} ErrorResponse
// @Router       /admin/leads/{id}/status [patch]
func (h *LeadHandler) ChangeStatus(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req ChangeLeadStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	l, err := h.leadService.ChangeStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, l)
}

// AppendNote godoc
// @ID           appendLeadNote
// @Summary      Add note to lead
// @Tags         leads
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string            true "Lead ID" format(uuid)
// @Param        request body AppendNoteRequest true "Note"
// @Success      200 {object} APIResponse[leadapp.LeadDTO]
// @Failure      404 {object} ErrorResponse
// @Router       /admin/leads/{id}/notes [post]
func (h *LeadHandler) AppendNote(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req AppendNoteRequest
	if !h.BindJSON(c, &req) {
		return
	}

	author := ""
	if claims := middleware.Claims(c); claims != nil {
		author = claims.Email
	}

	l, err := h.leadService.AppendNote(c.Request.Context(), id, author, req.Note)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, l)
}

// Delete godoc
// @ID           deleteLead
// @Summary      Delete lead
// @Tags         leads
// @Security     BearerAuth
// @Param        id path string true "Lead ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Router       /admin/leads/{id} [delete]
func (h *LeadHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	if err := h.leadService.DeleteLead(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Stats godoc
// @ID           leadStats
// @Summary      Lead statistics
// @Description  Count leads per pipeline status
// @Tags         leads
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} APIResponse[leadapp.StatsDTO]
// @Router       /admin/leads/stats [get]
func (h *LeadHandler) Stats(c *gin.Context) {
	stats, err := h.leadService.Stats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, stats)
}

package handler

import (
	"github.com/gin-gonic/gin"
	contentapp "github.com/webstudio/backend/internal/application/content"
	"github.com/webstudio/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ContentHandler handles the admin CMS: services, pricing, portfolio, blocks and image uploads
type ContentHandler struct {
	BaseHandler
	contentService *contentapp.ContentService
}

// NewContentHandler creates a new ContentHandler
func NewContentHandler(contentService *contentapp.ContentService, logger *zap.Logger) *ContentHandler {
	return &ContentHandler{
		BaseHandler:    BaseHandler{logger: logger},
		contentService: contentService,
	}
}

func localeOrDefault(value string) string {
	return shared.LocaleOrDefault(value).String()
}

// ---------------------------------------------------------------------------
// Services
// ---------------------------------------------------------------------------

// CreateService godoc
// @ID           createService
// @Summary      Create service
// @Tags         content
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body ServiceRequest true "Service"
// @Success      201 {object} APIResponse[contentapp.ServiceDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /admin/services [post]
func (h *ContentHandler) CreateService(c *gin.Context) {
	var req ServiceRequest
	if !h.BindJSON(c, &req) {
		return
	}
	svc, err := h.contentService.CreateService(c.Request.Context(), localeOrDefault(req.Locale), req.input())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, svc)
}

// ListServices godoc
// @ID           listServices
// @Summary      List services
// @Tags         content
// @Produce      json
// @Security     BearerAuth
// @Param        locale    query string false "Locale" Enums(cs, de, en)
// @Param        published query bool   false "Published filter"
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Success      200 {object} ListResponse[contentapp.ServiceDTO]
// @Router       /admin/services [get]
func (h *ContentHandler) ListServices(c *gin.Context) {
	var q ListContentQuery
	if !h.BindQuery(c, &q) {
		return
	}
	page, err := h.contentService.ListServices(c.Request.Context(), q.input())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	successPage(&h.BaseHandler, c, page)
}

// GetService godoc
// @ID           getService
// @Summary      Get service
// @Tags         content
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Service ID" format(uuid)
// @Success      200 {object} APIResponse[contentapp.ServiceDTO]
// @Failure      404 {object} ErrorResponse
// @Router       /admin/services/{id} [get]
func (h *ContentHandler) GetService(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	svc, err := h.contentService.GetService(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, svc)
}

// UpdateService godoc
// @ID           updateService
// @Summary      Update service
// @Description  Replace a service. The locale cannot change.
// @Tags         content
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string         true "Service ID" format(uuid)
// @Param        request body ServiceRequest true "Service"
// @Success      200 {object} APIResponse[contentapp.ServiceDTO]
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /admin/services/{id} [put]
func (h *ContentHandler) UpdateService(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req ServiceRequest
	if !h.BindJSON(c, &req) {
		return
	}
	svc, err := h.contentService.UpdateService(c.Request.Context(), id, req.input())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, svc)
}

// DeleteService godoc
// @ID           deleteService
// @Summary      Delete service
// @Tags         content
// @Security     BearerAuth
// @Param        id path string true "Service ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Router       /admin/services/{id} [delete]
func (h *ContentHandler) DeleteService(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	if err := h.contentService.DeleteService(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ---------------------------------------------------------------------------
// Pricing
// ---------------------------------------------------------------------------

// CreatePricing godoc
// @ID           createPricing
// @Summary      Create pricing package
// @Tags         content
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body PricingRequest true "Pricing package"
// @Success      201 {object} APIResponse[contentapp.PricingDTO]
// @Failure      400 {object} ErrorResponse
// @Router       /admin/pricing [post]
func (h *ContentHandler) CreatePricing(c *gin.Context) {
	var req PricingRequest
	if !h.BindJSON(c, &req) {
		return
	}
	p, err := h.contentService.CreatePricing(c.Request.Context(), localeOrDefault(req.Locale), req.input())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, p)
}

// ListPricing godoc
// @ID           listPricing
// @Summary      List pricing packages
// @Tags         content
// @Produce      json
// @Security     BearerAuth
// @Param        locale query string false "Locale" Enums(cs, de, en)
// @Success      200 {object} ListResponse[contentapp.PricingDTO]
// @Router       /admin/pricing [get]
func (h *ContentHandler) ListPricing(c *gin.Context) {
	var q ListContentQuery
	if !h.BindQuery(c, &q) {
		return
	}
	page, err := h.contentService.ListPricing(c.Request.Context(), q.input())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	successPage(&h.BaseHandler, c, page)
}

// GetPricing godoc
// @ID           getPricing
// @Summary      Get pricing package
// @Tags         content
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Package ID" format(uuid)
// @Success      200 {object} APIResponse[contentapp.PricingDTO]
// @Router       /admin/pricing/{id} [get]
func (h *ContentHandler) GetPricing(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	p, err := h.contentService.GetPricing(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// UpdatePricing godoc
// @ID           updatePricing
// @Summary      Update pricing package
// @Tags         content
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string         true "Package ID" format(uuid)
// @Param        request body PricingRequest true "Pricing package"
// @Success      200 {object} APIResponse[contentapp.PricingDTO]
// @Router       /admin/pricing/{id} [put]
func (h *ContentHandler) UpdatePricing(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req PricingRequest
	if !h.BindJSON(c, &req) {
		return
	}
	p, err := h.contentService.UpdatePricing(c.Request.Context(), id, req.input())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// DeletePricing godoc
// @ID           deletePricing
// @Summary      Delete pricing package
// @Tags         content
// @Security     BearerAuth
// @Param        id path string true "Package ID" format(uuid)
// @Success      204
// @Router       /admin/pricing/{id} [delete]
func (h *ContentHandler) DeletePricing(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	if err := h.contentService.DeletePricing(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ---------------------------------------------------------------------------
// Portfolio
// ---------------------------------------------------------------------------

// CreatePortfolio godoc
// @ID           createPortfolio
// @Summary      Create portfolio item
// @Tags         content
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body PortfolioRequest true "Portfolio item"
// @Success      201 {object} APIResponse[contentapp.PortfolioDTO]
// @Router       /admin/portfolio [post]
func (h *ContentHandler) CreatePortfolio(c *gin.Context) {
	var req PortfolioRequest
	if !h.BindJSON(c, &req) {
		return
	}
	p, err := h.contentService.CreatePortfolio(c.Request.Context(), localeOrDefault(req.Locale), req.input())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, p)
}

// ListPortfolio godoc
// @ID           listPortfolio
// @Summary      List portfolio items
// @Tags         content
// @Produce      json
// @Security     BearerAuth
// @Param        locale query string false "Locale" Enums(cs, de, en)
// @Success      200 {object} ListResponse[contentapp.PortfolioDTO]
// @Router       /admin/portfolio [get]
func (h *ContentHandler) ListPortfolio(c *gin.Context) {
	var q ListContentQuery
	if !h.BindQuery(c, &q) {
		return
	}
	page, err := h.contentService.ListPortfolio(c.Request.Context(), q.input())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	successPage(&h.BaseHandler, c, page)
}

// GetPortfolio godoc
// @ID           getPortfolio
// @Summary      Get portfolio item
// @Tags         content
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Item ID" format(uuid)
// @Success      200 {object} APIResponse[contentapp.PortfolioDTO]
// @Router       /admin/portfolio/{id} [get]
func (h *ContentHandler) GetPortfolio(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	p, err := h.contentService.GetPortfolio(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// UpdatePortfolio godoc
// @ID           updatePortfolio
// @Summary      Update portfolio item
// @Description  Replace a portfolio item. A replaced image is removed from storage.
// @Tags         content
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string           true "Item ID" format(uuid)
// @Param        request body PortfolioRequest true "Portfolio item"
// @Success      200 {object} APIResponse[contentapp.PortfolioDTO]
// @Router       /admin/portfolio/{id} [put]
func (h *ContentHandler) UpdatePortfolio(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req PortfolioRequest
	if !h.BindJSON(c, &req) {
		return
	}
	p, err := h.contentService.UpdatePortfolio(c.Request.Context(), id, req.input())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// DeletePortfolio godoc
// @ID           deletePortfolio
// @Summary      Delete portfolio item
// @Tags         content
// @Security     BearerAuth
// @Param        id path string true "Item ID" format(uuid)
// @Success      204
// @Router       /admin/portfolio/{id} [delete]
func (h *ContentHandler) DeletePortfolio(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	if err := h.contentService.DeletePortfolio(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ---------------------------------------------------------------------------
// Blocks
// ---------------------------------------------------------------------------

// ListBlocks godoc
// @ID           listBlocks
// @Summary      List content blocks
// @Description  Return block values of one locale as a key to text map
// @Tags         content
// @Produce      json
// @Security     BearerAuth
// @Param        locale query string false "Locale" Enums(cs, de, en)
// @Param        prefix query string false "Key prefix, e.g. home."
// @Success      200 {object} APIResponse[map[string]string]
// @Router       /admin/blocks [get]
func (h *ContentHandler) ListBlocks(c *gin.Context) {
	var q BlocksQuery
	if !h.BindQuery(c, &q) {
		return
	}
	blocks, err := h.contentService.GetBlocks(c.Request.Context(), shared.LocaleOrDefault(q.Locale), q.Prefix)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, blocks)
}

// UpsertBlock godoc
// @ID           upsertBlock
// @Summary      Set content block
// @Tags         content
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        locale  path string       true "Locale" Enums(cs, de, en)
// @Param        key     path string       true "Block key"
// @Param        request body BlockRequest true "Block value"
// @Success      200 {object} APIResponse[contentapp.BlockDTO]
// @Router       /admin/blocks/{locale}/{key} [put]
func (h *ContentHandler) UpsertBlock(c *gin.Context) {
	var req BlockRequest
	if !h.BindJSON(c, &req) {
		return
	}
	block, err := h.contentService.UpsertBlock(c.Request.Context(), c.Param("key"), c.Param("locale"), req.Value)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, block)
}

// DeleteBlock godoc
// @ID           deleteBlock
// @Summary      Delete content block
// @Tags         content
// @Security     BearerAuth
// @Param        locale path string true "Locale" Enums(cs, de, en)
// @Param        key    path string true "Block key"
// @Success      204
// @Router       /admin/blocks/{locale}/{key} [delete]
func (h *ContentHandler) DeleteBlock(c *gin.Context) {
	locale, err := shared.ParseLocale(c.Param("locale"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if err := h.contentService.DeleteBlock(c.Request.Context(), c.Param("key"), locale); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ---------------------------------------------------------------------------
// Uploads
// ---------------------------------------------------------------------------

// CreateImageUpload godoc
// @ID           createImageUpload
// @Summary      Request image upload URL
// @Description  Return a presigned PUT URL. Store the returned key on the portfolio item or post afterwards.
// @Tags         content
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body ImageUploadRequest true "Upload request"
// @Success      201 {object} APIResponse[contentapp.ImageUpload]
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /admin/uploads [post]
func (h *ContentHandler) CreateImageUpload(c *gin.Context) {
	var req ImageUploadRequest
	if !h.BindJSON(c, &req) {
		return
	}
	upload, err := h.contentService.CreateImageUpload(c.Request.Context(), contentapp.ImageUploadInput{
		Kind:        req.Kind,
		Filename:    req.Filename,
		ContentType: req.ContentType,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, upload)
}

package handler

import (
	"github.com/gin-gonic/gin"
	blogapp "github.com/webstudio/backend/internal/application/blog"
	contentapp "github.com/webstudio/backend/internal/application/content"
	seoapp "github.com/webstudio/backend/internal/application/seo"
	"github.com/webstudio/backend/internal/domain/shared"
	"github.com/webstudio/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// PublicHandler serves published site content to the frontend. The locale comes
// from the locale middleware unless the path names one.
type PublicHandler struct {
	BaseHandler
	contentService *contentapp.ContentService
	postService    *blogapp.PostService
	seoService     *seoapp.SEOService
}

// NewPublicHandler creates a new PublicHandler
func NewPublicHandler(
	contentService *contentapp.ContentService,
	postService *blogapp.PostService,
	seoService *seoapp.SEOService,
	logger *zap.Logger,
) *PublicHandler {
	return &PublicHandler{
		BaseHandler:    BaseHandler{logger: logger},
		contentService: contentService,
		postService:    postService,
		seoService:     seoService,
	}
}

// pathLocale reads the :locale path parameter. On failure it writes a 400 and returns false.
func (h *PublicHandler) pathLocale(c *gin.Context) (shared.Locale, bool) {
	locale, err := shared.ParseLocale(c.Param("locale"))
	if err != nil {
		h.HandleError(c, err)
		return "", false
	}
	return locale, true
}

// ListServices godoc
// @ID           publicListServices
// @Summary      Published services
// @Tags         public
// @Produce      json
// @Param        lang query string false "Locale" Enums(cs, de, en)
// @Success      200 {object} APIResponse[[]contentapp.ServiceDTO]
// @Router       /public/services [get]
func (h *PublicHandler) ListServices(c *gin.Context) {
	services, err := h.contentService.PublishedServices(c.Request.Context(), middleware.GetLocale(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, services)
}

// GetService godoc
// @ID           publicGetService
// @Summary      Published service
// @Tags         public
// @Produce      json
// @Param        slug path  string true  "Service slug"
// @Param        lang query string false "Locale" Enums(cs, de, en)
// @Success      200 {object} APIResponse[contentapp.ServiceDTO]
// @Failure      404 {object} ErrorResponse
// @Router       /public/services/{slug} [get]
func (h *PublicHandler) GetService(c *gin.Context) {
	svc, err := h.contentService.PublishedService(c.Request.Context(), middleware.GetLocale(c), c.Param("slug"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, svc)
}

// ListPricing godoc
// @ID           publicListPricing
// @Summary      Published pricing packages
// @Tags         public
// @Produce      json
// @Param        lang query string false "Locale" Enums(cs, de, en)
// @Success      200 {object} APIResponse[[]contentapp.PricingDTO]
// @Router       /public/pricing [get]
func (h *PublicHandler) ListPricing(c *gin.Context) {
	packages, err := h.contentService.PublishedPricing(c.Request.Context(), middleware.GetLocale(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, packages)
}

// ListPortfolio godoc
// @ID           publicListPortfolio
// @Summary      Published portfolio
// @Tags         public
// @Produce      json
// @Param        lang query string false "Locale" Enums(cs, de, en)
// @Success      200 {object} APIResponse[[]contentapp.PortfolioDTO]
// @Router       /public/portfolio [get]
func (h *PublicHandler) ListPortfolio(c *gin.Context) {
	items, err := h.contentService.PublishedPortfolio(c.Request.Context(), middleware.GetLocale(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// GetContent godoc
// @ID           publicGetContent
// @Summary      Content blocks
// @Description  Return the editable texts of one locale as a key to text map
// @Tags         public
// @Produce      json
// @Param        locale path  string true  "Locale" Enums(cs, de, en)
// @Param        prefix query string false "Key prefix, e.g. home."
// @Success      200 {object} APIResponse[map[string]string]
// @Failure      400 {object} ErrorResponse
// @Router       /public/content/{locale} [get]
func (h *PublicHandler) GetContent(c *gin.Context) {
	locale, ok := h.pathLocale(c)
	if !ok {
		return
	}
	var q BlocksByPrefixQuery
	if !h.BindQuery(c, &q) {
		return
	}

	blocks, err := h.contentService.GetBlocks(c.Request.Context(), locale, q.Prefix)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, blocks)
}

// ListPosts godoc
// @ID           publicListPosts
// @Summary      Published blog posts
// @Description  Newest first. Bodies are omitted.
// @Tags         public
// @Produce      json
// @Param        lang      query string false "Locale" Enums(cs, de, en)
// @Param        tag       query string false "Tag"
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(10)
// @Success      200 {object} ListResponse[blogapp.PostDTO]
// @Router       /public/blog [get]
func (h *PublicHandler) ListPosts(c *gin.Context) {
	var q PublicPostsQuery
	if !h.BindQuery(c, &q) {
		return
	}

	page, err := h.postService.ListPublished(c.Request.Context(), middleware.GetLocale(c), q.Tag, q.Page, q.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	for i := range page.Items {
		page.Items[i].Body = ""
	}
	successPage(&h.BaseHandler, c, page)
}

// GetPost godoc
// @ID           publicGetPost
// @Summary      Published blog post
// @Tags         public
// @Produce      json
// @Param        slug path  string true  "Post slug"
// @Param        lang query string false "Locale" Enums(cs, de, en)
// @Success      200 {object} APIResponse[blogapp.PostDTO]
// @Failure      404 {object} ErrorResponse
// @Router       /public/blog/{slug} [get]
func (h *PublicHandler) GetPost(c *gin.Context) {
	post, err := h.postService.GetPublishedBySlug(c.Request.Context(), middleware.GetLocale(c), c.Param("slug"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, post)
}

// ListLandingPages godoc
// @ID           publicListLandingPages
// @Summary      Landing pages of a locale
// @Description  Every published service in every city of the locale's market
// @Tags         public
// @Produce      json
// @Param        locale path string true "Locale" Enums(cs, de, en)
// @Success      200 {object} APIResponse[[]LandingRefResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /public/landing/{locale} [get]
func (h *PublicHandler) ListLandingPages(c *gin.Context) {
	locale, ok := h.pathLocale(c)
	if !ok {
		return
	}

	refs, err := h.seoService.ListLandingPages(c.Request.Context(), locale)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]LandingRefResponse, len(refs))
	for i, r := range refs {
		out[i] = LandingRefResponse{ServiceSlug: r.ServiceSlug, CitySlug: r.CitySlug, Title: r.Title, URL: r.URL}
	}
	h.Success(c, out)
}

// GetLandingPage godoc
// @ID           publicGetLandingPage
// @Summary      Landing page
// @Tags         public
// @Produce      json
// @Param        locale  path string true "Locale" Enums(cs, de, en)
// @Param        service path string true "Service slug"
// @Param        city    path string true "City slug"
// @Success      200 {object} APIResponse[LandingPageResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /public/landing/{locale}/{service}/{city} [get]
func (h *PublicHandler) GetLandingPage(c *gin.Context) {
	locale, ok := h.pathLocale(c)
	if !ok {
		return
	}

	page, err := h.seoService.LandingPage(c.Request.Context(), locale, c.Param("service"), c.Param("city"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toLandingPageResponse(page))
}

// ListCities godoc
// @ID           publicListCities
// @Summary      City catalog
// @Tags         public
// @Produce      json
// @Param        country query string false "Country" Enums(CZ, DE)
// @Param        lang    query string false "Locale for names" Enums(cs, de, en)
// @Success      200 {object} APIResponse[[]CityResponse]
// @Router       /public/cities [get]
func (h *PublicHandler) ListCities(c *gin.Context) {
	var q CitiesQuery
	if !h.BindQuery(c, &q) {
		return
	}

	locale := middleware.GetLocale(c)
	cities := h.seoService.Cities(q.Country)
	out := make([]CityResponse, len(cities))
	for i, city := range cities {
		out[i] = toCityResponse(city, locale)
	}
	h.Success(c, out)
}

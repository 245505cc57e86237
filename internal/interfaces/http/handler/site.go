package handler

import (
	"embed"
	"errors"
	"io/fs"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	blogapp "github.com/webstudio/backend/internal/application/blog"
	contentapp "github.com/webstudio/backend/internal/application/content"
	seoapp "github.com/webstudio/backend/internal/application/seo"
	"github.com/webstudio/backend/internal/domain/seo"
	"github.com/webstudio/backend/internal/domain/shared"
	"github.com/webstudio/backend/internal/infrastructure/i18n"
	"github.com/webstudio/backend/internal/infrastructure/printing"
	"github.com/webstudio/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// PagesFS holds the server-rendered site templates and static assets
//
//go:embed pages/*.html pages/static/*
var PagesFS embed.FS

// PagePatterns are the template globs inside PagesFS
var PagePatterns = []string{"pages/*.html"}

// StaticFS returns the site assets rooted at /static
func StaticFS() fs.FS {
	sub, err := fs.Sub(PagesFS, "pages/static")
	if err != nil {
		panic(err)
	}
	return sub
}

const (
	homePostCount   = 3
	blogPageSize    = 10
	pageCacheMaxAge = "public, max-age=300"
)

// pageMeta is the <head> of every site page
type pageMeta struct {
	Locale      string
	Title       string
	Description string
	Canonical   string
	Alternates  []seo.Alternate
	OGType      string
	Image       string
	JSONLD      string
	Year        int
	AgencyName  string
}

type homePage struct {
	Meta      pageMeta
	Services  []contentapp.ServiceDTO
	Pricing   []contentapp.PricingDTO
	Portfolio []contentapp.PortfolioDTO
	Posts     []blogapp.PostDTO
}

type blogPage struct {
	Meta       pageMeta
	Posts      []blogapp.PostDTO
	Page       int
	TotalPages int
}

type postPage struct {
	Meta pageMeta
	Post *blogapp.PostDTO
}

type servicePage struct {
	Meta    pageMeta
	Service *contentapp.ServiceDTO
	Cities  []seo.LandingRef
}

type landingPage struct {
	Meta pageMeta
	Page *seo.LandingPage
}

type notFoundPage struct {
	Meta pageMeta
}

// SiteHandler renders the public website as HTML
type SiteHandler struct {
	BaseHandler
	engine         *printing.TemplateEngine
	contentService *contentapp.ContentService
	postService    *blogapp.PostService
	seoService     *seoapp.SEOService
	phrases        *i18n.Bundle
	now            func() time.Time
}

// NewSiteHandler creates a new SiteHandler. engine must have been built with PagesFS.
func NewSiteHandler(
	engine *printing.TemplateEngine,
	contentService *contentapp.ContentService,
	postService *blogapp.PostService,
	seoService *seoapp.SEOService,
	phrases *i18n.Bundle,
	logger *zap.Logger,
) *SiteHandler {
	return &SiteHandler{
		BaseHandler:    BaseHandler{logger: logger},
		engine:         engine,
		contentService: contentService,
		postService:    postService,
		seoService:     seoService,
		phrases:        phrases,
		now:            time.Now,
	}
}

// Root sends visitors to their negotiated language
func (h *SiteHandler) Root(c *gin.Context) {
	c.Redirect(http.StatusFound, "/"+middleware.GetLocale(c).String())
}

// Home renders the landing page of a language
func (h *SiteHandler) Home(c *gin.Context) {
	locale, ok := h.locale(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	services, err := h.contentService.PublishedServices(ctx, locale)
	if err != nil {
		h.fail(c, locale, err)
		return
	}
	pricing, err := h.contentService.PublishedPricing(ctx, locale)
	if err != nil {
		h.fail(c, locale, err)
		return
	}
	portfolio, err := h.contentService.PublishedPortfolio(ctx, locale)
	if err != nil {
		h.fail(c, locale, err)
		return
	}
	posts, err := h.postService.ListPublished(ctx, locale, "", 1, homePostCount)
	if err != nil {
		h.fail(c, locale, err)
		return
	}
	jsonld, err := h.seoService.OrganizationJSONLD(locale)
	if err != nil {
		h.fail(c, locale, err)
		return
	}

	meta := h.meta(locale)
	meta.Title = seo.PageTitle(h.phrases.T(locale, "site.home_title"), meta.AgencyName)
	meta.Description = seo.MetaDescription(h.phrases.T(locale, "site.home_description"))
	meta.Canonical = seo.HomeURL(h.seoService.BaseURL(), locale)
	meta.Alternates = h.seoService.HomeAlternates()
	meta.JSONLD = jsonld

	h.render(c, http.StatusOK, "site_home.html", homePage{
		Meta:      meta,
		Services:  services,
		Pricing:   pricing,
		Portfolio: portfolio,
		Posts:     posts.Items,
	})
}

// Blog renders the paginated post index, optionally filtered by ?tag=
func (h *SiteHandler) Blog(c *gin.Context) {
	locale, ok := h.locale(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.Query("page"))
	if page < 1 {
		page = 1
	}

	result, err := h.postService.ListPublished(c.Request.Context(), locale, c.Query("tag"), page, blogPageSize)
	if err != nil {
		h.fail(c, locale, err)
		return
	}

	base := h.seoService.BaseURL()
	meta := h.meta(locale)
	meta.Title = seo.PageTitle(h.phrases.T(locale, "blog.title"), meta.AgencyName)
	meta.Description = seo.MetaDescription(h.phrases.T(locale, "blog.description"))
	meta.Canonical = seo.BlogURL(base, locale)
	meta.Alternates = seo.Alternates(shared.SupportedLocales, func(l shared.Locale) string {
		return seo.BlogURL(base, l)
	})

	h.render(c, http.StatusOK, "site_blog.html", blogPage{
		Meta:       meta,
		Posts:      result.Items,
		Page:       result.Page,
		TotalPages: result.TotalPages,
	})
}

// Post renders one published article
func (h *SiteHandler) Post(c *gin.Context) {
	locale, ok := h.locale(c)
	if !ok {
		return
	}
	post, err := h.postService.GetPublishedBySlug(c.Request.Context(), locale, c.Param("slug"))
	if err != nil {
		h.fail(c, locale, err)
		return
	}
	jsonld, err := h.seoService.PostJSONLD(*post)
	if err != nil {
		h.fail(c, locale, err)
		return
	}

	description := post.MetaDescription
	if description == "" {
		description = post.Excerpt
	}
	meta := h.meta(locale)
	meta.Title = seo.PageTitle(post.Title, meta.AgencyName)
	meta.Description = seo.MetaDescription(description)
	meta.Canonical = seo.PostURL(h.seoService.BaseURL(), locale, post.Slug)
	meta.OGType = "article"
	meta.Image = post.CoverImageURL
	meta.JSONLD = jsonld

	h.render(c, http.StatusOK, "site_post.html", postPage{Meta: meta, Post: post})
}

// Service renders a service page with links to its city landing pages
func (h *SiteHandler) Service(c *gin.Context) {
	locale, ok := h.locale(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	slug := c.Param("service")

	svc, err := h.contentService.PublishedService(ctx, locale, slug)
	if err != nil {
		h.fail(c, locale, err)
		return
	}
	alternates, err := h.seoService.ServiceAlternates(ctx, svc.Slug)
	if err != nil {
		h.fail(c, locale, err)
		return
	}
	refs, err := h.seoService.ListLandingPages(ctx, locale)
	if err != nil {
		h.fail(c, locale, err)
		return
	}
	cities := make([]seo.LandingRef, 0, len(refs))
	for _, ref := range refs {
		if ref.ServiceSlug == svc.Slug {
			cities = append(cities, ref)
		}
	}

	meta := h.meta(locale)
	meta.Title = seo.PageTitle(svc.Title, meta.AgencyName)
	meta.Description = seo.MetaDescription(svc.Summary)
	meta.Canonical = seo.ServiceURL(h.seoService.BaseURL(), locale, svc.Slug)
	meta.Alternates = alternates

	h.render(c, http.StatusOK, "site_service.html", servicePage{Meta: meta, Service: svc, Cities: cities})
}

// Landing renders the page for a service in one city
func (h *SiteHandler) Landing(c *gin.Context) {
	locale, ok := h.locale(c)
	if !ok {
		return
	}
	page, err := h.seoService.LandingPage(c.Request.Context(), locale, c.Param("service"), c.Param("city"))
	if err != nil {
		h.fail(c, locale, err)
		return
	}

	meta := h.meta(locale)
	meta.Title = page.Title
	meta.Description = page.MetaDescription
	meta.Canonical = page.Canonical
	meta.Alternates = page.Alternates
	meta.JSONLD = page.JSONLD

	h.render(c, http.StatusOK, "site_landing.html", landingPage{Meta: meta, Page: page})
}

// Sitemap serves sitemap.xml
func (h *SiteHandler) Sitemap(c *gin.Context) {
	body, err := h.seoService.Sitemap(c.Request.Context())
	if err != nil {
		h.log().Error("Failed to build sitemap", zap.Error(err))
		c.String(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	c.Header("Cache-Control", pageCacheMaxAge)
	c.Data(http.StatusOK, "application/xml; charset=utf-8", body)
}

// Robots serves robots.txt
func (h *SiteHandler) Robots(c *gin.Context) {
	c.Header("Cache-Control", pageCacheMaxAge)
	c.String(http.StatusOK, h.seoService.Robots())
}

// NoRoute answers unknown API paths with JSON and everything else with the 404 page
func (h *SiteHandler) NoRoute(c *gin.Context) {
	h.notFound(c, middleware.GetLocale(c))
}

// locale parses the :locale segment. Unknown languages get the 404 page.
func (h *SiteHandler) locale(c *gin.Context) (shared.Locale, bool) {
	locale, err := shared.ParseLocale(c.Param("locale"))
	if err != nil {
		h.notFound(c, middleware.GetLocale(c))
		return "", false
	}
	return locale, true
}

func (h *SiteHandler) meta(locale shared.Locale) pageMeta {
	return pageMeta{
		Locale:     locale.String(),
		Year:       h.now().Year(),
		AgencyName: h.phrases.T(locale, "site.name"),
	}
}

func (h *SiteHandler) fail(c *gin.Context, locale shared.Locale, err error) {
	if errors.Is(err, shared.ErrNotFound) || errors.Is(err, shared.ErrInvalidInput) {
		h.notFound(c, locale)
		return
	}
	h.log().Error("Failed to render page",
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", getRequestID(c)),
	)
	c.String(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}

// notFound renders the 404 page. Paths under /api/ can fall through to the
// page routes, so they get the JSON error instead.
func (h *SiteHandler) notFound(c *gin.Context, locale shared.Locale) {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		h.NotFound(c, "Route not found")
		return
	}
	meta := h.meta(locale)
	meta.Title = seo.PageTitle(h.phrases.T(locale, "site.not_found"), meta.AgencyName)
	meta.Canonical = seo.HomeURL(h.seoService.BaseURL(), locale)
	c.Header("Cache-Control", "no-store")
	h.render(c, http.StatusNotFound, "site_not_found.html", notFoundPage{Meta: meta})
}

func (h *SiteHandler) render(c *gin.Context, status int, name string, data any) {
	html, err := h.engine.Render(name, data)
	if err != nil {
		h.log().Error("Failed to render template", zap.String("template", name), zap.Error(err))
		c.String(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	if status == http.StatusOK {
		c.Header("Cache-Control", pageCacheMaxAge)
	}
	c.Data(status, "text/html; charset=utf-8", []byte(html))
}

package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/webstudio/backend/internal/interfaces/http/dto"
	"github.com/webstudio/backend/internal/interfaces/http/handler"
	"github.com/webstudio/backend/internal/interfaces/http/middleware"
)

// Handlers bundles every HTTP handler the server exposes. Site is optional;
// without it only the JSON API and the system endpoints are mounted.
type Handlers struct {
	System  *handler.SystemHandler
	Auth    *handler.AuthHandler
	User    *handler.UserHandler
	Lead    *handler.LeadHandler
	Content *handler.ContentHandler
	Blog    *handler.BlogHandler
	Invoice *handler.InvoiceHandler
	Audit   *handler.AuditHandler
	Public  *handler.PublicHandler
	Site    *handler.SiteHandler
}

// Guards are the request filters shared between groups. Nil entries are skipped.
type Guards struct {
	// Auth validates the bearer token; required for /auth and /admin
	Auth gin.HandlerFunc
	// Locale negotiates the request language
	Locale gin.HandlerFunc
	// FormLimit throttles anonymous writes: contact form, free audits, login
	FormLimit gin.HandlerFunc
	// Swagger protects /swagger; nil leaves the docs unmounted
	Swagger gin.HandlerFunc
	// Metrics serves the Prometheus scrape endpoint
	Metrics http.Handler
}

// PublicRoutes is the read-only content API for the frontend plus the two
// anonymous forms
func PublicRoutes(h Handlers, g Guards) Area {
	return Area{Name: "public", Prefix: "/public", Guards: []gin.HandlerFunc{g.Locale}, Routes: func(rg *gin.RouterGroup) {
		rg.GET("/services", h.Public.ListServices)
		rg.GET("/services/:slug", h.Public.GetService)
		rg.GET("/pricing", h.Public.ListPricing)
		rg.GET("/portfolio", h.Public.ListPortfolio)
		rg.GET("/content/:locale", h.Public.GetContent)
		rg.GET("/blog", h.Public.ListPosts)
		rg.GET("/blog/:slug", h.Public.GetPost)
		rg.GET("/cities", h.Public.ListCities)
		rg.GET("/landing/:locale", h.Public.ListLandingPages)
		rg.GET("/landing/:locale/:service/:city", h.Public.GetLandingPage)

		rg.POST("/leads", chain(g.FormLimit, h.Lead.Submit)...)
		rg.POST("/audits", chain(g.FormLimit, h.Audit.PublicAudit)...)
	}}
}

// AuthRoutes handles login and the current session
func AuthRoutes(h Handlers, g Guards) Area {
	return Area{Name: "auth", Prefix: "/auth", Routes: func(rg *gin.RouterGroup) {
		rg.POST("/login", chain(g.FormLimit, h.Auth.Login)...)
		rg.POST("/refresh", h.Auth.RefreshToken)

		session := rg.Group("", chain(g.Auth)...)
		session.POST("/logout", h.Auth.Logout)
		session.GET("/me", h.Auth.GetCurrentUser)
		session.PUT("/password", h.Auth.ChangePassword)
	}}
}

// AdminRoutes is the authenticated back office. Each resource group checks
// its permission: read for GET, write for everything else.
func AdminRoutes(h Handlers, g Guards) Area {
	return Area{Name: "admin", Prefix: "/admin", Guards: []gin.HandlerFunc{g.Auth}, Routes: func(rg *gin.RouterGroup) {
		resource := func(prefix, name string) *gin.RouterGroup {
			return rg.Group(prefix, middleware.RequireResource(name))
		}

		users := resource("/users", "user")
		users.POST("", h.User.Create)
		users.GET("", h.User.List)
		users.GET("/:id", h.User.Get)
		users.PUT("/:id", h.User.Update)
		users.DELETE("/:id", h.User.Delete)
		users.POST("/:id/activate", h.User.Activate)
		users.POST("/:id/deactivate", h.User.Deactivate)

		leads := resource("/leads", "lead")
		leads.POST("", h.Lead.Create)
		leads.GET("", h.Lead.List)
		leads.GET("/stats", h.Lead.Stats)
		leads.GET("/:id", h.Lead.Get)
		leads.PUT("/:id", h.Lead.Update)
		leads.DELETE("/:id", h.Lead.Delete)
		leads.PATCH("/:id/status", h.Lead.ChangeStatus)
		leads.POST("/:id/notes", h.Lead.AppendNote)

		invoices := resource("/invoices", "invoice")
		invoices.POST("", h.Invoice.Create)
		invoices.GET("", h.Invoice.List)
		invoices.GET("/:id", h.Invoice.Get)
		invoices.PUT("/:id", h.Invoice.Update)
		invoices.DELETE("/:id", h.Invoice.Delete)
		invoices.POST("/:id/issue", h.Invoice.Issue)
		invoices.POST("/:id/pay", h.Invoice.MarkPaid)
		invoices.POST("/:id/cancel", h.Invoice.Cancel)
		invoices.GET("/:id/pdf", h.Invoice.PDF)

		content := resource("", "content")
		content.POST("/services", h.Content.CreateService)
		content.GET("/services", h.Content.ListServices)
		content.GET("/services/:id", h.Content.GetService)
		content.PUT("/services/:id", h.Content.UpdateService)
		content.DELETE("/services/:id", h.Content.DeleteService)
		content.POST("/pricing", h.Content.CreatePricing)
		content.GET("/pricing", h.Content.ListPricing)
		content.GET("/pricing/:id", h.Content.GetPricing)
		content.PUT("/pricing/:id", h.Content.UpdatePricing)
		content.DELETE("/pricing/:id", h.Content.DeletePricing)
		content.POST("/portfolio", h.Content.CreatePortfolio)
		content.GET("/portfolio", h.Content.ListPortfolio)
		content.GET("/portfolio/:id", h.Content.GetPortfolio)
		content.PUT("/portfolio/:id", h.Content.UpdatePortfolio)
		content.DELETE("/portfolio/:id", h.Content.DeletePortfolio)
		content.GET("/blocks", h.Content.ListBlocks)
		content.PUT("/blocks/:locale/:key", h.Content.UpsertBlock)
		content.DELETE("/blocks/:locale/:key", h.Content.DeleteBlock)
		content.POST("/uploads", h.Content.CreateImageUpload)

		blog := resource("/blog", "blog")
		blog.POST("", h.Blog.Create)
		blog.GET("", h.Blog.List)
		blog.POST("/generate", h.Blog.Generate)
		blog.GET("/:id", h.Blog.Get)
		blog.PUT("/:id", h.Blog.Update)
		blog.DELETE("/:id", h.Blog.Delete)
		blog.POST("/:id/schedule", h.Blog.Schedule)
		blog.POST("/:id/publish", h.Blog.Publish)
		blog.POST("/:id/unpublish", h.Blog.Unpublish)
		blog.POST("/:id/archive", h.Blog.Archive)

		audits := resource("", "audit")
		audits.POST("/audits", h.Audit.Run)
		audits.POST("/audits/batch", h.Audit.Batch)
		audits.GET("/audits", h.Audit.List)
		audits.GET("/audits/:id", h.Audit.Get)
		audits.DELETE("/audits/:id", h.Audit.Delete)
		audits.POST("/audits/:id/outreach", h.Audit.GenerateOutreach)
		audits.GET("/audits/:id/outreach", h.Audit.ListOutreach)
		audits.GET("/audits/:id/report.pdf", h.Audit.ReportPDF)
		audits.POST("/outreach/whatsapp-link", h.Audit.WhatsAppLink)
	}}
}

// SystemRoutes exposes build info under the API prefix
func SystemRoutes(h Handlers) Area {
	return Area{Name: "system", Prefix: "/system", Routes: func(rg *gin.RouterGroup) {
		rg.GET("/info", h.System.GetSystemInfo)
		rg.GET("/ping", h.System.Ping)
	}}
}

// Mount wires the whole HTTP surface onto the engine: health checks, metrics, docs,
// the versioned API and, when present, the rendered site.
func Mount(engine *gin.Engine, h Handlers, g Guards, opts ...Option) *API {
	engine.GET("/health", h.System.Health)
	engine.GET("/ready", h.System.Ready)
	engine.GET("/metrics", handler.Metrics(g.Metrics))
	if g.Swagger != nil {
		engine.GET("/swagger/*any", g.Swagger, ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := NewAPI(opts...).Add(
		PublicRoutes(h, g),
		AuthRoutes(h, g),
		AdminRoutes(h, g),
		SystemRoutes(h),
	)
	api.Mount(engine)

	if h.Site != nil {
		mountSite(engine, h.Site, g)
	} else {
		engine.NoRoute(func(c *gin.Context) {
			c.JSON(http.StatusNotFound, dto.Fail(
				dto.ErrCodeNotFound, "Route not found", middleware.GetRequestID(c)))
		})
	}
	return api
}

func mountSite(engine *gin.Engine, site *handler.SiteHandler, g Guards) {
	engine.StaticFS("/static", http.FS(handler.StaticFS()))
	engine.GET("/sitemap.xml", site.Sitemap)
	engine.GET("/robots.txt", site.Robots)

	pages := engine.Group("", chain(g.Locale)...)
	pages.GET("/", site.Root)
	pages.GET("/:locale", site.Home)
	pages.GET("/:locale/blog", site.Blog)
	pages.GET("/:locale/blog/:slug", site.Post)
	pages.GET("/:locale/:service", site.Service)
	pages.GET("/:locale/:service/:city", site.Landing)

	engine.NoRoute(chain(g.Locale, site.NoRoute)...)
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	auditapp "github.com/webstudio/backend/internal/application/audit"
	blogapp "github.com/webstudio/backend/internal/application/blog"
	contentapp "github.com/webstudio/backend/internal/application/content"
	identityapp "github.com/webstudio/backend/internal/application/identity"
	invoiceapp "github.com/webstudio/backend/internal/application/invoice"
	leadapp "github.com/webstudio/backend/internal/application/lead"
	outreachapp "github.com/webstudio/backend/internal/application/outreach"
	printingapp "github.com/webstudio/backend/internal/application/printing"
	seoapp "github.com/webstudio/backend/internal/application/seo"
	"github.com/webstudio/backend/internal/domain/audit"
	"github.com/webstudio/backend/internal/domain/seo"
	"github.com/webstudio/backend/internal/domain/shared"
	"github.com/webstudio/backend/internal/infrastructure/ai"
	"github.com/webstudio/backend/internal/infrastructure/auth"
	"github.com/webstudio/backend/internal/infrastructure/cache"
	"github.com/webstudio/backend/internal/infrastructure/config"
	"github.com/webstudio/backend/internal/infrastructure/event"
	"github.com/webstudio/backend/internal/infrastructure/i18n"
	"github.com/webstudio/backend/internal/infrastructure/logger"
	"github.com/webstudio/backend/internal/infrastructure/migration"
	"github.com/webstudio/backend/internal/infrastructure/notify"
	"github.com/webstudio/backend/internal/infrastructure/persistence"
	"github.com/webstudio/backend/internal/infrastructure/printing"
	"github.com/webstudio/backend/internal/infrastructure/scheduler"
	"github.com/webstudio/backend/internal/infrastructure/storage"
	"github.com/webstudio/backend/internal/infrastructure/telemetry"
	"github.com/webstudio/backend/internal/infrastructure/webfetch"
	"github.com/webstudio/backend/internal/interfaces/http/handler"
	"github.com/webstudio/backend/internal/interfaces/http/middleware"
	"github.com/webstudio/backend/internal/interfaces/http/router"
	"github.com/webstudio/backend/migrations"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "github.com/webstudio/backend/docs"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Webstudio API
//	@version		1.0
//	@description	Backend of the agency website: public content, contact form, free website audits and the admin back office.

//	@contact.name	Webové studio
//	@contact.url	https://webstudio.cz
//	@contact.email	info@webstudio.cz

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry
	otelProviders, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		Insecure:          cfg.Telemetry.Insecure,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		MetricsExporter:   cfg.Telemetry.MetricsExporter,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	log = otelProviders.TeeLogger(log, cfg.Telemetry.ServiceName, zapcore.InfoLevel)
	defer func() {
		if err := otelProviders.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down telemetry", zap.Error(err))
		}
	}()

	log.Info("Starting webstudio backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)
	for _, warning := range cfg.Warnings() {
		log.Warn("Configuration warning", zap.String("warning", warning))
	}

	if cfg.Database.AutoMigrate {
		if err := applyMigrations(cfg.Database.DSN(), log); err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	// Database
	gormLog := logger.NewGormLogger(log, logger.GormLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)
	db, err := persistence.Open(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	dbMetrics, err := telemetry.NewDBInstrumentation(otelProviders.Meter("webstudio.db"), telemetry.DBConfig{
		Tracing:         otelProviders.TracingEnabled(),
		LogFullSQL:      !cfg.App.IsProduction(),
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
	}, log)
	if err != nil {
		log.Fatal("Failed to create database instrumentation", zap.Error(err))
	}
	if err := db.DB.Use(dbMetrics); err != nil {
		log.Fatal("Failed to register database instrumentation", zap.Error(err))
	}
	log.Info("Database connected successfully")

	// Redis is optional; without it every store falls back to process memory
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer func() {
			_ = redisClient.Close()
		}()
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}

	bundle, err := i18n.Load()
	if err != nil {
		log.Fatal("Failed to load translations", zap.Error(err))
	}
	defaultLocale := shared.LocaleOrDefault(cfg.App.DefaultLocale)

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	leadRepo := persistence.NewGormLeadRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	serviceRepo := persistence.NewGormServiceRepository(db.DB)
	pricingRepo := persistence.NewGormPricingRepository(db.DB)
	portfolioRepo := persistence.NewGormPortfolioRepository(db.DB)
	blockRepo := persistence.NewGormBlockRepository(db.DB)
	postRepo := persistence.NewGormPostRepository(db.DB)
	auditRepo := persistence.NewGormAuditRepository(db.DB)
	outreachRepo := persistence.NewGormOutreachRepository(db.DB)

	// Event bus and worker pool
	eventBus := event.NewInMemoryEventBus(log, event.DefaultQueueSize,
		event.WithRedelivery(cfg.Scheduler.RetryAttempts, cfg.Scheduler.RetryDelay))
	jobs := scheduler.NewScheduler(scheduler.Config{
		Workers:       cfg.Scheduler.Workers,
		QueueSize:     cfg.Audit.MaxBatchSize * 2,
		JobTimeout:    cfg.Scheduler.JobTimeout,
		RetryAttempts: cfg.Scheduler.RetryAttempts,
		RetryDelay:    cfg.Scheduler.RetryDelay,
	}, log)

	businessMetrics, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:  otelProviders.Meter("webstudio.business"),
		Logger: log,
		Audits: auditRepo,
	})
	if err != nil {
		log.Fatal("Failed to create business metrics", zap.Error(err))
	}
	defer func() {
		_ = businessMetrics.Close()
	}()
	jobs.SetObserver(func(job *scheduler.Job, d time.Duration) {
		businessMetrics.JobFinished(context.Background(), job.Name, string(job.Status), d)
	})

	// Documents: one template engine renders site pages, PDFs and outreach mails
	templates, err := printing.NewTemplateEngine(bundle, printing.WithTemplates(handler.PagesFS, handler.PagePatterns...))
	if err != nil {
		log.Fatal("Failed to parse templates", zap.Error(err))
	}
	chromeCfg := printing.ChromedpConfig{
		DefaultTimeout: cfg.Chrome.Timeout,
		RemoteURL:      cfg.Chrome.RemoteURL,
		NoSandbox:      cfg.Chrome.NoSandbox,
		MaxParallel:    cfg.Chrome.MaxParallel,
		Logger:         log,
	}
	var fetcherAlloc context.Context
	if cfg.Audit.UseBrowser {
		allocCtx, cancelAlloc := printing.BrowserAllocator(cfg.Chrome.RemoteURL, cfg.Chrome.NoSandbox)
		defer cancelAlloc()
		chromeCfg.Allocator = allocCtx
		fetcherAlloc = allocCtx
	}
	pdfRenderer := printing.NewChromedpRenderer(chromeCfg)
	defer func() {
		_ = pdfRenderer.Close()
	}()
	documents := printingapp.NewDocumentService(templates, pdfRenderer, log)
	agency := agencyParty(cfg.Agency)

	// Object storage
	var objectStorage contentapp.ObjectStorage
	invoiceOpts := []invoiceapp.InvoiceServiceOption{
		invoiceapp.WithPrinter(documents, agency),
		invoiceapp.WithPublisher(eventBus),
	}
	if cfg.Storage.Enabled {
		s3, err := storage.NewS3Store(&cfg.Storage,
			storage.WithLogger(log),
			storage.WithPresignTTL(cfg.Storage.PresignExpiry),
		)
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		if err := s3.EnsureBucket(ctx); err != nil {
			log.Warn("Object storage bucket check failed", zap.String("bucket", s3.Bucket()), zap.Error(err))
		}
		objectStorage = s3
		invoiceOpts = append(invoiceOpts, invoiceapp.WithArchive(s3))
	} else if !cfg.App.IsProduction() {
		mem := storage.NewMemoryObjectStorage("")
		objectStorage = mem
		invoiceOpts = append(invoiceOpts, invoiceapp.WithArchive(mem))
		log.Warn("Object storage disabled; using in-memory objects for development")
	} else {
		log.Warn("Object storage disabled; image uploads and PDF archiving are off")
	}

	// Identity
	var blacklist auth.TokenBlacklist = auth.NewInMemoryTokenBlacklist()
	if redisClient != nil {
		blacklist = auth.NewRedisTokenBlacklist(redisClient)
	}
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, log)
	userService := identityapp.NewUserService(userRepo, authService, log).WithPublisher(eventBus)
	if created, err := userService.EnsureBootstrapAdmin(ctx, cfg.Admin.BootstrapEmail, cfg.Admin.BootstrapPassword); err != nil {
		log.Fatal("Failed to bootstrap admin user", zap.Error(err))
	} else if created {
		log.Warn("Bootstrap admin created; change its password", zap.String("email", cfg.Admin.BootstrapEmail))
	}

	// Content, blog and landing pages
	idempotency := cache.NewIdempotencyStore(redisClient, log)
	contentService := contentapp.NewContentService(serviceRepo, pricingRepo, portfolioRepo, blockRepo, objectStorage, log)
	generator, err := ai.NewGenerator(cfg.AI, log)
	if err != nil {
		log.Fatal("Failed to initialize AI provider", zap.Error(err))
	}
	postService := blogapp.NewPostService(postRepo, eventBus, generator, contentService, log)

	pageCache, closePageCache := newPageCache(ctx, redisClient, log)
	defer closePageCache()
	seoService := seoapp.NewSEOService(serviceRepo, postRepo, seo.DefaultCatalog(), bundle, seoAgency(cfg.Agency), cfg.App.BaseURL, log,
		seoapp.WithCache(pageCache))

	// Leads, audits and invoices
	leadService := leadapp.NewLeadService(leadRepo, eventBus, idempotency, log)
	fetcherCfg := webfetch.Config{
		Timeout:      cfg.Audit.Timeout,
		UserAgent:    cfg.Audit.UserAgent,
		MaxBodyBytes: cfg.Audit.MaxBodyBytes,
	}
	var fetcher audit.Fetcher = webfetch.NewHTTPFetcher(fetcherCfg, log)
	if fetcherAlloc != nil {
		fetcher = webfetch.NewBrowserFetcher(fetcherAlloc, fetcherCfg, log)
	}
	auditService := auditapp.NewAuditService(auditRepo, fetcher, leadService, jobs, eventBus, log)
	outreachService := outreachapp.NewOutreachService(auditRepo, outreachRepo, bundle, templates, agency, log,
		outreachapp.WithPrinter(documents),
		outreachapp.WithRecorder(businessMetrics),
	)
	invoiceService := invoiceapp.NewInvoiceService(invoiceRepo, persistence.NewGormTransactionScope(db.DB), log, invoiceOpts...)

	// Event subscribers
	leadNotifier := leadapp.NewLeadSubmittedHandler(notify.New(cfg.Notify, log), businessMetrics,
		strings.TrimRight(cfg.App.BaseURL, "/")+"/admin/leads", log)
	eventBus.Subscribe(event.NewIdempotentHandler("lead_notifier", leadNotifier, idempotency, shared.DefaultIdempotencyTTL, log))
	eventBus.Subscribe(event.NewIdempotentHandler("business_metrics", businessMetrics, idempotency, shared.DefaultIdempotencyTTL, log))
	sitemapRefresh := seoapp.NewSitemapRefreshHandler(pageCache)
	eventBus.Subscribe(sitemapRefresh)
	log.Info("Event handlers registered",
		zap.Strings("lead_notification_events", leadNotifier.EventTypes()),
		zap.Strings("business_metric_events", businessMetrics.EventTypes()),
		zap.Strings("sitemap_refresh_events", sitemapRefresh.EventTypes()),
	)

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	if err := jobs.Start(ctx); err != nil {
		log.Fatal("Failed to start scheduler", zap.Error(err))
	}
	defer func() {
		if err := jobs.Stop(context.Background()); err != nil {
			log.Error("Error stopping scheduler", zap.Error(err))
		}
	}()

	if cfg.Scheduler.Enabled {
		cron := scheduler.NewCronTrigger(scheduler.DefaultCronTriggerConfig(), jobs, log)
		if err := cron.Add(blogapp.JobNamePublishDue, scheduler.Every(cfg.Scheduler.PublishInterval), postService.PublishDueJob()); err != nil {
			log.Fatal("Failed to register publish job", zap.Error(err))
		}
		if generator != nil && len(cfg.AI.Topics) > 0 {
			daily := scheduler.Daily{Hour: cfg.Scheduler.GenerateHour, Minute: cfg.Scheduler.GenerateMinute, Location: time.Local}
			if err := cron.Add(blogapp.JobNameGenerateDaily, daily, postService.DailyDraftJob(cfg.AI.Topics, defaultLocale)); err != nil {
				log.Fatal("Failed to register draft job", zap.Error(err))
			}
		}
		if err := cron.Start(ctx); err != nil {
			log.Fatal("Failed to start cron trigger", zap.Error(err))
		}
		defer func() {
			_ = cron.Stop(context.Background())
		}()
	}

	// HTTP
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowedOrigins
	securityCfg := middleware.DefaultSecurityConfig()
	securityCfg.HSTSEnabled = cfg.App.IsProduction()

	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		logger.GinMiddleware(log),
		middleware.Tracing(middleware.TracingConfig{ServiceName: cfg.Telemetry.ServiceName, Enabled: otelProviders.TracingEnabled()}),
		middleware.SpanAttributes(),
		middleware.HTTPMetrics(httpMeter(otelProviders), log),
		middleware.SecureWithConfig(securityCfg),
		middleware.CORSWithConfig(corsCfg),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
		middleware.Timeout(cfg.HTTP.WriteTimeout),
	)
	if cfg.HTTP.RateLimitEnabled {
		engine.Use(middleware.RateLimit(middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)))
	}

	jwtAuth := middleware.AuthenticateWithConfig(middleware.AuthConfig{
		Authenticator: authService,
		Logger:        log,
	})
	guards := router.Guards{
		Auth:      jwtAuth,
		Locale:    middleware.Locale(bundle),
		FormLimit: middleware.RateLimit(middleware.NewRateLimiter(cfg.HTTP.PublicRatePerMinute, time.Minute)),
		Metrics:   otelProviders.MetricsHandler(),
	}
	if cfg.Swagger.Enabled {
		guards.Swagger = middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:     true,
			RequireAuth: cfg.App.IsProduction(),
		}, jwtAuth)
	}

	checks := []handler.SystemHandlerOption{
		handler.WithReadinessCheck("database", db.Ping),
	}
	if redisClient != nil {
		checks = append(checks, handler.WithReadinessCheck("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}))
	}

	router.Mount(engine, router.Handlers{
		System:  handler.NewSystemHandler(cfg.App.Name, version, log, checks...),
		Auth:    handler.NewAuthHandler(authService, userService, log),
		User:    handler.NewUserHandler(userService, log),
		Lead:    handler.NewLeadHandler(leadService, bundle, log),
		Content: handler.NewContentHandler(contentService, log),
		Blog:    handler.NewBlogHandler(postService, log),
		Invoice: handler.NewInvoiceHandler(invoiceService, log),
		Audit:   handler.NewAuditHandler(auditService, outreachService, log),
		Public:  handler.NewPublicHandler(contentService, postService, seoService, log),
		Site:    handler.NewSiteHandler(templates, contentService, postService, seoService, bundle, log),
	}, guards)

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	stop()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// newPageCache returns the landing page cache: tiered over redis when it is
// available, process memory otherwise.
func newPageCache(ctx context.Context, client *redis.Client, log *zap.Logger) (seoapp.PageCache, func()) {
	l1 := cache.NewInMemoryPageCache(cache.WithInMemoryLogger(log))
	if client == nil {
		return l1, func() { _ = l1.Close() }
	}

	invalidator := cache.NewRedisPageInvalidator(client, cache.WithInvalidatorLogger(log))
	tiered := cache.NewTieredPageCache(l1, cache.NewRedisPageCache(client, log), invalidator, cache.WithTieredLogger(log))
	go func() {
		if err := tiered.StartInvalidationSubscription(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("Page cache invalidation subscription stopped", zap.Error(err))
		}
	}()
	return tiered, func() {
		_ = invalidator.Close()
		_ = l1.Close()
	}
}

func agencyParty(a config.AgencyConfig) printing.Party {
	address := strings.TrimSpace(strings.Join([]string{a.Street, strings.TrimSpace(a.PostalCode + " " + a.City)}, ", "))
	return printing.Party{
		Name:      a.Name,
		LegalName: a.LegalName,
		Address:   strings.Trim(address, ", "),
		ICO:       a.ICO,
		DIC:       a.DIC,
		IBAN:      a.IBAN,
		Email:     a.Email,
		Phone:     a.Phone,
		Web:       a.URL,
		LogoURL:   a.LogoURL,
		VATPayer:  a.VATPayer,
	}
}

func seoAgency(a config.AgencyConfig) seo.Agency {
	return seo.Agency{
		Name:       a.Name,
		LegalName:  a.LegalName,
		URL:        a.URL,
		Email:      a.Email,
		Phone:      a.Phone,
		Street:     a.Street,
		City:       a.City,
		PostalCode: a.PostalCode,
		Country:    a.Country,
		LogoURL:    a.LogoURL,
	}
}

// httpMeter is nil when metrics are off, which turns HTTPMetrics into a passthrough
func httpMeter(p *telemetry.Providers) metric.Meter {
	if !p.MetricsEnabled() {
		return nil
	}
	return p.Meter("http.server")
}

func applyMigrations(dsn string, log *zap.Logger) error {
	m, err := migration.Open(dsn, migrations.FS, "", log)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Failed to close migrator", zap.Error(err))
		}
	}()
	return m.Up()
}

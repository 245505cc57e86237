package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultAdminPassword is the bootstrap password shipped in config.toml.
// Production refuses to start with it.
const DefaultAdminPassword = "change-me-123"

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Storage   StorageConfig
	Telemetry TelemetryConfig
	Scheduler SchedulerConfig
	AI        AIConfig
	Audit     AuditConfig
	Chrome    ChromeConfig
	Agency    AgencyConfig
	Notify    NotifyConfig
	Admin     AdminConfig
	Swagger   SwaggerConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name          string
	Env           string
	Port          string
	BaseURL       string // public site origin without trailing slash
	DefaultLocale string
}

// IsProduction reports whether the app runs in production
func (a AppConfig) IsProduction() bool {
	return a.Env == "production"
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	AutoMigrate     bool
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// JWTConfig holds JWT settings
type JWTConfig struct {
	Secret                 string
	RefreshSecret          string
	AccessTokenExpiration  time.Duration
	RefreshTokenExpiration time.Duration
	Issuer                 string
	MaxRefreshCount        int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout         time.Duration
	WriteTimeout        time.Duration
	IdleTimeout         time.Duration
	MaxBodySize         int64
	RateLimitEnabled    bool
	RateLimitRequests   int
	RateLimitWindow     time.Duration
	PublicRatePerMinute int // per-IP budget for public form endpoints
	CORSAllowedOrigins  []string
	TrustedProxies      []string
}

// StorageConfig holds S3-compatible object storage settings
type StorageConfig struct {
	Enabled       bool
	Endpoint      string
	Region        string
	Bucket        string
	AccessKey     string
	SecretKey     string
	UsePathStyle  bool
	PresignExpiry time.Duration
	PublicURL     string // optional CDN origin for public objects
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string
	SamplingRatio     float64
	ServiceName       string
	MetricsExporter   string // prometheus or otlp
	Insecure          bool
	DBSlowQueryThresh time.Duration
}

// SchedulerConfig holds background job settings
type SchedulerConfig struct {
	Enabled         bool
	Workers         int
	PublishInterval time.Duration
	GenerateHour    int
	GenerateMinute  int
	JobTimeout      time.Duration
	RetryAttempts   int
	RetryDelay      time.Duration
}

// AIConfig holds settings for the blog draft generator
type AIConfig struct {
	Provider    string // anthropic, openai or none
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	Topics      []string
}

// Enabled reports whether a provider is configured
func (a AIConfig) Enabled() bool {
	return a.Provider != "" && a.Provider != "none"
}

// AuditConfig holds website fetcher settings
type AuditConfig struct {
	Timeout      time.Duration
	UserAgent    string
	MaxBodyBytes int64
	UseBrowser   bool
	MaxBatchSize int
}

// ChromeConfig holds the headless browser shared by PDF rendering and the browser audit fetcher
type ChromeConfig struct {
	RemoteURL   string // DevTools websocket of an external Chrome; empty launches one locally
	NoSandbox   bool
	Timeout     time.Duration
	MaxParallel int
}

// AgencyConfig describes the business shown on pages, invoices and outreach
type AgencyConfig struct {
	Name       string
	LegalName  string
	URL        string
	Email      string
	Phone      string
	Street     string
	City       string
	PostalCode string
	Country    string
	ICO        string
	DIC        string
	IBAN       string
	VATPayer   bool
	LogoURL    string
}

// NotifyConfig holds lead notification settings
type NotifyConfig struct {
	WebhookURL string
	Timeout    time.Duration
}

// AdminConfig holds the first admin account
type AdminConfig struct {
	BootstrapEmail    string
	BootstrapPassword string
}

// SwaggerConfig holds Swagger documentation endpoint configuration
type SwaggerConfig struct {
	Enabled bool
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with SITE_ prefix (e.g., SITE_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("SITE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name:          v.GetString("app.name"),
			Env:           v.GetString("app.env"),
			Port:          v.GetString("app.port"),
			BaseURL:       strings.TrimRight(v.GetString("app.base_url"), "/"),
			DefaultLocale: v.GetString("app.default_locale"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			AutoMigrate:     v.GetBool("database.auto_migrate"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:                 v.GetString("jwt.secret"),
			RefreshSecret:          v.GetString("jwt.refresh_secret"),
			AccessTokenExpiration:  v.GetDuration("jwt.access_token_expiration"),
			RefreshTokenExpiration: v.GetDuration("jwt.refresh_token_expiration"),
			Issuer:                 v.GetString("jwt.issuer"),
			MaxRefreshCount:        v.GetInt("jwt.max_refresh_count"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:         v.GetDuration("http.read_timeout"),
			WriteTimeout:        v.GetDuration("http.write_timeout"),
			IdleTimeout:         v.GetDuration("http.idle_timeout"),
			MaxBodySize:         v.GetInt64("http.max_body_size"),
			RateLimitEnabled:    v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests:   v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:     v.GetDuration("http.rate_limit_window"),
			PublicRatePerMinute: v.GetInt("http.public_rate_per_minute"),
			CORSAllowedOrigins:  v.GetStringSlice("http.cors_allowed_origins"),
			TrustedProxies:      v.GetStringSlice("http.trusted_proxies"),
		},
		Storage: StorageConfig{
			Enabled:       v.GetBool("storage.enabled"),
			Endpoint:      v.GetString("storage.endpoint"),
			Region:        v.GetString("storage.region"),
			Bucket:        v.GetString("storage.bucket"),
			AccessKey:     v.GetString("storage.access_key"),
			SecretKey:     v.GetString("storage.secret_key"),
			UsePathStyle:  v.GetBool("storage.use_path_style"),
			PresignExpiry: v.GetDuration("storage.presign_expiry"),
			PublicURL:     strings.TrimRight(v.GetString("storage.public_url"), "/"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			MetricsExporter:   v.GetString("telemetry.metrics_exporter"),
			Insecure:          v.GetBool("telemetry.insecure"),
			DBSlowQueryThresh: v.GetDuration("telemetry.db_slow_query_threshold"),
		},
		Scheduler: SchedulerConfig{
			Enabled:         v.GetBool("scheduler.enabled"),
			Workers:         v.GetInt("scheduler.workers"),
			PublishInterval: v.GetDuration("scheduler.publish_interval"),
			GenerateHour:    v.GetInt("scheduler.generate_hour"),
			GenerateMinute:  v.GetInt("scheduler.generate_minute"),
			JobTimeout:      v.GetDuration("scheduler.job_timeout"),
			RetryAttempts:   v.GetInt("scheduler.retry_attempts"),
			RetryDelay:      v.GetDuration("scheduler.retry_delay"),
		},
		AI: AIConfig{
			Provider:    strings.ToLower(v.GetString("ai.provider")),
			APIKey:      v.GetString("ai.api_key"),
			Model:       v.GetString("ai.model"),
			MaxTokens:   v.GetInt("ai.max_tokens"),
			Temperature: v.GetFloat64("ai.temperature"),
			Topics:      v.GetStringSlice("ai.topics"),
		},
		Audit: AuditConfig{
			Timeout:      v.GetDuration("audit.timeout"),
			UserAgent:    v.GetString("audit.user_agent"),
			MaxBodyBytes: v.GetInt64("audit.max_body_bytes"),
			UseBrowser:   v.GetBool("audit.use_browser"),
			MaxBatchSize: v.GetInt("audit.max_batch_size"),
		},
		Chrome: ChromeConfig{
			RemoteURL:   v.GetString("chrome.remote_url"),
			NoSandbox:   v.GetBool("chrome.no_sandbox"),
			Timeout:     v.GetDuration("chrome.timeout"),
			MaxParallel: v.GetInt("chrome.max_parallel"),
		},
		Agency: AgencyConfig{
			Name:       v.GetString("agency.name"),
			LegalName:  v.GetString("agency.legal_name"),
			URL:        strings.TrimRight(v.GetString("agency.url"), "/"),
			Email:      v.GetString("agency.email"),
			Phone:      v.GetString("agency.phone"),
			Street:     v.GetString("agency.street"),
			City:       v.GetString("agency.city"),
			PostalCode: v.GetString("agency.postal_code"),
			Country:    v.GetString("agency.country"),
			ICO:        v.GetString("agency.ico"),
			DIC:        v.GetString("agency.dic"),
			IBAN:       v.GetString("agency.iban"),
			VATPayer:   v.GetBool("agency.vat_payer"),
			LogoURL:    v.GetString("agency.logo_url"),
		},
		Notify: NotifyConfig{
			WebhookURL: v.GetString("notify.webhook_url"),
			Timeout:    v.GetDuration("notify.timeout"),
		},
		Admin: AdminConfig{
			BootstrapEmail:    v.GetString("admin.bootstrap_email"),
			BootstrapPassword: v.GetString("admin.bootstrap_password"),
		},
		Swagger: SwaggerConfig{
			Enabled: v.GetBool("swagger.enabled"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "webstudio"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.App.BaseURL == "" {
		cfg.App.BaseURL = "http://localhost:" + cfg.App.Port
	}
	if cfg.App.DefaultLocale == "" {
		cfg.App.DefaultLocale = "cs"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "webstudio"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.JWT.AccessTokenExpiration == 0 {
		cfg.JWT.AccessTokenExpiration = 15 * time.Minute
	}
	if cfg.JWT.RefreshTokenExpiration == 0 {
		cfg.JWT.RefreshTokenExpiration = 168 * time.Hour
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = cfg.App.Name
	}
	if cfg.JWT.MaxRefreshCount == 0 {
		cfg.JWT.MaxRefreshCount = 10
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		// PDF rendering and synchronous audits need more than the usual budget
		cfg.HTTP.WriteTimeout = 60 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 2 << 20 // 2MB
	}
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 300
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	if cfg.HTTP.PublicRatePerMinute == 0 {
		cfg.HTTP.PublicRatePerMinute = 10
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "eu-central-1"
	}
	if cfg.Storage.PresignExpiry == 0 {
		cfg.Storage.PresignExpiry = 15 * time.Minute
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Telemetry.MetricsExporter == "" {
		cfg.Telemetry.MetricsExporter = "prometheus"
	}
	if cfg.Telemetry.DBSlowQueryThresh == 0 {
		cfg.Telemetry.DBSlowQueryThresh = 200 * time.Millisecond
	}
	if cfg.Scheduler.Workers == 0 {
		cfg.Scheduler.Workers = 3
	}
	if cfg.Scheduler.PublishInterval == 0 {
		cfg.Scheduler.PublishInterval = 5 * time.Minute
	}
	if cfg.Scheduler.GenerateHour == 0 && cfg.Scheduler.GenerateMinute == 0 {
		cfg.Scheduler.GenerateHour = 6
	}
	if cfg.Scheduler.JobTimeout == 0 {
		cfg.Scheduler.JobTimeout = 5 * time.Minute
	}
	if cfg.Scheduler.RetryAttempts == 0 {
		cfg.Scheduler.RetryAttempts = 3
	}
	if cfg.Scheduler.RetryDelay == 0 {
		cfg.Scheduler.RetryDelay = 30 * time.Second
	}
	if cfg.AI.Provider == "" {
		cfg.AI.Provider = "none"
	}
	if cfg.AI.MaxTokens == 0 {
		cfg.AI.MaxTokens = 4096
	}
	if cfg.AI.Temperature == 0 {
		cfg.AI.Temperature = 0.7
	}
	if cfg.Audit.Timeout == 0 {
		cfg.Audit.Timeout = 20 * time.Second
	}
	if cfg.Audit.UserAgent == "" {
		cfg.Audit.UserAgent = "Mozilla/5.0 (compatible; WebstudioAudit/1.0)"
	}
	if cfg.Audit.MaxBodyBytes == 0 {
		cfg.Audit.MaxBodyBytes = 5 << 20 // 5MB
	}
	if cfg.Audit.MaxBatchSize == 0 {
		cfg.Audit.MaxBatchSize = 50
	}
	if cfg.Chrome.Timeout == 0 {
		cfg.Chrome.Timeout = 30 * time.Second
	}
	if cfg.Chrome.MaxParallel == 0 {
		cfg.Chrome.MaxParallel = 2
	}
	if cfg.Agency.Name == "" {
		cfg.Agency.Name = cfg.App.Name
	}
	if cfg.Agency.URL == "" {
		cfg.Agency.URL = cfg.App.BaseURL
	}
	if cfg.Notify.Timeout == 0 {
		cfg.Notify.Timeout = 5 * time.Second
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	switch c.App.DefaultLocale {
	case "cs", "de", "en":
	default:
		return fmt.Errorf("app.default_locale must be one of cs, de, en, got %q", c.App.DefaultLocale)
	}

	switch c.AI.Provider {
	case "none", "anthropic", "openai":
	default:
		return fmt.Errorf("ai.provider must be anthropic, openai or none, got %q", c.AI.Provider)
	}
	if c.AI.Enabled() && c.AI.APIKey == "" {
		return fmt.Errorf("ai.api_key is required when ai.provider is %s", c.AI.Provider)
	}

	switch c.Telemetry.MetricsExporter {
	case "prometheus", "otlp":
	default:
		return fmt.Errorf("telemetry.metrics_exporter must be prometheus or otlp, got %q", c.Telemetry.MetricsExporter)
	}
	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	if c.Scheduler.GenerateHour < 0 || c.Scheduler.GenerateHour > 23 {
		return fmt.Errorf("scheduler.generate_hour must be between 0 and 23")
	}
	if c.Scheduler.GenerateMinute < 0 || c.Scheduler.GenerateMinute > 59 {
		return fmt.Errorf("scheduler.generate_minute must be between 0 and 59")
	}

	if c.Storage.Enabled && c.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required when storage is enabled")
	}

	if _, err := url.Parse(c.App.BaseURL); err != nil {
		return fmt.Errorf("app.base_url is invalid: %w", err)
	}

	if c.App.IsProduction() {
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Admin.BootstrapPassword == DefaultAdminPassword {
			return fmt.Errorf("admin.bootstrap_password must be changed in production")
		}
		for _, origin := range c.HTTP.CORSAllowedOrigins {
			if origin == "*" {
				return fmt.Errorf("http.cors_allowed_origins cannot be '*' in production")
			}
		}
	}

	return nil
}

// Warnings lists insecure settings that are tolerated outside production
func (c *Config) Warnings() []string {
	var out []string
	if len(c.JWT.Secret) < 32 {
		out = append(out, "jwt.secret is shorter than 32 characters")
	}
	if c.Admin.BootstrapPassword == DefaultAdminPassword {
		out = append(out, "admin.bootstrap_password uses the default value")
	}
	if c.JWT.RefreshSecret == "" {
		out = append(out, "jwt.refresh_secret is empty, access secret is reused")
	}
	return out
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

package middleware

import (
	"cmp"
	"context"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/webstudio/backend/internal/infrastructure/logger"
)

const (
	// RequestIDKey is the gin key holding the request id
	RequestIDKey = logger.RequestIDKey
	// RequestIDHeader carries the request id in and out
	RequestIDHeader = "X-Request-ID"
	// IdempotencyKeyHeader lets the contact form deduplicate double submits
	IdempotencyKeyHeader = "Idempotency-Key"

	maxRequestIDLen = 64
)

// RequestID reuses a sane incoming X-Request-ID or mints a UUID, and echoes it
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}
		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// GetRequestID returns the id set by RequestID, falling back to the header
func GetRequestID(c *gin.Context) string {
	return cmp.Or(c.GetString(RequestIDKey), c.GetHeader(RequestIDHeader))
}

// CORSConfig lists what cross-origin callers may do
type CORSConfig struct {
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	ExposeHeaders    []string
	AllowCredentials bool
	MaxAge           time.Duration
}

// DefaultCORSConfig allows no origin until AllowOrigins is filled in
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization", RequestIDHeader, IdempotencyKeyHeader, "Accept", "Accept-Language", "Origin"},
		ExposeHeaders:    []string{RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
}

// CORS uses DefaultCORSConfig
func CORS() gin.HandlerFunc { return CORSWithConfig(DefaultCORSConfig()) }

// CORSWithConfig answers preflights itself and decorates allowed origins.
// A "*" origin is never combined with credentials.
func CORSWithConfig(cfg CORSConfig) gin.HandlerFunc {
	wildcard := slices.Contains(cfg.AllowOrigins, "*")
	static := map[string]string{
		"Access-Control-Allow-Headers": strings.Join(cfg.AllowHeaders, ", "),
		"Access-Control-Allow-Methods": strings.Join(cfg.AllowMethods, ", "),
	}
	if len(cfg.ExposeHeaders) > 0 {
		static["Access-Control-Expose-Headers"] = strings.Join(cfg.ExposeHeaders, ", ")
	}
	if cfg.MaxAge > 0 {
		static["Access-Control-Max-Age"] = strconv.Itoa(int(cfg.MaxAge / time.Second))
	}

	allow := func(origin string) string {
		switch {
		case wildcard:
			return "*"
		case origin != "" && slices.Contains(cfg.AllowOrigins, origin):
			return origin
		}
		return ""
	}

	return func(c *gin.Context) {
		if origin := allow(c.GetHeader("Origin")); origin != "" {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
			if cfg.AllowCredentials && origin != "*" {
				h.Set("Access-Control-Allow-Credentials", "true")
			}
			for k, v := range static {
				h.Set(k, v)
			}
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// SecurityConfig selects the optional security headers
type SecurityConfig struct {
	HSTSEnabled           bool
	HSTSMaxAge            int // seconds
	HSTSIncludeSubdomains bool

	CSPEnabled   bool
	CSPDirective string

	PermissionsPolicyEnabled   bool
	PermissionsPolicyDirective string
}

// DefaultSecurityConfig suits the public site. HSTS is off until TLS
// terminates in front of the app.
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		HSTSMaxAge:            365 * 24 * 60 * 60,
		HSTSIncludeSubdomains: true,

		CSPEnabled:   true,
		CSPDirective: "default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data: https:; font-src 'self' data:; connect-src 'self'; frame-ancestors 'none'; base-uri 'self'; form-action 'self'",

		PermissionsPolicyEnabled:   true,
		PermissionsPolicyDirective: "accelerometer=(), camera=(), geolocation=(), gyroscope=(), magnetometer=(), microphone=(), payment=(), usb=()",
	}
}

// Secure uses DefaultSecurityConfig
func Secure() gin.HandlerFunc { return SecureWithConfig(DefaultSecurityConfig()) }

// SecureWithConfig sets the security headers on every response
func SecureWithConfig(cfg SecurityConfig) gin.HandlerFunc {
	headers := [][2]string{
		{"X-Frame-Options", "DENY"},
		{"X-Content-Type-Options", "nosniff"},
		{"Referrer-Policy", "strict-origin-when-cross-origin"},
	}
	if cfg.CSPEnabled && cfg.CSPDirective != "" {
		headers = append(headers, [2]string{"Content-Security-Policy", cfg.CSPDirective})
	}
	if cfg.HSTSEnabled {
		v := "max-age=" + strconv.Itoa(cfg.HSTSMaxAge)
		if cfg.HSTSIncludeSubdomains {
			v += "; includeSubDomains"
		}
		headers = append(headers, [2]string{"Strict-Transport-Security", v})
	}
	if cfg.PermissionsPolicyEnabled && cfg.PermissionsPolicyDirective != "" {
		headers = append(headers, [2]string{"Permissions-Policy", cfg.PermissionsPolicyDirective})
	}

	return func(c *gin.Context) {
		for _, h := range headers {
			c.Header(h[0], h[1])
		}
		c.Next()
	}
}

// Timeout bounds the request context. Handlers and repositories observe the
// deadline through ctx; the response itself is not cut off.
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d > 0 {
			ctx, cancel := context.WithTimeout(c.Request.Context(), d)
			defer cancel()
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}

package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/webstudio/backend/internal/infrastructure/auth"
	"github.com/webstudio/backend/internal/interfaces/http/dto"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Admin permissions are "<resource>:read" and "<resource>:write", see
// identity.AllPermissions. Admins hold all of them, editors only content and blog.

// RequireResource guards an admin group. Safe methods need "<resource>:read",
// anything that changes state needs "<resource>:write".
func RequireResource(resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		perm := resource + ":" + methodToAction(c.Request.Method)
		authorize(c, []string{perm}, func(claims *auth.Claims) bool {
			return claims.HasPermission(perm)
		})
	}
}

// RequirePermission guards a single route with one permission code
func RequirePermission(permission string) gin.HandlerFunc {
	return RequireAnyPermission(permission)
}

// RequireAnyPermission lets the request through when any code is granted
func RequireAnyPermission(permissions ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authorize(c, permissions, func(claims *auth.Claims) bool {
			return claims.HasAnyPermission(permissions...)
		})
	}
}

func authorize(c *gin.Context, required []string, granted func(*auth.Claims) bool) {
	claims := Claims(c)
	switch {
	case claims == nil:
		deny(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Authentication required", required)
	case !granted(claims):
		deny(c, http.StatusForbidden, dto.ErrCodeForbidden, "Insufficient permissions", required)
	default:
		c.Next()
	}
}

// deny adds a permission.denied event to the request span
func deny(c *gin.Context, status int, code, message string, required []string) {
	trace.SpanFromContext(c.Request.Context()).AddEvent("permission.denied", trace.WithAttributes(
		attribute.String("user.id", UserID(c)),
		attribute.String("permission.required", strings.Join(required, ",")),
		attribute.Int("http.status_code", status),
	))
	c.AbortWithStatusJSON(status, dto.Fail(code, message, GetRequestID(c)))
}

func methodToAction(method string) string {
	if method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions {
		return "read"
	}
	return "write"
}

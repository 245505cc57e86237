package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webstudio/backend/internal/domain/identity"
	"github.com/webstudio/backend/internal/infrastructure/auth"
	"github.com/webstudio/backend/internal/interfaces/http/dto"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func withClaims(role identity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ClaimsKey, &auth.Claims{UserID: "u-1", Role: string(role), Permissions: role.Permissions()})
		c.Set(UserIDKey, "u-1")
		c.Next()
	}
}

func TestRequirePermission(t *testing.T) {
	tests := []struct {
		name   string
		role   identity.Role
		perm   string
		status int
	}{
		{"admin manages invoices", identity.RoleAdmin, identity.PermInvoiceWrite, http.StatusOK},
		{"editor writes blog", identity.RoleEditor, identity.PermBlogWrite, http.StatusOK},
		{"editor cannot read invoices", identity.RoleEditor, identity.PermInvoiceRead, http.StatusForbidden},
		{"editor cannot manage users", identity.RoleEditor, identity.PermUserWrite, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := okRouter(withClaims(tt.role), RequirePermission(tt.perm))
			w := get(router, "/test", nil)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusForbidden {
				assert.Contains(t, w.Body.String(), dto.ErrCodeForbidden)
			}
		})
	}
}

func TestRequirePermission_NoClaims(t *testing.T) {
	w := get(okRouter(RequirePermission(identity.PermLeadRead)), "/test", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), dto.ErrCodeUnauthorized)
}

func TestRequireAnyPermission(t *testing.T) {
	router := okRouter(withClaims(identity.RoleEditor), RequireAnyPermission(identity.PermInvoiceRead, identity.PermLeadRead))
	assert.Equal(t, http.StatusOK, get(router, "/test", nil).Code)
}

func TestRequireResource(t *testing.T) {
	router := gin.New()
	router.Use(withClaims(identity.RoleEditor))
	leads := router.Group("/leads", RequireResource("lead"))
	leads.GET("", func(c *gin.Context) { c.Status(http.StatusOK) })
	leads.PATCH("/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, get(router, "/leads", nil).Code)

	req := httptest.NewRequest(http.MethodPatch, "/leads/1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireResource_RecordsDenialOnSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	router := gin.New()
	router.Use(func(c *gin.Context) {
		ctx, span := tp.Tracer("test").Start(c.Request.Context(), "request")
		defer span.End()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})
	router.Use(withClaims(identity.RoleEditor))
	router.DELETE("/invoices/:id", RequireResource("invoice"), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodDelete, "/invoices/42", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusForbidden, w.Code)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	events := spans[0].Events()
	require.Len(t, events, 1)
	assert.Equal(t, "permission.denied", events[0].Name)
	assert.Contains(t, events[0].Attributes, attribute.String("permission.required", "invoice:write"))
}

func TestMethodToAction(t *testing.T) {
	assert.Equal(t, "read", methodToAction(http.MethodGet))
	assert.Equal(t, "read", methodToAction(http.MethodHead))
	assert.Equal(t, "write", methodToAction(http.MethodPost))
	assert.Equal(t, "write", methodToAction(http.MethodPut))
	assert.Equal(t, "write", methodToAction(http.MethodDelete))
	assert.Equal(t, "write", methodToAction(http.MethodPatch))
}

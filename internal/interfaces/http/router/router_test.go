package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webstudio/backend/internal/interfaces/http/handler"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine http.Handler, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestAPI_Prefix(t *testing.T) {
	assert.Equal(t, "/api/v1", NewAPI().Prefix())
	assert.Equal(t, "/api/v2", NewAPI(WithVersion("v2")).Prefix())
}

func TestAPI_MountsAreasWithGuards(t *testing.T) {
	var order []string
	mark := func(name string) gin.HandlerFunc {
		return func(c *gin.Context) {
			order = append(order, name)
			c.Next()
		}
	}

	engine := gin.New()
	NewAPI(WithCommon(mark("common"), nil)).Add(
		Area{Name: "admin", Prefix: "/admin", Guards: []gin.HandlerFunc{nil, mark("auth")}, Routes: func(rg *gin.RouterGroup) {
			rg.GET("/leads", func(c *gin.Context) { c.String(http.StatusOK, "leads") })
		}},
		Area{Name: "empty", Prefix: "/empty"},
	).Mount(engine)
	engine.GET("/outside", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := serve(engine, http.MethodGet, "/api/v1/admin/leads")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "leads", w.Body.String())
	assert.Equal(t, []string{"common", "auth"}, order)

	serve(engine, http.MethodGet, "/outside")
	assert.Len(t, order, 2)
}

func TestChain(t *testing.T) {
	ok := func(*gin.Context) {}
	assert.Len(t, chain(nil, ok, nil, ok), 2)
	assert.Empty(t, chain())
}

func denyAll(c *gin.Context) {
	c.AbortWithStatus(http.StatusUnauthorized)
}

func newMountedEngine(t *testing.T, withSite bool) (*gin.Engine, *int) {
	t.Helper()
	limited := 0
	h := Handlers{System: handler.NewSystemHandler("Webstudio API", "test", zap.NewNop())}
	if withSite {
		h.Site = handler.NewSiteHandler(nil, nil, nil, nil, nil, zap.NewNop())
	}
	g := Guards{
		Auth: denyAll,
		FormLimit: func(c *gin.Context) {
			limited++
			c.AbortWithStatus(http.StatusTooManyRequests)
		},
	}

	engine := gin.New()
	require.NotPanics(t, func() { Mount(engine, h, g) })
	return engine, &limited
}

func TestMount_SystemEndpoints(t *testing.T) {
	engine, _ := newMountedEngine(t, false)

	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/health").Code)
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/ready").Code)
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/v1/system/ping").Code)
	assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/metrics").Code)
	assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/swagger/index.html").Code)
}

func TestMount_GuardsApply(t *testing.T) {
	engine, limited := newMountedEngine(t, false)

	for _, path := range []string{
		"/api/v1/admin/leads",
		"/api/v1/admin/services",
		"/api/v1/admin/audits",
		"/api/v1/admin/invoices",
		"/api/v1/auth/me",
	} {
		assert.Equal(t, http.StatusUnauthorized, serve(engine, http.MethodGet, path).Code, path)
	}

	assert.Equal(t, http.StatusTooManyRequests, serve(engine, http.MethodPost, "/api/v1/public/leads").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(engine, http.MethodPost, "/api/v1/public/audits").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(engine, http.MethodPost, "/api/v1/auth/login").Code)
	assert.Equal(t, 3, *limited)
}

func TestMount_UnknownRouteWithoutSite(t *testing.T) {
	engine, _ := newMountedEngine(t, false)

	w := serve(engine, http.MethodGet, "/api/v1/nothing")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_NOT_FOUND")
}

func TestMount_SiteRoutesCoexistWithAPI(t *testing.T) {
	engine, _ := newMountedEngine(t, true)

	w := serve(engine, http.MethodGet, "/")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/cs", w.Header().Get("Location"))

	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/static/site.css").Code)
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/health").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(engine, http.MethodGet, "/api/v1/admin/leads").Code)

	w = serve(engine, http.MethodGet, "/api/v1/nothing")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_NOT_FOUND")
}

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"

	"github.com/webstudio/backend/internal/infrastructure/telemetry"
)

func setupTestMeter(t *testing.T) (metric.Meter, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	p := telemetry.NewWithReader(reader)
	t.Cleanup(func() { _ = p.Shutdown(context.Background()) })
	return p.Meter("http.server"), reader
}

func findMetric(t *testing.T, reader *sdkmetric.ManualReader, name string) *metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func TestHTTPMetrics_DisabledIsPassthrough(t *testing.T) {
	w := get(okRouter(HTTPMetrics(nil, zap.NewNop())), "/test", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHTTPMetrics_RecordsRoutePattern(t *testing.T) {
	meter, reader := setupTestMeter(t)

	router := gin.New()
	router.Use(HTTPMetrics(meter, zap.NewNop()))
	router.GET("/blog/:slug", func(c *gin.Context) { c.String(http.StatusOK, "post body") })
	router.POST("/api/v1/public/leads", func(c *gin.Context) { c.Status(http.StatusCreated) })

	get(router, "/cs/blog/a", nil)
	get(router, "/blog/first-post", nil)
	get(router, "/blog/second-post", nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/public/leads", strings.NewReader(`{"name":"Jana"}`))
	router.ServeHTTP(httptest.NewRecorder(), req)

	total := findMetric(t, reader, "http_server_request_total")
	require.NotNil(t, total)
	sum, ok := total.Data.(metricdata.Sum[int64])
	require.True(t, ok)

	byRoute := map[string]int64{}
	for _, dp := range sum.DataPoints {
		route, _ := dp.Attributes.Value(telemetry.AttrHTTPRoute)
		byRoute[route.AsString()] += dp.Value
	}
	assert.Equal(t, int64(2), byRoute["/blog/:slug"])
	assert.Equal(t, int64(1), byRoute["/api/v1/public/leads"])
	assert.Equal(t, int64(1), byRoute["unknown"])

	duration := findMetric(t, reader, "http_server_request_duration_seconds")
	require.NotNil(t, duration)
	hist, ok := duration.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	assert.Equal(t, uint64(4), count)

	reqSize := findMetric(t, reader, "http_server_request_size_bytes")
	require.NotNil(t, reqSize)

	active := findMetric(t, reader, "http_server_active_requests")
	require.NotNil(t, active)
	activeSum := active.Data.(metricdata.Sum[int64])
	for _, dp := range activeSum.DataPoints {
		assert.Equal(t, int64(0), dp.Value)
	}
}

func TestHTTPMetrics_StatusCodeLabel(t *testing.T) {
	meter, reader := setupTestMeter(t)

	router := gin.New()
	router.Use(HTTPMetrics(meter, zap.NewNop()))
	router.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	get(router, "/missing", nil)

	total := findMetric(t, reader, "http_server_request_total")
	require.NotNil(t, total)
	sum := total.Data.(metricdata.Sum[int64])
	require.Len(t, sum.DataPoints, 1)
	status, ok := sum.DataPoints[0].Attributes.Value(telemetry.AttrHTTPStatusCode)
	require.True(t, ok)
	assert.Equal(t, attribute.IntValue(http.StatusNotFound), status)
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	t.Cleanup(func() {
		_ = tp.Shutdown(t.Context())
		otel.SetTracerProvider(prev)
	})
	return sr
}

func serverSpan(t *testing.T, sr *tracetest.SpanRecorder) sdktrace.ReadOnlySpan {
	t.Helper()
	for _, span := range sr.Ended() {
		if span.SpanKind() == trace.SpanKindServer {
			return span
		}
	}
	t.Fatal("server span not found")
	return nil
}

func spanAttr(span sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func tracedRouter() *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), Tracing(TracingConfig{ServiceName: "webstudio-test", Enabled: true}), SpanAttributes())
	return router
}

func TestTracing_Disabled(t *testing.T) {
	sr := setupTestTracer(t)

	router := okRouter(Tracing(TracingConfig{Enabled: false}), SpanAttributes())
	w := get(router, "/test", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, sr.Ended())
}

func TestTracing_SpanAttributes(t *testing.T) {
	sr := setupTestTracer(t)

	router := tracedRouter()
	router.GET("/:locale/blog/:slug", Locale(nil), func(c *gin.Context) {
		c.Set(UserIDKey, "user-7")
		c.Status(http.StatusOK)
	})

	get(router, "/de/blog/hello", map[string]string{RequestIDHeader: "req-abc"})

	span := serverSpan(t, sr)
	v, ok := spanAttr(span, "request_id")
	require.True(t, ok)
	assert.Equal(t, "req-abc", v.AsString())

	v, ok = spanAttr(span, "user_id")
	require.True(t, ok)
	assert.Equal(t, "user-7", v.AsString())

	v, ok = spanAttr(span, "locale")
	require.True(t, ok)
	assert.Equal(t, "de", v.AsString())

	assert.NotEqual(t, codes.Error, span.Status().Code)
}

func TestTracing_ServerErrorMarksSpan(t *testing.T) {
	sr := setupTestTracer(t)

	router := tracedRouter()
	router.GET("/boom", func(c *gin.Context) { c.Status(http.StatusBadGateway) })

	get(router, "/boom", nil)

	span := serverSpan(t, sr)
	assert.Equal(t, codes.Error, span.Status().Code)
}

func TestTracing_ClientErrorIsNotSpanError(t *testing.T) {
	sr := setupTestTracer(t)

	router := tracedRouter()
	router.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	get(router, "/missing", nil)

	assert.NotEqual(t, codes.Error, serverSpan(t, sr).Status().Code)
}

func TestSpanRequestID_Truncates(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'a'
	}
	c.Set(RequestIDKey, string(long))
	assert.Len(t, spanRequestID(c), MaxRequestIDLength)
}

package middleware

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/webstudio/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// unmatchedRoute labels requests no route matched, e.g. scanners probing /wp-admin
const unmatchedRoute = "unknown"

// Byte buckets; the largest answers are invoice PDFs
var sizeBuckets = []float64{128, 512, 2 << 10, 8 << 10, 32 << 10, 128 << 10, 512 << 10, 2 << 20, 8 << 20}

type httpInstruments struct {
	requests  *telemetry.Counter
	latency   *telemetry.Histogram
	reqBytes  *telemetry.Histogram
	respBytes *telemetry.Histogram
	inFlight  metric.Int64UpDownCounter
}

func newHTTPInstruments(meter metric.Meter) (*httpInstruments, error) {
	var (
		in   httpInstruments
		err  error
		errs []error
	)
	in.requests, err = telemetry.NewCounter(meter, "http_server_request_total", "HTTP requests by route and status", "{request}")
	errs = append(errs, err)
	in.latency, err = telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name: "http_server_request_duration_seconds", Description: "Request latency", Unit: "s",
		Boundaries: telemetry.HTTPDurationBuckets,
	})
	errs = append(errs, err)
	in.reqBytes, err = telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name: "http_server_request_size_bytes", Description: "Request body size", Unit: "By",
		Boundaries: sizeBuckets,
	})
	errs = append(errs, err)
	in.respBytes, err = telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name: "http_server_response_size_bytes", Description: "Response body size", Unit: "By",
		Boundaries: sizeBuckets,
	})
	errs = append(errs, err)
	in.inFlight, err = meter.Int64UpDownCounter("http_server_active_requests",
		metric.WithDescription("Requests being served"), metric.WithUnit("{request}"))
	errs = append(errs, err)

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &in, nil
}

// HTTPMetrics counts requests and measures latency and body sizes per route
// pattern ("/blog/:slug", never the concrete path). A nil meter, or one that
// fails to create instruments, yields a passthrough.
func HTTPMetrics(meter metric.Meter, logger *zap.Logger) gin.HandlerFunc {
	if meter == nil {
		return passthrough
	}
	in, err := newHTTPInstruments(meter)
	if err != nil {
		if logger != nil {
			logger.Error("HTTP metrics disabled", zap.Error(err))
		}
		return passthrough
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()
		in.inFlight.Add(ctx, 1)
		c.Next()
		in.inFlight.Add(ctx, -1)

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		labels := []attribute.KeyValue{
			telemetry.AttrHTTPMethod.String(c.Request.Method),
			telemetry.AttrHTTPRoute.String(route),
		}
		in.requests.Inc(ctx, append(labels, telemetry.AttrHTTPStatusCode.Int(c.Writer.Status()))...)
		in.latency.RecordDuration(ctx, time.Since(start), labels...)
		if n := c.Request.ContentLength; n > 0 {
			in.reqBytes.Record(ctx, float64(n), labels...)
		}
		if n := c.Writer.Size(); n > 0 {
			in.respBytes.Record(ctx, float64(n), labels...)
		}
	}
}

func passthrough(c *gin.Context) {
	c.Next()
}

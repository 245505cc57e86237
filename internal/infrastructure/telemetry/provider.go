// Package telemetry wires OpenTelemetry for the backend: OTLP traces and
// logs, metrics scraped by Prometheus (or pushed over OTLP), plus the
// business counters and gorm instrumentation built on top.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Metric exporters
const (
	ExporterPrometheus = "prometheus"
	ExporterOTLP       = "otlp"
)

const defaultExportInterval = time.Minute

// Config mirrors the [telemetry] section of config.toml
type Config struct {
	Enabled           bool
	CollectorEndpoint string
	Insecure          bool
	SamplingRatio     float64
	MetricsExporter   string
	ExportInterval    time.Duration
	ServiceName       string
	ServiceVersion    string
}

// Providers owns the SDK providers installed as otel globals. A disabled
// config yields an empty value whose accessors fall back to the no-op globals.
type Providers struct {
	traces   *sdktrace.TracerProvider
	metrics  *sdkmetric.MeterProvider
	logs     *sdklog.LoggerProvider
	registry *prometheus.Registry
	logger   *zap.Logger
}

// Setup builds traces, metrics and logs against one service resource and
// registers them globally
func Setup(ctx context.Context, cfg Config, logger *zap.Logger) (*Providers, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Providers{logger: logger}
	if !cfg.Enabled {
		logger.Info("Telemetry disabled")
		return p, nil
	}

	res, err := serviceResource(cfg.ServiceName, cfg.ServiceVersion)
	if err != nil {
		return nil, err
	}

	if err := p.setupTraces(ctx, cfg, res); err != nil {
		return nil, err
	}
	if err := p.setupMetrics(ctx, cfg, res); err != nil {
		_ = p.Shutdown(ctx)
		return nil, err
	}
	if err := p.setupLogs(ctx, cfg, res); err != nil {
		_ = p.Shutdown(ctx)
		return nil, err
	}

	logger.Info("Telemetry initialized",
		zap.String("collector_endpoint", cfg.CollectorEndpoint),
		zap.String("metrics_exporter", p.exporterName(cfg)),
		zap.Float64("sampling_ratio", cfg.SamplingRatio),
	)
	return p, nil
}

func (p *Providers) setupTraces(ctx context.Context, cfg Config, res *resource.Resource) error {
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.CollectorEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}

	p.traces = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(cfg.SamplingRatio)),
	)
	otel.SetTracerProvider(p.traces)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))
	return nil
}

func (p *Providers) setupMetrics(ctx context.Context, cfg Config, res *resource.Resource) error {
	var reader sdkmetric.Reader
	switch cfg.MetricsExporter {
	case "", ExporterPrometheus:
		p.registry = prometheus.NewRegistry()
		exporter, err := promexporter.New(promexporter.WithRegisterer(p.registry))
		if err != nil {
			return fmt.Errorf("failed to create prometheus exporter: %w", err)
		}
		reader = exporter
	case ExporterOTLP:
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.CollectorEndpoint)}
		if cfg.Insecure {
			opts = append(opts, otlpmetricgrpc.WithInsecure())
		}
		exporter, err := otlpmetricgrpc.New(ctx, opts...)
		if err != nil {
			return fmt.Errorf("failed to create OTLP metric exporter: %w", err)
		}
		interval := cfg.ExportInterval
		if interval <= 0 {
			interval = defaultExportInterval
		}
		reader = sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))
	default:
		return fmt.Errorf("unknown metrics exporter %q", cfg.MetricsExporter)
	}

	p.metrics = sdkmetric.NewMeterProvider(sdkmetric.WithResource(res), sdkmetric.WithReader(reader))
	otel.SetMeterProvider(p.metrics)
	return nil
}

func (p *Providers) setupLogs(ctx context.Context, cfg Config, res *resource.Resource) error {
	opts := []otlploggrpc.Option{otlploggrpc.WithEndpoint(cfg.CollectorEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlploggrpc.WithInsecure())
	}
	exporter, err := otlploggrpc.New(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to create OTLP log exporter: %w", err)
	}

	p.logs = sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
	)
	global.SetLoggerProvider(p.logs)
	return nil
}

func (p *Providers) exporterName(cfg Config) string {
	if cfg.MetricsExporter == "" {
		return ExporterPrometheus
	}
	return cfg.MetricsExporter
}

// NewWithReader returns metrics-only providers reading into reader. Tests
// pair it with sdkmetric.NewManualReader.
func NewWithReader(reader sdkmetric.Reader) *Providers {
	return &Providers{
		metrics: sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)),
		logger:  zap.NewNop(),
	}
}

// NewWithLogProcessor returns logs-only providers feeding processor
func NewWithLogProcessor(processor sdklog.Processor) *Providers {
	return &Providers{
		logs:   sdklog.NewLoggerProvider(sdklog.WithProcessor(processor)),
		logger: zap.NewNop(),
	}
}

func sampler(ratio float64) sdktrace.Sampler {
	switch {
	case ratio >= 1:
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	case ratio <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
	}
}

func serviceResource(name, version string) (*resource.Resource, error) {
	if version == "" {
		version = "dev"
	}
	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(name),
		semconv.ServiceVersion(version),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}

func (p *Providers) TracingEnabled() bool { return p.traces != nil }
func (p *Providers) MetricsEnabled() bool { return p.metrics != nil }
func (p *Providers) LogsEnabled() bool    { return p.logs != nil }

// Meter falls back to the global (no-op) meter provider when metrics are off
func (p *Providers) Meter(name string, opts ...metric.MeterOption) metric.Meter {
	if p.metrics == nil {
		return otel.GetMeterProvider().Meter(name, opts...)
	}
	return p.metrics.Meter(name, opts...)
}

func (p *Providers) Tracer(name string, opts ...trace.TracerOption) trace.Tracer {
	if p.traces == nil {
		return otel.GetTracerProvider().Tracer(name, opts...)
	}
	return p.traces.Tracer(name, opts...)
}

// MetricsHandler serves /metrics. Nil unless the prometheus exporter is active.
func (p *Providers) MetricsHandler() http.Handler {
	if p.registry == nil {
		return nil
	}
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// LogCore forwards zap entries at or above level to the OTLP log pipeline.
// Tee it with the console core; without logs it is a nop core.
func (p *Providers) LogCore(name string, level zapcore.Level) zapcore.Core {
	if p.logs == nil {
		return zapcore.NewNopCore()
	}
	return &minLevelCore{
		Core: otelzap.NewCore(name, otelzap.WithLoggerProvider(p.logs)),
		min:  level,
	}
}

// TeeLogger returns logger extended with LogCore at level
func (p *Providers) TeeLogger(logger *zap.Logger, name string, level zapcore.Level) *zap.Logger {
	if p.logs == nil {
		return logger
	}
	otelCore := p.LogCore(name, level)
	return logger.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, otelCore)
	}))
}

// ForceFlush pushes buffered metrics and spans
func (p *Providers) ForceFlush(ctx context.Context) error {
	var errs []error
	if p.metrics != nil {
		errs = append(errs, p.metrics.ForceFlush(ctx))
	}
	if p.traces != nil {
		errs = append(errs, p.traces.ForceFlush(ctx))
	}
	return errors.Join(errs...)
}

// Shutdown flushes and stops every provider, waiting at most ten seconds
func (p *Providers) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var errs []error
	if p.traces != nil {
		if err := p.traces.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("traces: %w", err))
		}
	}
	if p.metrics != nil {
		if err := p.metrics.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("metrics: %w", err))
		}
	}
	if p.logs != nil {
		if err := p.logs.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("logs: %w", err))
		}
	}
	return errors.Join(errs...)
}

// minLevelCore gives the otelzap core, which exports every level, a floor
type minLevelCore struct {
	zapcore.Core
	min zapcore.Level
}

func (c *minLevelCore) Enabled(lvl zapcore.Level) bool {
	return lvl >= c.min && c.Core.Enabled(lvl)
}

func (c *minLevelCore) Check(entry zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !c.Enabled(entry.Level) {
		return ce
	}
	return c.Core.Check(entry, ce)
}

func (c *minLevelCore) With(fields []zapcore.Field) zapcore.Core {
	return &minLevelCore{Core: c.Core.With(fields), min: c.min}
}

package telemetry

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBConfig controls database instrumentation.
type DBConfig struct {
	Tracing         bool          // register otelgorm spans
	LogFullSQL      bool          // include query variables in spans. Never in production.
	SlowQueryThresh time.Duration // default 200ms
	DBSystem        string        // default postgresql
}

// DBInstrumentation is a gorm plugin that records query metrics and, when tracing is on,
// annotates otelgorm spans with table, rows and slow-query markers.
type DBInstrumentation struct {
	config DBConfig
	logger *zap.Logger

	queryTotal     *Counter
	queryDuration  *Histogram
	slowQueryTotal *Counter
	pool           metric.Int64ObservableGauge
	meter          metric.Meter
	registration   metric.Registration
}

type startKey struct{}

var dbOperations = []string{"create", "query", "update", "delete", "row", "raw"}

// NewDBInstrumentation builds the instruments on meter
func NewDBInstrumentation(meter metric.Meter, cfg DBConfig, logger *zap.Logger) (*DBInstrumentation, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}
	if cfg.DBSystem == "" {
		cfg.DBSystem = "postgresql"
	}

	d := &DBInstrumentation{config: cfg, logger: logger, meter: meter}
	var err error
	if d.queryTotal, err = NewCounter(meter, "db_query_total", "Database queries by operation", "{query}"); err != nil {
		return nil, err
	}
	if d.queryDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "db_query_duration_seconds",
		Description: "Database query latency",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if d.slowQueryTotal, err = NewCounter(meter, "db_slow_query_total", "Queries slower than the threshold", "{query}"); err != nil {
		return nil, err
	}
	if d.pool, err = meter.Int64ObservableGauge("db_pool_connections",
		metric.WithDescription("Connections in the pool by state"),
		metric.WithUnit("{connection}"),
	); err != nil {
		return nil, err
	}
	return d, nil
}

// Name implements gorm.Plugin
func (d *DBInstrumentation) Name() string {
	return "webstudio:telemetry"
}

// Initialize implements gorm.Plugin
func (d *DBInstrumentation) Initialize(db *gorm.DB) error {
	if d.config.Tracing {
		opts := []otelgorm.Option{otelgorm.WithDBName(d.config.DBSystem)}
		if !d.config.LogFullSQL {
			opts = append(opts, otelgorm.WithoutQueryVariables())
		}
		if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
			return err
		}
	}

	cb := db.Callback()
	before := func(tx *gorm.DB) {
		if tx.Statement.Context != nil {
			tx.Statement.Context = context.WithValue(tx.Statement.Context, startKey{}, time.Now())
		}
	}
	for _, op := range dbOperations {
		after := d.afterCallback(op)
		var err error
		switch op {
		case "create":
			if err = cb.Create().Before("gorm:create").Register("telemetry:before_create", before); err == nil {
				err = cb.Create().After("gorm:create").Register("telemetry:after_create", after)
			}
		case "query":
			if err = cb.Query().Before("gorm:query").Register("telemetry:before_query", before); err == nil {
				err = cb.Query().After("gorm:query").Register("telemetry:after_query", after)
			}
		case "update":
			if err = cb.Update().Before("gorm:update").Register("telemetry:before_update", before); err == nil {
				err = cb.Update().After("gorm:update").Register("telemetry:after_update", after)
			}
		case "delete":
			if err = cb.Delete().Before("gorm:delete").Register("telemetry:before_delete", before); err == nil {
				err = cb.Delete().After("gorm:delete").Register("telemetry:after_delete", after)
			}
		case "row":
			if err = cb.Row().Before("gorm:row").Register("telemetry:before_row", before); err == nil {
				err = cb.Row().After("gorm:row").Register("telemetry:after_row", after)
			}
		case "raw":
			if err = cb.Raw().Before("gorm:raw").Register("telemetry:before_raw", before); err == nil {
				err = cb.Raw().After("gorm:raw").Register("telemetry:after_raw", after)
			}
		}
		if err != nil {
			return err
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	d.registration, err = d.meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := sqlDB.Stats()
		o.ObserveInt64(d.pool, int64(stats.Idle), metric.WithAttributes(AttrDBState.String("idle")))
		o.ObserveInt64(d.pool, int64(stats.InUse), metric.WithAttributes(AttrDBState.String("in_use")))
		o.ObserveInt64(d.pool, int64(stats.OpenConnections), metric.WithAttributes(AttrDBState.String("open")))
		return nil
	}, d.pool)
	if err != nil {
		return err
	}

	d.logger.Info("Database instrumentation enabled",
		zap.Bool("tracing", d.config.Tracing),
		zap.Duration("slow_query_threshold", d.config.SlowQueryThresh),
	)
	return nil
}

func (d *DBInstrumentation) afterCallback(op string) func(*gorm.DB) {
	operation := strings.ToUpper(op)
	return func(tx *gorm.DB) {
		ctx := tx.Statement.Context
		if ctx == nil {
			return
		}
		table := tx.Statement.Table
		if table == "" {
			table = "unknown"
		}

		d.queryTotal.Inc(ctx, AttrDBOperation.String(operation))

		var elapsed time.Duration
		if start, ok := ctx.Value(startKey{}).(time.Time); ok {
			elapsed = time.Since(start)
			d.queryDuration.RecordDuration(ctx, elapsed, AttrDBOperation.String(operation))
		}
		slow := elapsed > d.config.SlowQueryThresh
		if slow {
			d.slowQueryTotal.Inc(ctx, AttrDBTable.String(table))
			d.logger.Warn("Slow query",
				zap.String("operation", operation),
				zap.String("table", table),
				zap.Duration("elapsed", elapsed))
		}

		span := trace.SpanFromContext(ctx)
		if !span.IsRecording() {
			return
		}
		span.SetAttributes(
			attribute.String("db.sql.table", table),
			attribute.Int64("db.rows_affected", tx.Statement.RowsAffected),
		)
		if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, tx.Error.Error())
			span.RecordError(tx.Error)
		}
		if slow {
			span.SetAttributes(attribute.Bool("db.slow_query", true))
			span.AddEvent("slow_query_warning", trace.WithAttributes(
				attribute.Int64("duration_ms", elapsed.Milliseconds()),
				attribute.Int64("threshold_ms", d.config.SlowQueryThresh.Milliseconds()),
			))
		}
	}
}

// Close unregisters the pool gauge callback
func (d *DBInstrumentation) Close() error {
	if d.registration == nil {
		return nil
	}
	return d.registration.Unregister()
}

var _ gorm.Plugin = (*DBInstrumentation)(nil)

package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/webstudio/backend/internal/infrastructure/telemetry"
)

type pingRow struct {
	ID   uint
	Name string
}

func TestDBInstrumentation_RecordsQueries(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := telemetry.NewWithReader(reader)

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)

	inst, err := telemetry.NewDBInstrumentation(mp.Meter("db"), telemetry.DBConfig{}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, db.Use(inst))
	defer func() { _ = inst.Close() }()

	require.NoError(t, db.AutoMigrate(&pingRow{}))
	ctx := context.Background()
	require.NoError(t, db.WithContext(ctx).Create(&pingRow{Name: "a"}).Error)
	var rows []pingRow
	require.NoError(t, db.WithContext(ctx).Find(&rows).Error)
	assert.Len(t, rows, 1)

	metrics := collect(t, reader)
	assert.Equal(t, int64(1), sumFor(t, metrics["db_query_total"], attribute.String("db.operation", "CREATE")))
	assert.GreaterOrEqual(t, sumFor(t, metrics["db_query_total"], attribute.String("db.operation", "QUERY")), int64(1))

	_, ok := metrics["db_query_duration_seconds"].Data.(metricdata.Histogram[float64])
	assert.True(t, ok)

	pool, ok := metrics["db_pool_connections"].Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	assert.Len(t, pool.DataPoints, 3)
}

func TestNewDBInstrumentation_NilMeter(t *testing.T) {
	_, err := telemetry.NewDBInstrumentation(nil, telemetry.DBConfig{}, nil)
	assert.ErrorIs(t, err, telemetry.ErrMeterNil)
}

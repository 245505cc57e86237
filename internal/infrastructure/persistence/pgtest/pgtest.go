// Package pgtest starts a throwaway PostgreSQL container with the embedded
// schema applied, for tests tagged "integration".
package pgtest

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/webstudio/backend/internal/infrastructure/migration"
	"github.com/webstudio/backend/migrations"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Image is the PostgreSQL version the production database runs
const Image = "postgres:16-alpine"

// TestDB is a migrated database inside its own container
type TestDB struct {
	DB        *gorm.DB
	SqlDB     *sql.DB
	Container testcontainers.Container
	DSN       string
	t         *testing.T
}

// New starts a fresh container, applies every migration and registers
// cleanup on t.
func New(t *testing.T) *TestDB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, Image,
		tcpostgres.WithDatabase("webstudio_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "failed to start PostgreSQL container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	db, sqlDB := connect(t, dsn)
	tdb := &TestDB{DB: db, SqlDB: sqlDB, Container: container, DSN: dsn, t: t}
	t.Cleanup(tdb.Close)

	m := tdb.Migrator()
	require.NoError(t, m.Up(), "failed to run migrations")
	return tdb
}

// Migrator returns a migrator bound to this database and the embedded schema.
// Closing it is left to the container teardown since closing would also close
// the shared *sql.DB.
func (tdb *TestDB) Migrator() *migration.Migrator {
	tdb.t.Helper()
	m, err := migration.NewFromFS(tdb.SqlDB, migrations.FS, zap.NewNop())
	require.NoError(tdb.t, err, "failed to create migrator")
	return m
}

// Close closes the connection and terminates the container
func (tdb *TestDB) Close() {
	if tdb.SqlDB != nil {
		_ = tdb.SqlDB.Close()
	}
	if tdb.Container != nil {
		if err := tdb.Container.Terminate(context.Background()); err != nil {
			tdb.t.Logf("failed to terminate container: %v", err)
		}
	}
}

// Truncate empties every application table
func (tdb *TestDB) Truncate() {
	tdb.t.Helper()

	var tables []string
	err := tdb.DB.Raw(`SELECT tablename FROM pg_tables
		WHERE schemaname = 'public' AND tablename != 'schema_migrations'`).Scan(&tables).Error
	require.NoError(tdb.t, err, "failed to list tables")

	for _, table := range tables {
		err := tdb.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %q CASCADE", table)).Error
		require.NoError(tdb.t, err, "failed to truncate %s", table)
	}
}

func connect(t *testing.T, dsn string) (*gorm.DB, *sql.DB) {
	t.Helper()

	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	if os.Getenv("TEST_DB_DEBUG") != "" {
		cfg.Logger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(gormpostgres.Open(dsn), cfg)
	require.NoError(t, err, "failed to connect to database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	return db, sqlDB
}

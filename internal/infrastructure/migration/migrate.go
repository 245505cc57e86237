package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// Migrator applies the site schema with golang-migrate
type Migrator struct {
	m   *migrate.Migrate
	log *zap.Logger
}

// Open connects to dsn with a dedicated pool. Migrations come from dir when
// it is set, otherwise from fsys. Close releases the pool.
func Open(dsn string, fsys fs.FS, dir string, logger *zap.Logger) (*Migrator, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("migration: open database: %w", err)
	}

	var mg *Migrator
	if dir != "" {
		mg, err = New(db, dir, logger)
	} else {
		mg, err = NewFromFS(db, fsys, logger)
	}
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return mg, nil
}

// NewFromFS reads migrations from fsys, normally migrations.FS
func NewFromFS(db *sql.DB, fsys fs.FS, logger *zap.Logger) (*Migrator, error) {
	src, err := iofs.New(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("migration: embedded source: %w", err)
	}
	return build(db, logger, func(driverName string, drv database.Driver) (*migrate.Migrate, error) {
		return migrate.NewWithInstance("iofs", src, driverName, drv)
	})
}

// New reads migrations from a directory on disk
func New(db *sql.DB, dir string, logger *zap.Logger) (*Migrator, error) {
	return build(db, logger, func(driverName string, drv database.Driver) (*migrate.Migrate, error) {
		return migrate.NewWithDatabaseInstance("file://"+dir, driverName, drv)
	})
}

func build(db *sql.DB, logger *zap.Logger, open func(string, database.Driver) (*migrate.Migrate, error)) (*Migrator, error) {
	drv, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("migration: postgres driver: %w", err)
	}
	m, err := open("postgres", drv)
	if err != nil {
		return nil, fmt.Errorf("migration: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	m.Log = zapMigrateLog{logger.Named("migrate")}
	return &Migrator{m: m, log: logger}, nil
}

// step runs one golang-migrate operation. ErrNoChange is success.
func (mg *Migrator) step(op string, run func() error, fields ...zap.Field) error {
	mg.log.Info("migration "+op, fields...)
	err := run()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		mg.log.Info("schema unchanged", zap.String("op", op))
		return nil
	case err != nil:
		return fmt.Errorf("migration %s: %w", op, err)
	}
	version, dirty, err := mg.Version()
	if err != nil {
		return err
	}
	mg.log.Info("schema at version", zap.String("op", op), zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

// Up applies every pending migration
func (mg *Migrator) Up() error { return mg.step("up", mg.m.Up) }

// Down rolls the schema back to empty
func (mg *Migrator) Down() error { return mg.step("down", mg.m.Down) }

// Steps moves n migrations forward, or back when n is negative
func (mg *Migrator) Steps(n int) error {
	return mg.step("steps", func() error { return mg.m.Steps(n) }, zap.Int("steps", n))
}

// GoTo migrates up or down to version
func (mg *Migrator) GoTo(version uint) error {
	return mg.step("goto", func() error { return mg.m.Migrate(version) }, zap.Uint("target", version))
}

// Version reports the applied version. An empty schema is version 0.
func (mg *Migrator) Version() (uint, bool, error) {
	version, dirty, err := mg.m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		return 0, false, nil
	case err != nil:
		return 0, false, fmt.Errorf("migration version: %w", err)
	}
	return version, dirty, nil
}

// Force records version without running anything. It only exists to clear
// the dirty flag after a failed migration.
func (mg *Migrator) Force(version int) error {
	mg.log.Warn("forcing schema version", zap.Int("version", version))
	if err := mg.m.Force(version); err != nil {
		return fmt.Errorf("migration force %d: %w", version, err)
	}
	return nil
}

// Close closes the source and the *sql.DB the migrator was built on
func (mg *Migrator) Close() error {
	srcErr, dbErr := mg.m.Close()
	return errors.Join(srcErr, dbErr)
}

type zapMigrateLog struct{ l *zap.Logger }

func (z zapMigrateLog) Printf(format string, v ...any) {
	z.l.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (z zapMigrateLog) Verbose() bool { return z.l.Core().Enabled(zap.DebugLevel) }

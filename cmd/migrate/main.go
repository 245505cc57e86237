// Command migrate manages the PostgreSQL schema. It applies the migrations
// embedded in the binary unless --path points at a directory on disk.
package main

import (
	"fmt"
	"os"

	"github.com/webstudio/backend/internal/infrastructure/config"
	"github.com/webstudio/backend/internal/infrastructure/logger"
	"github.com/webstudio/backend/internal/infrastructure/migration"
	"github.com/webstudio/backend/migrations"
	"go.uber.org/zap"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() (*zap.Logger, error) {
	return logger.New(&logger.Config{
		Level:  logLevel,
		Format: "console",
		Output: "stdout",
	})
}

// openMigrator loads the database settings the server uses and connects
func openMigrator(log *zap.Logger) (*migration.Migrator, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	log.Info("Connecting",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.DBName),
		zap.String("source", sourceName()),
	)
	return migration.Open(cfg.Database.DSN(), migrations.FS, migrationsPath, log)
}

func sourceName() string {
	if migrationsPath != "" {
		return migrationsPath
	}
	return "embedded"
}

// withMigrator runs fn against an open migrator and closes it afterwards
func withMigrator(fn func(m *migration.Migrator, log *zap.Logger) error) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	m, err := openMigrator(log)
	if err != nil {
		log.Error("Failed to create migrator", zap.Error(err))
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Failed to close migrator", zap.Error(err))
		}
	}()

	if err := fn(m, log); err != nil {
		log.Error("Migration command failed", zap.Error(err))
		return err
	}
	return nil
}

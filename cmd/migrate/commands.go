package main

import (
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/webstudio/backend/internal/infrastructure/migration"
	"github.com/webstudio/backend/migrations"
	"go.uber.org/zap"
)

const defaultMigrationsDir = "migrations"

var (
	migrationsPath string
	logLevel       string

	rootCmd = &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the webstudio database schema",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	upCmd = &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(m *migration.Migrator, _ *zap.Logger) error {
				return m.Up()
			})
		},
	}

	downCmd = &cobra.Command{
		Use:   "down",
		Short: "Roll back every migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmDown {
				return fmt.Errorf("refusing to drop the whole schema without --yes")
			}
			return withMigrator(func(m *migration.Migrator, _ *zap.Logger) error {
				return m.Down()
			})
		},
	}
	confirmDown bool

	stepsCmd = &cobra.Command{
		Use:   "steps N",
		Short: "Apply N migrations, or roll back when N is negative",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil || n == 0 {
				return fmt.Errorf("invalid step count %q", args[0])
			}
			return withMigrator(func(m *migration.Migrator, _ *zap.Logger) error {
				return m.Steps(n)
			})
		},
	}

	gotoCmd = &cobra.Command{
		Use:   "goto VERSION",
		Short: "Migrate up or down to VERSION",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid version %q", args[0])
			}
			return withMigrator(func(m *migration.Migrator, _ *zap.Logger) error {
				return m.GoTo(uint(v))
			})
		},
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(m *migration.Migrator, log *zap.Logger) error {
				v, dirty, err := m.Version()
				if err != nil {
					return err
				}
				if v == 0 {
					log.Info("No migrations applied")
					return nil
				}
				log.Info("Current migration version", zap.Uint("version", v), zap.Bool("dirty", dirty))
				return nil
			})
		},
	}

	forceCmd = &cobra.Command{
		Use:   "force VERSION",
		Short: "Mark VERSION as applied and clear the dirty flag",
		Long: `force rewrites schema_migrations without running any SQL. Use it only
after repairing a migration that failed halfway.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid version %q", args[0])
			}
			return withMigrator(func(m *migration.Migrator, _ *zap.Logger) error {
				return m.Force(v)
			})
		},
	}

	listCmd = &cobra.Command{
		Use:   "list",
		Short: "List available migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var fsys fs.FS = migrations.FS
			if migrationsPath != "" {
				fsys = os.DirFS(migrationsPath)
			}
			entries, err := migration.ListMigrations(fsys)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "no migrations found")
				return nil
			}
			for _, e := range entries {
				down := ""
				if !e.HasDown {
					down = "  (no down)"
				}
				fmt.Fprintf(out, "%06d  %s%s\n", e.Version, e.Name, down)
			}
			return nil
		},
	}

	createCmd = &cobra.Command{
		Use:   "create NAME [DESCRIPTION]",
		Short: "Create the next numbered up/down migration pair",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := migrationsPath
			if dir == "" {
				dir = defaultMigrationsDir
			}
			desc := ""
			if len(args) == 2 {
				desc = args[1]
			}
			mf, err := migration.CreateMigration(dir, args[0], desc)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), mf.UpPath)
			fmt.Fprintln(cmd.OutOrStdout(), mf.DownPath)
			return nil
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&migrationsPath, "path", "", "read migrations from this directory instead of the embedded set")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	downCmd.Flags().BoolVar(&confirmDown, "yes", false, "confirm rolling back every migration")

	rootCmd.AddCommand(upCmd, downCmd, stepsCmd, gotoCmd, versionCmd, forceCmd, listCmd, createCmd)
}

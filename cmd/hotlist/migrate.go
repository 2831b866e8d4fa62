package main

import (
	"context"
	"fmt"

	"hotlist/internal/app"
	"hotlist/internal/database/migration"
	"hotlist/migrations"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
			return runMigrate(ctx, cmd, c)
		})
	},
}

var (
	migrateFromDir bool
	migrateStatus  bool
)

func init() {
	migrateCmd.Flags().BoolVar(&migrateFromDir, "from-dir", false, "Read migrations from database.migrations_dir instead of the embedded files")
	migrateCmd.Flags().BoolVar(&migrateStatus, "status", false, "Print applied and pending migrations without applying them")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(ctx context.Context, cmd *cobra.Command, c *app.Container) error {
	r := migration.Runner{FS: migrations.FS, Logger: c.Logger}
	if migrateFromDir {
		r = migration.Runner{Dir: c.Config.Database.MigrationsDir, Logger: c.Logger}
	}

	if migrateStatus {
		plan, err := r.Status(ctx, c.DB.SQLDB())
		if err != nil {
			return fmt.Errorf("migration status: %w", err)
		}
		return printJSON(cmd, plan)
	}

	n, err := r.Run(ctx, c.DB.SQLDB())
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	c.Logger.Info("migrations applied", zap.Int("count", n))
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s)\n", n)
	return err
}

package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/quatton/jobsched/pkg/db"
	"github.com/quatton/jobsched/pkg/qapi/utils"
	"github.com/quatton/jobsched/pkg/qlog"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the account database schema",
	Long: `Applies the account database migrations. Connection settings come from
DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME and DB_SSLMODE.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(cmd.Context(), func(ctx context.Context, database *bun.DB) error {
			return db.Migrate(ctx, database, qlog.NewDefault().Logger)
		})
	},
}

var rollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "Roll back the last migration group",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(cmd.Context(), func(ctx context.Context, database *bun.DB) error {
			return db.Rollback(ctx, database, qlog.NewDefault().Logger)
		})
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "List applied and pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(cmd.Context(), func(ctx context.Context, database *bun.DB) error {
			applied, pending, err := db.Status(ctx, database)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, m := range applied {
				fmt.Fprintf(out, "applied  %s\n", m)
			}
			for _, m := range pending {
				fmt.Fprintf(out, "pending  %s\n", m)
			}
			return nil
		})
	},
}

func init() {
	migrateCmd.AddCommand(rollbackCmd, statusCmd)
	rootCmd.AddCommand(migrateCmd)
}

// loadDBConfig reads the DB_* variables on top of DefaultConfig.
func loadDBConfig() (db.Config, error) {
	if utils.IsDev() {
		if err := godotenv.Load(); err == nil {
			log.Println("Loaded .env file")
		}
	}

	cfg := db.DefaultConfig()
	if err := envconfig.Process("DB", &cfg); err != nil {
		return cfg, fmt.Errorf("failed to process env vars: %w", err)
	}
	return cfg, nil
}

func withDatabase(ctx context.Context, fn func(context.Context, *bun.DB) error) error {
	cfg, err := loadDBConfig()
	if err != nil {
		return err
	}

	database, err := db.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	return fn(ctx, database)
}

package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/quatton/jobsched/pkg/db/migrations"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

func newMigrator(ctx context.Context, db *bun.DB) (*migrate.Migrator, error) {
	migrator := migrate.NewMigrator(db, migrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return nil, fmt.Errorf("failed to init migrations: %w", err)
	}
	return migrator, nil
}

// Migrate applies pending migrations.
func Migrate(ctx context.Context, db *bun.DB, logger *slog.Logger) error {
	migrator, err := newMigrator(ctx, db)
	if err != nil {
		return err
	}

	if err := migrator.Lock(ctx); err != nil {
		return fmt.Errorf("failed to lock migrations: %w", err)
	}
	defer migrator.Unlock(ctx) //nolint:errcheck

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}

	if group.IsZero() {
		logger.Info("database is up to date")
		return nil
	}
	logger.Info("migrated", "group", group.String())
	return nil
}

// Rollback reverts the last migration group.
func Rollback(ctx context.Context, db *bun.DB, logger *slog.Logger) error {
	migrator, err := newMigrator(ctx, db)
	if err != nil {
		return err
	}

	if err := migrator.Lock(ctx); err != nil {
		return fmt.Errorf("failed to lock migrations: %w", err)
	}
	defer migrator.Unlock(ctx) //nolint:errcheck

	group, err := migrator.Rollback(ctx)
	if err != nil {
		return fmt.Errorf("failed to roll back: %w", err)
	}

	if group.IsZero() {
		logger.Info("nothing to roll back")
		return nil
	}
	logger.Info("rolled back", "group", group.String())
	return nil
}

// Status lists applied and pending migrations.
func Status(ctx context.Context, db *bun.DB) (applied, pending []string, err error) {
	migrator, err := newMigrator(ctx, db)
	if err != nil {
		return nil, nil, err
	}

	ms, err := migrator.MigrationsWithStatus(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read migration status: %w", err)
	}
	for _, m := range ms.Applied() {
		applied = append(applied, m.String())
	}
	for _, m := range ms.Unapplied() {
		pending = append(pending, m.String())
	}
	return applied, pending, nil
}

package migrations

import (
	"context"
	"fmt"

	"github.com/quatton/jobsched/pkg/db/models"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Print(" [up migration] ")

		if _, err := db.NewRaw("CREATE SCHEMA IF NOT EXISTS auth").Exec(ctx); err != nil {
			return err
		}

		_, err := db.NewCreateTable().
			Model((*models.User)(nil)).
			IfNotExists().
			Exec(ctx)
		return err
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Print(" [down migration] ")

		if _, err := db.NewDropTable().Model((*models.User)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}

		_, err := db.NewRaw("DROP SCHEMA IF EXISTS auth").Exec(ctx)
		return err
	})
}

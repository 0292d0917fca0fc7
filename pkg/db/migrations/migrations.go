// Package migrations holds the schema migrations, registered from init
// functions in files named <timestamp>_<name>.go.
package migrations

import "github.com/uptrace/bun/migrate"

var Migrations = migrate.NewMigrations()

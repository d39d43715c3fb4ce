// Package migrations holds the schema; bun names each migration after its file.
package migrations

import "github.com/uptrace/bun/migrate"

var Migrations = migrate.NewMigrations()

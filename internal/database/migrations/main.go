package migrations

import "github.com/uptrace/bun/migrate"

// Migrations holds every schema migration, ordered by file name.
var Migrations = migrate.NewMigrations()

func init() {
	// Migration IDs are derived from the registering file's name.
	if err := Migrations.DiscoverCaller(); err != nil {
		panic(err)
	}
}

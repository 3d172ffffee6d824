package tournamentmigrations

import "github.com/uptrace/bun/migrate"

// Migrations holds the tournament module's schema migrations.
var Migrations = migrate.NewMigrations()

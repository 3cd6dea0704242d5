package db

import "embed"

// MigrationFS embeds the SQL migrations under internal/db/migrations.
// Applied by cmd/migrate and, with MIGRATE_ON_START, by cmd/server.
//
//go:embed migrations/*.sql
var MigrationFS embed.FS

package migration

import "embed"

// EmbeddedMigrations holds the schema migrations shipped with the binary
//
//go:embed sql/*.sql
var EmbeddedMigrations embed.FS

const embeddedMigrationsDir = "sql"

// Package db embeds the SQL schema applied by the server at startup.
package db

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS

const MigrationsDir = "migrations"

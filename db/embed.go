// Package db embeds the SQL migrations applied by registryctl.
package db

import "embed"

// Migrations holds migrations/*.sql for builds tagged embed_migrations.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// Package migrations embeds the goose migrations for the shared PostgreSQL
// backend schema.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS

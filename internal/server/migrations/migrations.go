// Package migrations embeds the goose migrations for the content API's
// PostgreSQL schema.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS

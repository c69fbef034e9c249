// Package migrations embeds the goose migrations for the authoritative
// store's PostgreSQL schema. Schema changes are plain SQL; the demo seed is
// a Go migration because it hashes passwords at migrate time.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS

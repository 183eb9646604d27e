// Package migrations embeds the SQLite schema used by the CLI: session
// metadata plus the tables of the embedded timeline store.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS

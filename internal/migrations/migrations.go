// Package migrations embeds the SQL schema migrations applied at startup.
package migrations

import "embed"

// Files holds the goose migration scripts.
//
//go:embed *.sql
var Files embed.FS

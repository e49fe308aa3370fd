// Package migrations embeds the SQL schema of the published results store.
package migrations

import "embed"

// FS holds the .sql migration files
//
//go:embed *.sql
var FS embed.FS

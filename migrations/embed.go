// Package migrations embeds the versioned PostgreSQL schema so the server and
// migrate binaries carry it without a file path.
package migrations

import "embed"

// FS holds every NNNNNN_name.{up,down}.sql file
//
//go:embed *.sql
var FS embed.FS

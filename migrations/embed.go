// Package migrations embeds the versioned PostgreSQL schema so the server
// binary and the migrate CLI never depend on the working directory.
package migrations

import "embed"

// FS holds every NNNNNN_name.{up,down}.sql file
//
//go:embed *.sql
var FS embed.FS

// Package migrations embeds the SQL schema migrations into the binary so
// the service can migrate a fresh database without files on disk.
package migrations

import "embed"

// FS holds every *.up.sql / *.down.sql file in this directory.
//
//go:embed *.sql
var FS embed.FS

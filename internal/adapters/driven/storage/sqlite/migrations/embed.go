// Package migrations embeds the audit ledger schema.
package migrations

import "embed"

// FS contains the golang-migrate files, named NNN_title.{up,down}.sql.
//
//go:embed *.sql
var FS embed.FS

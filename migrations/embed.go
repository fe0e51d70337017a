// Package migrations embeds the Postgres schema files in apply order.
package migrations

import "embed"

// FS holds the *.sql files of this directory.
//
//go:embed *.sql
var FS embed.FS

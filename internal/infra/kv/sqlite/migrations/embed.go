package migrations

import "embed"

// FS contains the golang-migrate files for the key-value table.
//
//go:embed *.sql
var FS embed.FS

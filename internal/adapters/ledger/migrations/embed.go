package migrations

import "embed"

// FS contains embedded SQLite migrations for the audio ledger.
//
//go:embed *.sql
var FS embed.FS

// Package migrations embeds the schema for shows, seats and bookings.  Each
// file holds a single statement so the same files apply on MySQL without
// multiStatements and on SQLite in tests.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

// Package migrations embeds the SQL migration files so they can be used
// by the goose programmatic API in tests and server bootstrap.
package migrations

import "embed"

// FS holds all *.sql migration files embedded at compile time.
// The server applies them via goose.Up on startup; repo tests feed the
// same FS to goose.NewProvider so both run an identical schema.
//
//go:embed *.sql
var FS embed.FS

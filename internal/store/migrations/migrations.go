// Package migrations embeds the goose SQL migrations for the embedded
// engine. The fallback backend reproduces the same column names so rows
// round-trip if the application later moves from fallback to embedded.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

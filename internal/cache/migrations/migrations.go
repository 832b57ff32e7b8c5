// Package migrations embeds the SQL migrations for the snapshot cache.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS

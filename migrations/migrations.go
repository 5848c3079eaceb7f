// Package migrations embeds the database schema.
package migrations

import "embed"

// Files holds every migration in apply order by file name.
//
//go:embed *.sql
var Files embed.FS

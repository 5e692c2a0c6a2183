// Package migrations embeds the planner schema scripts.
package migrations

import "embed"

// FS holds every {version}_{description}.sql script in this directory.
//
//go:embed *.sql
var FS embed.FS

// Package migrations embeds the PostgreSQL schema migrations.
//
// Files are applied in lexical order. NNNN_name_rollback.sql undoes NNNN_name.sql.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

// Package migrations embeds SQL migration files for database schema management.
// Each supported dialect has its own directory.
package migrations

import "embed"

// FS holds the embedded SQL migration files.
//
//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS

// Dir returns the migration directory for a database driver name.
func Dir(driver string) string {
	if driver == "postgres" {
		return "postgres"
	}
	return "sqlite"
}

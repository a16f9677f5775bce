package database

import (
	"database/sql"
	"embed"
	"fmt"
	"strings"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Migrate creates the four tables if they do not exist yet. Statements are
// idempotent, so calling this on every startup is safe.
func Migrate(db *sql.DB) error {
	name := Driver()
	if name == "sqlite3" {
		name = "sqlite"
	}

	script, err := schemaFS.ReadFile("schema/" + name + ".sql")
	if err != nil {
		return fmt.Errorf("no schema for driver %s: %w", Driver(), err)
	}

	for _, stmt := range strings.Split(string(script), ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration statement failed: %w", err)
		}
	}
	return nil
}

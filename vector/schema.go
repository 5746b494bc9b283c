package vector

import (
	"database/sql"
	"fmt"
	"strings"
)

// EnsureSchema creates the points table if it does not already exist. Rows
// keep insertion order through the implicit rowid.
func EnsureSchema(db *sql.DB, table string) error {
	if !validName(table) {
		return fmt.Errorf("vector: invalid table name %q", table)
	}
	_, err := db.Exec(fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    id INTEGER NOT NULL,
    coords BLOB NOT NULL
)`, table))
	return err
}

func validName(name string) bool {
	if name == "" {
		return false
	}
	return strings.IndexFunc(name, func(r rune) bool {
		return !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
	}) < 0
}

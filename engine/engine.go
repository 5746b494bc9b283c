package engine

import (
	"database/sql"
	"sync"

	_ "modernc.org/sqlite" // register pure-Go SQLite driver
)

var registerOnce sync.Once
var registerErr error

// Open opens a SQLite database using the modernc.org/sqlite driver. The point
// functions are registered with the driver before the first connection is
// opened.
//
// For file-based databases, pass a path like "./db.sqlite". For in-memory
// databases, pass ":memory:".
func Open(dsn string) (*sql.DB, error) {
	registerOnce.Do(func() { registerErr = RegisterPointFunctions() })
	if registerErr != nil {
		return nil, registerErr
	}
	return sql.Open("sqlite", dsn)
}

package vector

import (
	"testing"

	"github.com/viant/sqlite-kd/engine"
)

// TestEnsureSchema verifies that EnsureSchema creates the points table without
// error on a fresh in-memory database and is idempotent.
func TestEnsureSchema(t *testing.T) {
	db, err := engine.Open(":memory:")
	if err != nil {
		t.Fatalf("engine.Open(:memory:) failed: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	for i := 0; i < 2; i++ {
		if err := EnsureSchema(db, "points"); err != nil {
			t.Fatalf("EnsureSchema failed: %v", err)
		}
	}
	if _, err := db.Exec(`INSERT INTO points(id, coords) VALUES(1, X'00000000')`); err != nil {
		t.Fatalf("insert into points failed: %v", err)
	}
	if err := EnsureSchema(db, "points; DROP TABLE points"); err == nil {
		t.Fatalf("expected invalid table name error")
	}
}

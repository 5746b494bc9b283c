// Package kdadmin provides administrative operations on kd virtual tables
// through a virtual table.
//
// Usage:
//
//	CREATE VIRTUAL TABLE kd_admin USING kd_admin(op);
//	SELECT op FROM kd_admin WHERE op MATCH 'main._kd_near'; -- verify and invalidate
//
// The query returns a single row with op='reindexed:<count>' on success.
package kdadmin

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"k8s.io/klog/v2"
	"modernc.org/sqlite/vtab"

	"github.com/viant/sqlite-kd/kdsql"
	"github.com/viant/sqlite-kd/kdtree"
	"github.com/viant/sqlite-kd/vector"
)

// Module implements vtab.Module for kd_admin.
type Module struct{ db *sql.DB }

// Table is a kd_admin instance.
type Table struct{ db *sql.DB }

// Cursor holds the result of one admin operation.
type Cursor struct {
	table *Table
	rows  []string
	pos   int
}

// Register registers the kd_admin module with db.
func Register(db *sql.DB) error {
	if err := vtab.RegisterModule(db, "kd_admin", &Module{db: db}); err != nil {
		if !strings.Contains(err.Error(), "already registered") {
			return err
		}
	}
	return nil
}

// Create declares the single op column.
func (m *Module) Create(ctx vtab.Context, args []string) (vtab.Table, error) {
	if len(args) < 3 {
		return nil, fmt.Errorf("kd_admin: need at least 3 args")
	}
	if err := ctx.Declare(fmt.Sprintf("CREATE TABLE %s(op)", args[2])); err != nil {
		return nil, err
	}
	return &Table{db: m.db}, nil
}

// Connect declares the single op column.
func (m *Module) Connect(ctx vtab.Context, args []string) (vtab.Table, error) {
	return m.Create(ctx, args)
}

func (t *Table) BestIndex(info *vtab.IndexInfo) error {
	for i := range info.Constraints {
		c := &info.Constraints[i]
		if !c.Usable {
			continue
		}
		if c.Column == 0 && c.Op == vtab.OpMATCH {
			c.ArgIndex = 0
			c.Omit = true
			info.IdxNum = 1
			break
		}
	}
	return nil
}

func (t *Table) Open() (vtab.Cursor, error) { return &Cursor{table: t}, nil }
func (t *Table) Disconnect() error            { return nil }
func (t *Table) Destroy() error               { return nil }

func (c *Cursor) Filter(idxNum int, idxStr string, vals []vtab.Value) error {
	c.rows = nil
	c.pos = 0
	if idxNum != 1 || len(vals) == 0 || vals[0] == nil {
		return nil
	}
	shadow, ok := vals[0].(string)
	if !ok {
		return fmt.Errorf("kd_admin: MATCH expects shadow table name as TEXT")
	}
	n, err := Reindex(context.Background(), c.table.db, shadow)
	if err != nil {
		return err
	}
	c.rows = []string{fmt.Sprintf("reindexed:%d", n)}
	return nil
}

func (c *Cursor) Next() error {
	if c.pos < len(c.rows) {
		c.pos++
	}
	return nil
}
func (c *Cursor) Eof() bool { return c.pos >= len(c.rows) }
func (c *Cursor) Column(col int) (vtab.Value, error) {
	if c.pos < 0 || c.pos >= len(c.rows) {
		return nil, fmt.Errorf("kd_admin: Column out of range")
	}
	if col == 0 {
		return c.rows[c.pos], nil
	}
	return nil, nil
}
func (c *Cursor) Rowid() (int64, error) { return int64(c.pos + 1), nil }
func (c *Cursor) Close() error          { c.rows = nil; c.pos = 0; return nil }

// Reindex verifies shadow by building a k-d tree from every row and checking
// its ordering invariant, then invalidates cached trees for shadow. The
// verification tree is discarded; the next kd query builds its own. It
// returns the number of points.
func Reindex(ctx context.Context, db *sql.DB, shadow string) (int, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("SELECT rowid, coords FROM %s ORDER BY rowid", shadow))
	if err != nil {
		return 0, err
	}
	defer rows.Close()
	var tree *kdtree.Tree
	for rows.Next() {
		var (
			rowid int64
			blob  []byte
		)
		if err := rows.Scan(&rowid, &blob); err != nil {
			return 0, err
		}
		coords, err := vector.DecodeCoords(blob)
		if err != nil {
			return 0, fmt.Errorf("kd_admin: %s row %d: %w", shadow, rowid, err)
		}
		p := kdtree.Point{ID: rowid, Coords: coords}
		if tree == nil {
			tree, err = kdtree.NewWithPoint(p)
		} else {
			err = tree.Insert(p)
		}
		if err != nil {
			return 0, fmt.Errorf("kd_admin: %s row %d: %w", shadow, rowid, err)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}
	n := 0
	if tree != nil {
		if err := tree.Validate(); err != nil {
			return 0, fmt.Errorf("kd_admin: %s: %w", shadow, err)
		}
		n = tree.Len()
	}
	cleared := kdsql.InvalidateCache(shadow)
	klog.V(2).InfoS("reindexed kd shadow", "shadow", shadow, "points", n, "cleared", cleared)
	return n, nil
}

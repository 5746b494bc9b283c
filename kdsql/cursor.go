package kdsql

import (
	"context"
	"fmt"
	"math"

	"modernc.org/sqlite/vtab"

	"github.com/viant/sqlite-kd/kdtree"
	"github.com/viant/sqlite-kd/vector"
)

type row struct {
	rowid    int64
	id       int64
	coords   []float32
	radius   *float64
	distance *float64
}

// Cursor scans results from a kd table.
type Cursor struct {
	table *Table
	rows  []row
	pos   int
}

// Filter computes the result set based on idxNum/vals.
func (c *Cursor) Filter(idxNum int, idxStr string, vals []vtab.Value) error {
	_ = idxStr
	c.rows = nil
	c.pos = 0
	if c.table == nil || c.table.db == nil {
		return nil
	}
	ctx := context.Background()

	switch idxNum {
	case idxScan:
		if err := c.table.ensureShadow(); err != nil {
			return err
		}
		q := fmt.Sprintf("SELECT rowid, id, coords FROM %s ORDER BY rowid", c.table.shadow)
		rows, err := c.table.db.QueryContext(ctx, q)
		if err != nil {
			return err
		}
		defer rows.Close()
		var out []row
		for rows.Next() {
			var (
				r    row
				blob []byte
			)
			if err := rows.Scan(&r.rowid, &r.id, &blob); err != nil {
				return err
			}
			if r.coords, err = vector.DecodeCoords(blob); err != nil {
				return err
			}
			out = append(out, r)
		}
		if err := rows.Err(); err != nil {
			return err
		}
		c.rows = out
		return nil
	case idxRadius:
		if len(vals) < 2 || vals[0] == nil || vals[1] == nil {
			return fmt.Errorf("kd: MATCH and radius arguments are required")
		}
		query, err := decodeMatchArg(vals[0])
		if err != nil {
			return err
		}
		radius, err := asFloat(vals[1])
		if err != nil {
			return err
		}
		if radius < 0 || math.IsNaN(radius) {
			return fmt.Errorf("kd: %w: radius %v", kdtree.ErrInvalidArgument, radius)
		}
		snap, err := c.table.ensureTree(ctx)
		if err != nil {
			return err
		}
		if snap.tree == nil {
			return nil
		}
		neighbors, err := snap.tree.NearbyNeighbors(kdtree.Point{Coords: query}, float32(radius))
		if err != nil {
			return fmt.Errorf("kd: %w", err)
		}
		out := make([]row, 0, len(neighbors))
		for _, n := range neighbors {
			d := float64(n.Distance)
			out = append(out, row{
				rowid:    n.Point.ID,
				id:       snap.ids[n.Point.ID],
				coords:   n.Point.Coords,
				radius:   &radius,
				distance: &d,
			})
		}
		c.rows = out
		return nil
	default:
		return fmt.Errorf("kd: unsupported query plan")
	}
}

// Next advances the cursor.
func (c *Cursor) Next() error {
	if c.pos < len(c.rows) {
		c.pos++
	}
	return nil
}

// Eof reports end-of-rows.
func (c *Cursor) Eof() bool { return c.pos >= len(c.rows) }

// Column returns the value of a column in the current row.
func (c *Cursor) Column(col int) (vtab.Value, error) {
	if c.pos < 0 || c.pos >= len(c.rows) {
		return nil, fmt.Errorf("kd: Column out of range (pos=%d,len=%d)", c.pos, len(c.rows))
	}
	r := c.rows[c.pos]
	switch col {
	case 0:
		return r.id, nil
	case 1:
		return vector.EncodeCoords(r.coords)
	case 2:
		if r.radius == nil {
			return nil, nil
		}
		return *r.radius, nil
	case 3:
		if r.distance == nil {
			return nil, nil
		}
		return *r.distance, nil
	}
	return nil, fmt.Errorf("kd: unsupported column %d", col)
}

// Rowid returns the current rowid.
func (c *Cursor) Rowid() (int64, error) {
	if c.pos < 0 || c.pos >= len(c.rows) {
		return 0, fmt.Errorf("kd: Rowid out of range (pos=%d,len=%d)", c.pos, len(c.rows))
	}
	return c.rows[c.pos].rowid, nil
}

// Close releases resources.
func (c *Cursor) Close() error { c.rows = nil; c.pos = 0; return nil }

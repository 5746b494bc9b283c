package vector

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"k8s.io/klog/v2"

	"github.com/viant/sqlite-kd/engine"
	"github.com/viant/sqlite-kd/kdtree"
)

// SQLiteStore is a Store backed by a single SQLite table. Radius queries run
// as a linear scan in SQL through kd_within; Tree builds an in-memory k-d tree
// from the stored rows.
type SQLiteStore struct {
	db    *sql.DB
	table string
	dim   int
}

// NewSQLiteStore creates a store for points with dim coordinates kept in
// table. It ensures the table exists and registers the point functions with
// the driver for connections opened afterwards.
func NewSQLiteStore(db *sql.DB, table string, dim int) (*SQLiteStore, error) {
	if db == nil {
		return nil, fmt.Errorf("vector: db is nil")
	}
	if dim <= 0 {
		return nil, fmt.Errorf("vector: %w: dimension must be positive, got %d", kdtree.ErrInvalidArgument, dim)
	}
	if err := engine.RegisterPointFunctions(); err != nil {
		return nil, err
	}
	if err := EnsureSchema(db, table); err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db, table: table, dim: dim}, nil
}

// Dimension returns the point dimension of the store.
func (s *SQLiteStore) Dimension() int { return s.dim }

// AddPoints validates every point, then inserts them in one transaction.
func (s *SQLiteStore) AddPoints(ctx context.Context, points []kdtree.Point) error {
	if len(points) == 0 {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	blobs := make([][]byte, len(points))
	for i, p := range points {
		if len(p.Coords) != s.dim {
			return fmt.Errorf("vector: %w: point %d has %d coordinates, want %d", kdtree.ErrDimensionMismatch, p.ID, len(p.Coords), s.dim)
		}
		for _, c := range p.Coords {
			if math.IsNaN(float64(c)) {
				return fmt.Errorf("vector: %w: point %d has NaN coordinate", kdtree.ErrInvalidArgument, p.ID)
			}
		}
		b, err := EncodeCoords(p.Coords)
		if err != nil {
			return err
		}
		blobs[i] = b
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`INSERT INTO %s(id, coords) VALUES(?, ?)`, s.table))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, p := range points {
		if _, err := stmt.ExecContext(ctx, p.ID, blobs[i]); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Points returns every stored point in insertion order.
func (s *SQLiteStore) Points(ctx context.Context) ([]kdtree.Point, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT id, coords FROM %s ORDER BY rowid`, s.table))
	if err != nil {
		return nil, err
	}
	return s.scan(rows)
}

// Tree builds a k-d tree from the stored points in insertion order.
func (s *SQLiteStore) Tree(ctx context.Context) (*kdtree.Tree, error) {
	points, err := s.Points(ctx)
	if err != nil {
		return nil, err
	}
	tree, err := kdtree.New(s.dim)
	if err != nil {
		return nil, err
	}
	for _, p := range points {
		if err := tree.Insert(p); err != nil {
			return nil, fmt.Errorf("vector: %s: %w", s.table, err)
		}
	}
	stats := tree.Stats()
	klog.V(3).InfoS("built tree from store", "table", s.table, "size", stats.Size, "height", stats.Height, "idealHeight", stats.IdealHeight)
	return tree, nil
}

// Within returns stored points within radius of query, in insertion order.
func (s *SQLiteStore) Within(ctx context.Context, query []float32, radius float32) ([]kdtree.Point, error) {
	if radius < 0 || math.IsNaN(float64(radius)) {
		return nil, fmt.Errorf("vector: %w: radius %v", kdtree.ErrInvalidArgument, radius)
	}
	if len(query) != s.dim {
		return nil, fmt.Errorf("vector: %w: query dim %d != store dim %d", kdtree.ErrDimensionMismatch, len(query), s.dim)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	q, err := EncodeCoords(query)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT id, coords FROM %s WHERE kd_within(coords, ?, ?) = 1 ORDER BY rowid`, s.table), q, float64(radius))
	if err != nil {
		return nil, err
	}
	return s.scan(rows)
}

// Remove deletes every point with the given ID.
func (s *SQLiteStore) Remove(ctx context.Context, id int64) (int64, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	res, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, s.table), id)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	klog.V(3).InfoS("removed points", "table", s.table, "id", id, "rows", n)
	return n, nil
}

func (s *SQLiteStore) scan(rows *sql.Rows) ([]kdtree.Point, error) {
	defer rows.Close()
	var out []kdtree.Point
	for rows.Next() {
		var (
			id   int64
			blob []byte
		)
		if err := rows.Scan(&id, &blob); err != nil {
			return nil, err
		}
		coords, err := DecodeCoords(blob)
		if err != nil {
			return nil, fmt.Errorf("vector: point %d: %w", id, err)
		}
		out = append(out, kdtree.Point{ID: id, Coords: coords})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Ensure SQLiteStore satisfies the Store interface.
var _ Store = (*SQLiteStore)(nil)

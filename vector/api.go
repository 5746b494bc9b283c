package vector

import (
	"context"

	"github.com/viant/sqlite-kd/kdtree"
)

// Store defines the point store API. Implementations keep points durable and
// rebuild search structures from them on demand.
type Store interface {
	// AddPoints appends points. Either all points are stored or none.
	AddPoints(ctx context.Context, points []kdtree.Point) error

	// Points returns every stored point in insertion order.
	Points(ctx context.Context) ([]kdtree.Point, error)

	// Tree builds a k-d tree from the stored points in insertion order.
	Tree(ctx context.Context) (*kdtree.Tree, error)

	// Within returns stored points within radius of query.
	Within(ctx context.Context, query []float32, radius float32) ([]kdtree.Point, error)

	// Remove deletes every point with the given ID and reports how many
	// rows were removed.
	Remove(ctx context.Context, id int64) (int64, error)
}

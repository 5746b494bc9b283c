package index

// Index defines a point index answering fixed-radius queries. It is built
// from (id, coordinates) pairs and returns the ids of points within a
// Euclidean radius of a query.
type Index interface {
	// Build replaces the index content with the given ids and points.
	// ids and points must have the same length and every point the same
	// dimension; on error the previous content is kept.
	Build(ids []int64, points [][]float32) error

	// Within returns the ids of every point at most radius away from query,
	// in unspecified order. Errors wrap kdtree.ErrDimensionMismatch or
	// kdtree.ErrInvalidArgument.
	Within(query []float32, radius float32) ([]int64, error)

	// Len returns the number of indexed points.
	Len() int

	// Dimension returns the point dimension, or 0 when still unknown.
	Dimension() int
}

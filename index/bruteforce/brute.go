package bruteforce

import (
	"fmt"
	"math"

	"github.com/viant/sqlite-kd/index"
	"github.com/viant/sqlite-kd/kdtree"
)

// Index is a simple brute-force radius index. The zero value takes its
// dimension from the first non-empty Build.
type Index struct {
	ids   []int64
	vecs  [][]float32
	dim   int
	fixed bool
}

// New returns an empty index for points with dim coordinates.
func New(dim int) (*Index, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("bruteforce: %w: dimension must be positive, got %d", kdtree.ErrInvalidArgument, dim)
	}
	return &Index{dim: dim, fixed: true}, nil
}

// Build loads ids and points.
func (i *Index) Build(ids []int64, points [][]float32) error {
	if len(ids) != len(points) {
		return fmt.Errorf("bruteforce: %w: ids and points length mismatch: %d != %d", kdtree.ErrInvalidArgument, len(ids), len(points))
	}
	if len(ids) == 0 {
		i.ids, i.vecs = nil, nil
		if !i.fixed {
			i.dim = 0
		}
		return nil
	}
	dim := len(points[0])
	if i.fixed {
		dim = i.dim
	}
	if len(points[0]) == 0 {
		return fmt.Errorf("bruteforce: %w: point %d has no coordinates", kdtree.ErrInvalidArgument, ids[0])
	}
	vecs := make([][]float32, len(points))
	for j := range points {
		if len(points[j]) != dim {
			return fmt.Errorf("bruteforce: %w: point %d has %d coordinates, want %d", kdtree.ErrDimensionMismatch, ids[j], len(points[j]), dim)
		}
		vecs[j] = append([]float32(nil), points[j]...)
	}
	i.ids = append([]int64(nil), ids...)
	i.vecs = vecs
	i.dim = dim
	return nil
}

// Within returns the ids of all points within radius of query, in build order.
func (i *Index) Within(query []float32, radius float32) ([]int64, error) {
	if radius < 0 || math.IsNaN(float64(radius)) {
		return nil, fmt.Errorf("bruteforce: %w: radius %v", kdtree.ErrInvalidArgument, radius)
	}
	if i.dim == 0 {
		return nil, nil
	}
	if len(query) != i.dim {
		return nil, fmt.Errorf("bruteforce: %w: query dim %d != index dim %d", kdtree.ErrDimensionMismatch, len(query), i.dim)
	}
	var out []int64
	for j, vec := range i.vecs {
		if kdtree.InRange(vec, query, radius) {
			out = append(out, i.ids[j])
		}
	}
	return out, nil
}

// Len returns the number of indexed points.
func (i *Index) Len() int { return len(i.ids) }

// Dimension returns the point dimension, 0 while unknown.
func (i *Index) Dimension() int { return i.dim }

var _ index.Index = (*Index)(nil)

package kd

import (
	"fmt"
	"math"

	"github.com/viant/sqlite-kd/index"
	"github.com/viant/sqlite-kd/kdtree"
)

// Index is a radius index backed by an incremental k-d tree. The zero value
// is an empty index whose dimension is taken from the first Build or Insert.
type Index struct {
	tree *kdtree.Tree
	dim  int
}

// New returns an empty index for points with dim coordinates.
func New(dim int) (*Index, error) {
	tree, err := kdtree.New(dim)
	if err != nil {
		return nil, err
	}
	return &Index{tree: tree, dim: dim}, nil
}

// Build replaces the tree with one holding ids and points, inserted in order.
func (i *Index) Build(ids []int64, points [][]float32) error {
	if len(ids) != len(points) {
		return fmt.Errorf("kd: %w: ids and points length mismatch: %d != %d", kdtree.ErrInvalidArgument, len(ids), len(points))
	}
	dim := i.dim
	if dim == 0 {
		if len(points) == 0 {
			i.tree = nil
			return nil
		}
		dim = len(points[0])
	}
	tree, err := kdtree.New(dim)
	if err != nil {
		return fmt.Errorf("kd: %w", err)
	}
	for j := range points {
		if err := tree.Insert(kdtree.Point{ID: ids[j], Coords: points[j]}); err != nil {
			return fmt.Errorf("kd: build: %w", err)
		}
	}
	i.tree = tree
	i.dim = dim
	return nil
}

// Insert adds a single point.
func (i *Index) Insert(id int64, coords []float32) error {
	if i.tree == nil {
		tree, err := kdtree.NewWithPoint(kdtree.Point{ID: id, Coords: coords})
		if err != nil {
			return fmt.Errorf("kd: %w", err)
		}
		i.tree = tree
		i.dim = tree.Dimension()
		return nil
	}
	if err := i.tree.Insert(kdtree.Point{ID: id, Coords: coords}); err != nil {
		return fmt.Errorf("kd: %w", err)
	}
	return nil
}

// Within returns the ids of points within radius of query.
func (i *Index) Within(query []float32, radius float32) ([]int64, error) {
	if i.tree == nil {
		return nil, checkRadius(radius)
	}
	ids, err := i.tree.NearbyPointIDs(kdtree.Point{Coords: query}, radius)
	if err != nil {
		return nil, fmt.Errorf("kd: %w", err)
	}
	return ids, nil
}

// Neighbors returns points within radius of query, closest first.
func (i *Index) Neighbors(query []float32, radius float32) (kdtree.Neighbors, error) {
	if i.tree == nil {
		return nil, checkRadius(radius)
	}
	neighbors, err := i.tree.NearbyNeighbors(kdtree.Point{Coords: query}, radius)
	if err != nil {
		return nil, fmt.Errorf("kd: %w", err)
	}
	return neighbors, nil
}

// checkRadius rejects a radius the tree would reject, for queries answered
// without a tree.
func checkRadius(radius float32) error {
	if radius < 0 || math.IsNaN(float64(radius)) {
		return fmt.Errorf("kd: %w: radius %v", kdtree.ErrInvalidArgument, radius)
	}
	return nil
}

// Len returns the number of indexed points.
func (i *Index) Len() int {
	if i.tree == nil {
		return 0
	}
	return i.tree.Len()
}

// Dimension returns the point dimension, or 0 while unknown.
func (i *Index) Dimension() int { return i.dim }

// Tree exposes the underlying tree, nil while the index is empty and its
// dimension unknown.
func (i *Index) Tree() *kdtree.Tree { return i.tree }

var _ index.Index = (*Index)(nil)

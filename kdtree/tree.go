package kdtree

import (
	"fmt"
	"math"
)

// Tree is an incremental k-d tree of fixed dimension.
type Tree struct {
	root *Node
	dim  int
	size int
}

// New constructs an empty tree for points with dim coordinates.
func New(dim int) (*Tree, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("kdtree: %w: dimension must be positive, got %d", ErrInvalidArgument, dim)
	}
	return &Tree{dim: dim}, nil
}

// NewWithPoint constructs a tree seeded with point; the tree dimension is the
// point's coordinate count.
func NewWithPoint(point Point) (*Tree, error) {
	if len(point.Coords) == 0 {
		return nil, fmt.Errorf("kdtree: %w: seed point %d has no coordinates", ErrInvalidArgument, point.ID)
	}
	t := &Tree{dim: len(point.Coords)}
	if err := t.Insert(point); err != nil {
		return nil, err
	}
	return t, nil
}

// Dimension returns the number of coordinates of every stored point.
func (t *Tree) Dimension() int { return t.dim }

// Len returns the number of stored points.
func (t *Tree) Len() int { return t.size }

// Root returns the root node, or nil for an empty tree.
func (t *Tree) Root() *Node { return t.root }

// Insert adds point to the tree. The tree keeps its own copy of the
// coordinates. Identical coordinates are kept as separate entries.
func (t *Tree) Insert(point Point) error {
	if err := t.checkPoint(point); err != nil {
		return err
	}
	point = point.clone()
	if t.root == nil {
		t.root = newNode(point, 0, t.dim)
		t.size++
		return nil
	}
	node := t.root
	for {
		link := &node.right
		if point.Coords[node.axis] < node.point.Coords[node.axis] {
			link = &node.left
		}
		if *link == nil {
			*link = newNode(point, node.depth+1, t.dim)
			t.size++
			return nil
		}
		node = *link
	}
}

func (t *Tree) checkPoint(point Point) error {
	if len(point.Coords) != t.dim {
		return fmt.Errorf("kdtree: %w: point %d has %d coordinates, tree has %d", ErrDimensionMismatch, point.ID, len(point.Coords), t.dim)
	}
	if hasNaN(point.Coords) {
		return fmt.Errorf("kdtree: %w: point %d has a NaN coordinate", ErrInvalidArgument, point.ID)
	}
	return nil
}

// Walk visits nodes in pre-order until fn returns false.
func (t *Tree) Walk(fn func(n *Node) bool) {
	if t.root == nil {
		return
	}
	stack := []*Node{t.root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(n) {
			return
		}
		if n.right != nil {
			stack = append(stack, n.right)
		}
		if n.left != nil {
			stack = append(stack, n.left)
		}
	}
}

// Validate checks the ordering invariant against every ancestor, not only
// the parent: each node must lie inside the half-open box carved out by the
// splits along its path.
func (t *Tree) Validate() error {
	if t.root == nil {
		if t.size != 0 {
			return fmt.Errorf("kdtree: empty tree reports %d points", t.size)
		}
		return nil
	}
	lower := make([]float64, t.dim)
	upper := make([]float64, t.dim)
	for i := range lower {
		lower[i] = math.Inf(-1)
		upper[i] = math.Inf(1)
	}
	count, err := t.validate(t.root, 0, lower, upper)
	if err != nil {
		return err
	}
	if count != t.size {
		return fmt.Errorf("kdtree: counted %d nodes, tree reports %d", count, t.size)
	}
	return nil
}

// lower bounds are inclusive, upper bounds exclusive.
func (t *Tree) validate(n *Node, depth int, lower, upper []float64) (int, error) {
	if n == nil {
		return 0, nil
	}
	if n.depth != depth || n.axis != depth%t.dim {
		return 0, fmt.Errorf("kdtree: point %d at depth %d recorded depth %d axis %d", n.point.ID, depth, n.depth, n.axis)
	}
	for i, c := range n.point.Coords {
		v := float64(c)
		if v < lower[i] || v >= upper[i] {
			return 0, fmt.Errorf("kdtree: point %d coordinate %d = %v outside [%v, %v)", n.point.ID, i, v, lower[i], upper[i])
		}
	}
	split := float64(n.point.Coords[n.axis])

	prev := upper[n.axis]
	upper[n.axis] = math.Min(prev, split)
	left, err := t.validate(n.left, depth+1, lower, upper)
	upper[n.axis] = prev
	if err != nil {
		return 0, err
	}

	prev = lower[n.axis]
	lower[n.axis] = math.Max(prev, split)
	right, err := t.validate(n.right, depth+1, lower, upper)
	lower[n.axis] = prev
	if err != nil {
		return 0, err
	}
	return 1 + left + right, nil
}

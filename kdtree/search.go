package kdtree

import (
	"fmt"
	"math"
	"sort"
)

// SearchStats describes the work done by one radius query.
type SearchStats struct {
	// Visited counts nodes whose point was tested against the query ball.
	Visited int
	// Matched counts points inside the ball.
	Matched int
	// Pruned counts far subtrees skipped because the ball does not cross the
	// splitting plane.
	Pruned int
}

// Search calls fn for every stored point within radius of query, in
// unspecified order, until fn returns false. The query ID is ignored.
func (t *Tree) Search(query Point, radius float32, fn func(Point) bool) (SearchStats, error) {
	var stats SearchStats
	if err := t.checkQuery(query, radius); err != nil {
		return stats, err
	}
	s := &searcher{query: query.Coords, r2: squared(radius), fn: fn, stats: &stats}
	s.visit(t.root)
	return stats, nil
}

// NearbyPoints returns every stored point within radius of query. Order is
// unspecified.
func (t *Tree) NearbyPoints(query Point, radius float32) ([]Point, error) {
	var result []Point
	_, err := t.Search(query, radius, func(p Point) bool {
		result = append(result, p)
		return true
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// NearbyPointIDs returns the IDs of every stored point within radius of query.
func (t *Tree) NearbyPointIDs(query Point, radius float32) ([]int64, error) {
	var result []int64
	_, err := t.Search(query, radius, func(p Point) bool {
		result = append(result, p.ID)
		return true
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// NearbyNeighbors returns the points within radius of query together with
// their distance, closest first.
func (t *Tree) NearbyNeighbors(query Point, radius float32) (Neighbors, error) {
	var result Neighbors
	_, err := t.Search(query, radius, func(p Point) bool {
		result = append(result, Neighbor{Point: p, Distance: Distance(p.Coords, query.Coords)})
		return true
	})
	if err != nil {
		return nil, err
	}
	sort.Sort(result)
	return result, nil
}

func (t *Tree) checkQuery(query Point, radius float32) error {
	if len(query.Coords) != t.dim {
		return fmt.Errorf("kdtree: %w: query has %d coordinates, tree has %d", ErrDimensionMismatch, len(query.Coords), t.dim)
	}
	if radius < 0 || math.IsNaN(float64(radius)) {
		return fmt.Errorf("kdtree: %w: radius %v", ErrInvalidArgument, radius)
	}
	if hasNaN(query.Coords) {
		return fmt.Errorf("kdtree: %w: query has a NaN coordinate", ErrInvalidArgument)
	}
	return nil
}

type searcher struct {
	query []float32
	r2    float64
	fn    func(Point) bool
	stats *SearchStats
	done  bool
}

func (s *searcher) visit(n *Node) {
	if n == nil || s.done {
		return
	}
	s.stats.Visited++
	if SquaredDistance(n.point.Coords, s.query) <= s.r2 {
		s.stats.Matched++
		if !s.fn(n.point) {
			s.done = true
			return
		}
	}
	diff := float64(s.query[n.axis]) - float64(n.point.Coords[n.axis])
	near, far := n.right, n.left
	if diff < 0 {
		near, far = n.left, n.right
	}
	s.visit(near)
	// diff*diff is the same term SquaredDistance adds for this axis, so a
	// skipped subtree never holds a point the linear scan would accept.
	if diff*diff > s.r2 {
		if far != nil {
			s.stats.Pruned++
		}
		return
	}
	s.visit(far)
}

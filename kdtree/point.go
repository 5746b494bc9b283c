package kdtree

import "math"

// Point is an identifier tagged coordinate vector. The tree never interprets
// ID; several points may share one.
type Point struct {
	ID     int64
	Coords []float32
}

// NewPoint constructs a point owning a copy of coords.
func NewPoint(id int64, coords ...float32) Point {
	return Point{ID: id, Coords: append([]float32(nil), coords...)}
}

// Dimension returns the number of coordinates.
func (p Point) Dimension() int { return len(p.Coords) }

// Coord returns the coordinate at axis.
func (p Point) Coord(axis int) float32 { return p.Coords[axis] }

// X returns the first coordinate. It panics for a zero dimensional point.
func (p Point) X() float32 { return p.Coords[0] }

// Y returns the second coordinate. It panics when the point has fewer than two.
func (p Point) Y() float32 { return p.Coords[1] }

// Z returns the third coordinate. It panics when the point has fewer than three.
func (p Point) Z() float32 { return p.Coords[2] }

func (p Point) clone() Point {
	return Point{ID: p.ID, Coords: append([]float32(nil), p.Coords...)}
}

func hasNaN(coords []float32) bool {
	for _, c := range coords {
		if math.IsNaN(float64(c)) {
			return true
		}
	}
	return false
}

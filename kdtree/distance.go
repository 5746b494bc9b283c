package kdtree

import "github.com/viant/vec/search"

// SquaredDistance returns the squared Euclidean distance between a and b,
// accumulated in float64. Both slices must have the same length.
func SquaredDistance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}

// InRange reports whether a and b are at most radius apart. It is the
// membership test used by every query in this package.
func InRange(a, b []float32, radius float32) bool {
	return SquaredDistance(a, b) <= squared(radius)
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b []float32) float32 {
	return search.Float32s(a).EuclideanDistance(b)
}

func squared(radius float32) float64 {
	r := float64(radius)
	return r * r
}

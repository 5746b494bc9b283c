package kdtree

// Neighbor is a radius query hit with its distance from the query.
type Neighbor struct {
	Point    Point
	Distance float32
}

// Neighbors sorts by ascending distance, then by point ID.
type Neighbors []Neighbor

func (h Neighbors) Len() int { return len(h) }
func (h Neighbors) Less(i, j int) bool {
	if h[i].Distance != h[j].Distance {
		return h[i].Distance < h[j].Distance
	}
	return h[i].Point.ID < h[j].Point.ID
}
func (h Neighbors) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

package kdtree

import "github.com/cznic/mathutil"

// Stats summarizes tree shape.
type Stats struct {
	Size int
	// Height is the number of nodes on the longest root to leaf path.
	Height int
	// IdealHeight is the height of a balanced tree holding Size points.
	IdealHeight int
}

// Stats computes the current tree shape.
func (t *Tree) Stats() Stats {
	height := 0
	t.Walk(func(n *Node) bool {
		height = mathutil.Max(height, n.depth+1)
		return true
	})
	return Stats{Size: t.size, Height: height, IdealHeight: mathutil.BitLen(t.size)}
}

// Height returns the number of nodes on the longest root to leaf path.
func (t *Tree) Height() int { return t.Stats().Height }

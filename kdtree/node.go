package kdtree

// Node is a tree vertex holding one point. Points in the left subtree are
// strictly less than the node on its axis, points in the right subtree are
// greater or equal.
type Node struct {
	point Point
	depth int
	axis  int
	left  *Node
	right *Node
}

func newNode(point Point, depth, dim int) *Node {
	return &Node{point: point, depth: depth, axis: depth % dim}
}

// Point returns the point stored at the node.
func (n *Node) Point() Point { return n.point }

// Depth returns the distance from the root.
func (n *Node) Depth() int { return n.depth }

// Axis returns the splitting coordinate index.
func (n *Node) Axis() int { return n.axis }

// Left returns the "less than" child or nil.
func (n *Node) Left() *Node { return n.left }

// Right returns the "greater or equal" child or nil.
func (n *Node) Right() *Node { return n.right }

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool { return n.left == nil && n.right == nil }

// Package kdtree implements an incremental k-d tree over points of a fixed
// dimension with fixed-radius neighbor queries.
//
// Points are inserted one at a time and are never moved: the tree is not
// rebalanced, so sorted insertion order produces a deep, list-like tree and
// radius queries degrade towards a linear scan. Stats reports the height of a
// tree next to the height of a balanced tree of the same size.
//
// A Tree is not safe for concurrent use. Callers sharing a tree across
// goroutines must serialize access themselves.
package kdtree

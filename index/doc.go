// Package index defines a minimal abstraction for point indexes that can be
// built from coordinates and queried for all points within a radius.
// Implementations in this module include a k-d tree and a brute-force
// baseline used as a reference.
package index

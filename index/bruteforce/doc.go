// Package bruteforce provides a point index that answers radius queries by
// scanning every point with the same membership test as the k-d tree. It is
// the reference the tree is checked against.
package bruteforce

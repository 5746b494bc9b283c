// Package kd adapts the kdtree package to the index.Index interface so the
// k-d tree can be swapped with the brute-force baseline behind one API.
package kd

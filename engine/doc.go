// Package engine provides helpers for working with the modernc.org/sqlite
// driver in this module: opening connections and registering the point
// distance scalar functions kd_dist2, kd_dist and kd_within.
package engine

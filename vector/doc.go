// Package vector defines the point store used by this project and its
// SQLite-backed implementation. It includes:
//   - Store interface and SQLiteStore, durable storage for points
//   - Schema helpers to create a points table
//   - Coordinate encoding (BLOB) and text parsing
//
// The store keeps points only. Trees are rebuilt in memory from the stored
// points in insertion order.
package vector

// Package kdsql implements a SQLite virtual table for radius search over
// points. Each virtual table has a per-table shadow table that stores ids and
// coordinates; queries run against an in-memory k-d tree built from the shadow
// rows in rowid order and shared across connections.
//
// Features:
//   - WHERE coords MATCH ? AND radius = ? returning points within radius
//   - distance hidden column with the Euclidean distance to the query
//   - Lazily created shadow tables and triggers
//   - Cache invalidation on shadow writes through kd_invalidate
//
// Trees are never persisted; they are rebuilt on first use after a change.
package kdsql

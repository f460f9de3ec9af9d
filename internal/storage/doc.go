// Package storage provides the BBolt install journal for stagedit.
//
// Database structure uses four buckets:
//   - config: schema version and timestamps
//   - history: every install in order, keyed by a big-endian sequence number
//   - index: the latest install entry per path, for quick lookups
//   - previous: the content each file had before its latest install
//
// Only the pre-edit content of the latest install is kept per path, so the
// journal grows with the number of installs but not with their content.
//
// BBolt provides ACID transactions, file locking, and corruption detection.
package storage

// Package store provides the SQLite-backed object.Connection.
//
// Every record lives in one table keyed by (model, id):
//   - data: RFC 8785 canonical JSON of the record's persisted fields
//   - digest: domain-separated SHA-256 of data (value.DomainRecord)
//   - seq: logical write counter, bumped only when the digest changes
//
// # Critical Patterns
//
// Change detection: Save is an upsert that leaves seq untouched when the
// stored digest already matches, so re-saving an unchanged record is a
// no-op.
//
// Deterministic reads: list queries order by seq ASC, id ASC COLLATE BINARY.
//
// Uniqueness lookups: Exists compares json_extract(data, path) with the
// value's SQL form. Arrays and objects compare by canonical JSON text.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store

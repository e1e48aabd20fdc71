// Package store is the persistence collaborator: a SQLite-backed,
// append-only log of Database snapshots.
//
// # Snapshot Log
//
//   - Every Save appends one row holding the whole Database as JSON
//   - Rows are ordered by seq INTEGER (logical clock), never by saved_at
//   - A Save whose content matches the newest snapshot writes nothing
//   - Only the newest keep rows are retained; older rows are pruned in the
//     same transaction
//
// # Fingerprints
//
// Each row carries SHA-256 over the body with domain separation
// ("pkb/snapshot/v1"). Load treats a row whose body does not match its
// fingerprint, or does not decode, as corrupt.
//
// # Failure Policy
//
//   - No snapshot yet: the bundled defaults are saved and returned
//   - Newest snapshot corrupt: a warning is logged and defaults are restored
//   - SQL failure: a PERSISTENCE_UNAVAILABLE error; LoadOrDefault swallows it
//
// # Schema
//
// Open runs the schema and any pending migrations in one transaction,
// tracked through PRAGMA user_version. The connection uses WAL with
// synchronous=NORMAL and a 5 second busy timeout.
package store

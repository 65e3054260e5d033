// Package db contains the persistent record store of the vault.
//
// A vault is a single SQLite file holding two tables: the singleton
// `master_config` row (salt and verifier) and the `credentials` table keyed by
// service. Queries go through Bun on top of the pure-Go modernc.org/sqlite
// driver.
//
// Store lifecycle
//   - `Open` takes an explicit DSN (use `PathDSN` for a file, `MemoryDSN` in
//     tests). There is no package-level store.
//   - `Initialize` applies the embedded migrations and is safe to call on every
//     start.
//   - Every mutating method runs inside `WithTx`: the transaction commits when
//     the callback returns nil and rolls back on any error or panic.
//
// Errors
//   - Driver and I/O failures are wrapped in `ErrStorage`; callers match with
//     `errors.Is`. Absent rows are reported as `(nil, nil)`, never as errors.
//
// Testing notes
//   - Prefer `MemoryDSN(t.Name())` for tests that need real SQLite semantics.
//   - Use go-sqlmock through `sqlOpenFunc` to force driver failures.
package db

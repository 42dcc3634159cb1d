// Package database provides SQLite-based storage for veilcheck.
//
// This package implements the VerifyDB, which stores exactly one prior
// verification result per scanned document. Each run overwrites the row for
// its document; the stored confidence is read back on the next run so the
// report can show the delta between passes. This is caller-side state: the
// verification engine itself remains stateless.
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
package database

// Package sqlite implements the audit ledger on an embedded SQLite file.
//
// The adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. The schema lives in migrations/ and is applied with
// golang-migrate on every open; already-applied versions are skipped.
//
// # Schema
//
// A single append-only table:
//
//	changes(id, zoho_id, run_id, before, after, ts)
//
// before and after hold the raw JSON of the recurring invoice on either side
// of the mutation. ts is an RFC 3339 UTC timestamp.
//
// # Data Location
//
// The caller chooses the file. The CLI defaults to audit_YYYYMMDD.sqlite in
// the working directory.
package sqlite

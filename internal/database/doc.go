// Package database provides SQLite-based history storage for webrisk.
//
// Every fetched or rendered report is stored together with its URL, host,
// risk score and tier, so that earlier panels can be listed and rendered
// again without contacting the upstream API. Reports are deduplicated by a
// SHA3-256 hash of their canonical JSON encoding: saving the same report for
// the same URL twice in a row keeps a single row.
//
// SQLite is accessed through modernc.org/sqlite, a CGO-free driver, so the
// binary cross-compiles without a C toolchain.
package database

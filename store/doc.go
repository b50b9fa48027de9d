// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store wraps the external spreadsheet behind a three-operation
tabular interface: ReadAll, ReplaceAll, AppendRow.

The interface is deliberately this narrow. The backing store (Google
Sheets) has no transactions and no partial-update primitive, so every
mutation above this package is a read-all / rewrite-all round trip and
last writer wins. Correctness relies on the bot serializing all
store-mutating operations on one event loop; do not add finer-grained
operations here without revisiting that analysis.

Backends:

  - Sheets: Google Sheets via a service account (production)
  - SQLite: single-file local database (development, offline)
  - Memory: in-process fake (tests)
*/
package store

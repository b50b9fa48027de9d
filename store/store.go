// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import "context"

// Store is the tabular store boundary. The backing spreadsheet offers
// no transactions and no partial updates: readers get a full snapshot,
// writers replace the full contents, and last writer wins. Callers own
// header interpretation; the first row of ReadAll is the header row
// when the sheet has one.
type Store interface {
	// ReadAll returns every row of the sheet, header included.
	ReadAll(ctx context.Context, ref string) ([][]string, error)

	// ReplaceAll clears the sheet and writes header followed by rows.
	ReplaceAll(ctx context.Context, ref string, header []string, rows [][]string) error

	// AppendRow appends a single row after the current contents.
	AppendRow(ctx context.Context, ref string, row []string) error
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package predictions

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/danielhkuo/predictbot/store"
)

// Header is the predictions sheet's header row, in column order
var Header = []string{"MatchNo", "Match", "Username", "Prediction", "Correct"}

// Row is one prediction. Identity is (MatchNo, casefolded Username);
// at most one live row exists per identity, enforced by the
// reconciler rather than the store.
type Row struct {
	MatchNo    int
	Match      string
	Username   string
	Prediction string
	Correct    int
}

// NormalizeUsername produces the casefolded identity form of a username
func NormalizeUsername(u string) string {
	return strings.ToLower(strings.TrimSpace(u))
}

// Table is the predictions sheet repository. Every operation reads or
// rewrites the whole sheet; there is no partial update at the store
// boundary.
type Table struct {
	store store.Store
	ref   string
}

func NewTable(st store.Store, ref string) *Table {
	return &Table{store: st, ref: ref}
}

// Load reads all prediction rows fresh from the store. Unparsable
// MatchNo or Correct cells coerce to 0; short rows pad with blanks.
func (t *Table) Load(ctx context.Context) ([]Row, error) {
	raw, err := t.store.ReadAll(ctx, t.ref)
	if err != nil {
		return nil, fmt.Errorf("failed to read predictions: %w", err)
	}

	var rows []Row
	for i, cells := range raw {
		if i == 0 {
			continue // header
		}
		rows = append(rows, decodeRow(cells))
	}
	return rows, nil
}

// Save rewrites the whole predictions sheet
func (t *Table) Save(ctx context.Context, rows []Row) error {
	encoded := make([][]string, len(rows))
	for i, r := range rows {
		encoded[i] = []string{
			strconv.Itoa(r.MatchNo),
			r.Match,
			r.Username,
			r.Prediction,
			strconv.Itoa(r.Correct),
		}
	}
	if err := t.store.ReplaceAll(ctx, t.ref, Header, encoded); err != nil {
		return fmt.Errorf("failed to save predictions: %w", err)
	}
	return nil
}

func decodeRow(cells []string) Row {
	cell := func(i int) string {
		if i < len(cells) {
			return cells[i]
		}
		return ""
	}

	// Numeric cells coerce to 0 when unparsable; display cells are
	// kept verbatim and only normalized at comparison time.
	matchNo, err := strconv.Atoi(strings.TrimSpace(cell(0)))
	if err != nil {
		matchNo = 0
	}
	correct, err := strconv.Atoi(strings.TrimSpace(cell(4)))
	if err != nil {
		correct = 0
	}

	return Row{
		MatchNo:    matchNo,
		Match:      cell(1),
		Username:   cell(2),
		Prediction: cell(3),
		Correct:    correct,
	}
}

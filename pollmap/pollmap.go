// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package pollmap persists the poll-identifier to match-number mapping
// in the tabular store. The mapping is append-only: a match may be
// re-polled, producing a new poll ID each time, and stale poll IDs
// remain resolvable so late votes still land on the right match.
package pollmap

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/danielhkuo/predictbot/store"
)

// Header is the poll map sheet's header row
var Header = []string{"poll_id", "MatchNo"}

type Map struct {
	store store.Store
	ref   string
}

func New(st store.Store, ref string) *Map {
	return &Map{store: st, ref: ref}
}

// Load reads the full poll map fresh from the store. Blank or
// malformed rows are skipped, matching how hand-edited sheets behave.
func (m *Map) Load(ctx context.Context) (map[string]int, error) {
	rows, err := m.store.ReadAll(ctx, m.ref)
	if err != nil {
		return nil, fmt.Errorf("failed to read poll map: %w", err)
	}

	out := make(map[string]int)
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		if len(row) < 2 {
			continue
		}
		pollID := strings.TrimSpace(row[0])
		if pollID == "" {
			continue
		}
		matchNo, err := strconv.Atoi(strings.TrimSpace(row[1]))
		if err != nil {
			slog.Warn("skipping malformed poll map row", "row", i+1, "match_no", row[1])
			continue
		}
		out[pollID] = matchNo
	}
	return out, nil
}

// Add appends a poll ID to match number mapping
func (m *Map) Add(ctx context.Context, pollID string, matchNo int) error {
	if err := m.store.AppendRow(ctx, m.ref, []string{pollID, strconv.Itoa(matchNo)}); err != nil {
		return fmt.Errorf("failed to save poll mapping: %w", err)
	}
	return nil
}

// EnsureHeader writes the header row if the sheet is empty. Called
// once at startup so Add never races with sheet initialization.
func (m *Map) EnsureHeader(ctx context.Context) error {
	rows, err := m.store.ReadAll(ctx, m.ref)
	if err != nil {
		return fmt.Errorf("failed to read poll map: %w", err)
	}
	if len(rows) > 0 {
		return nil
	}
	return m.store.AppendRow(ctx, m.ref, Header)
}

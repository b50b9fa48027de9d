// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"sync"
)

// Memory is an in-memory Store used by tests and local experiments.
// It mirrors the spreadsheet's semantics: whole-sheet reads and
// writes, no row-level operations.
type Memory struct {
	mu     sync.Mutex
	sheets map[string][][]string
}

func NewMemory() *Memory {
	return &Memory{sheets: make(map[string][][]string)}
}

func (m *Memory) ReadAll(_ context.Context, ref string) ([][]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows, ok := m.sheets[ref]
	if !ok {
		return nil, nil // an empty sheet reads as no rows, same as Sheets
	}
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = append([]string(nil), r...)
	}
	return out, nil
}

func (m *Memory) ReplaceAll(_ context.Context, ref string, header []string, rows [][]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := make([][]string, 0, len(rows)+1)
	next = append(next, append([]string(nil), header...))
	for _, r := range rows {
		next = append(next, append([]string(nil), r...))
	}
	m.sheets[ref] = next
	return nil
}

func (m *Memory) AppendRow(_ context.Context, ref string, row []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sheets[ref] = append(m.sheets[ref], append([]string(nil), row...))
	return nil
}

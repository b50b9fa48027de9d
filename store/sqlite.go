// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLite is a local Store backend for development and offline use.
// Rows are stored as JSON cell arrays so the three-op spreadsheet
// semantics carry over unchanged; no SQL leaks above the interface.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the local database and its schema
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) ReadAll(ctx context.Context, ref string) ([][]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT cells FROM sheet_row WHERE ref = ? ORDER BY pos
	`, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows for %s: %w", ref, err)
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan row for %s: %w", ref, err)
		}
		var cells []string
		if err := json.Unmarshal([]byte(raw), &cells); err != nil {
			return nil, fmt.Errorf("corrupt row in %s: %w", ref, err)
		}
		out = append(out, cells)
	}
	return out, rows.Err()
}

func (s *SQLite) ReplaceAll(ctx context.Context, ref string, header []string, rows [][]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sheet_row WHERE ref = ?`, ref); err != nil {
		return fmt.Errorf("failed to clear %s: %w", ref, err)
	}

	all := append([][]string{header}, rows...)
	for pos, row := range all {
		raw, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("failed to encode row: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO sheet_row (ref, pos, cells) VALUES (?, ?, ?)
		`, ref, pos, string(raw)); err != nil {
			return fmt.Errorf("failed to write row to %s: %w", ref, err)
		}
	}

	return tx.Commit()
}

func (s *SQLite) AppendRow(ctx context.Context, ref string, row []string) error {
	raw, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("failed to encode row: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sheet_row (ref, pos, cells)
		VALUES (?, (SELECT COALESCE(MAX(pos), -1) + 1 FROM sheet_row WHERE ref = ?), ?)
	`, ref, ref, string(raw))
	if err != nil {
		return fmt.Errorf("failed to append row to %s: %w", ref, err)
	}
	return nil
}

const schema = `
-- Sheet rows: one record per spreadsheet row, cells as a JSON array
CREATE TABLE IF NOT EXISTS sheet_row (
    ref TEXT NOT NULL,
    pos INTEGER NOT NULL,
    cells TEXT NOT NULL,
    PRIMARY KEY (ref, pos)
);
`

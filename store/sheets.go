// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"fmt"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// readRange covers every column the bot ever writes; Sheets trims
// trailing empty cells on read.
const readRange = "A:Z"

// Sheets is the Google Sheets Store backend. Each ref is a
// spreadsheet ID; all operations target the first sheet.
type Sheets struct {
	svc *sheets.Service
}

// NewSheets builds a Sheets store from service-account credentials JSON
func NewSheets(ctx context.Context, credentialsJSON string) (*Sheets, error) {
	jwtCfg, err := google.JWTConfigFromJSON([]byte(credentialsJSON), sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse service account credentials: %w", err)
	}

	svc, err := sheets.NewService(ctx, option.WithHTTPClient(jwtCfg.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}

	return &Sheets{svc: svc}, nil
}

func (s *Sheets) ReadAll(ctx context.Context, ref string) ([][]string, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(ref, readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", ref, err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, len(raw))
		for i, cell := range raw {
			row[i] = fmt.Sprint(cell)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *Sheets) ReplaceAll(ctx context.Context, ref string, header []string, rows [][]string) error {
	_, err := s.svc.Spreadsheets.Values.Clear(ref, readRange, &sheets.ClearValuesRequest{}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to clear sheet %s: %w", ref, err)
	}

	values := make([][]interface{}, 0, len(rows)+1)
	values = append(values, toCells(header))
	for _, row := range rows {
		values = append(values, toCells(row))
	}

	vr := &sheets.ValueRange{Values: values}
	_, err = s.svc.Spreadsheets.Values.Update(ref, "A1", vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to update sheet %s: %w", ref, err)
	}
	return nil
}

func (s *Sheets) AppendRow(ctx context.Context, ref string, row []string) error {
	vr := &sheets.ValueRange{Values: [][]interface{}{toCells(row)}}
	_, err := s.svc.Spreadsheets.Values.Append(ref, readRange, vr).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to append to sheet %s: %w", ref, err)
	}
	return nil
}

func toCells(row []string) []interface{} {
	cells := make([]interface{}, len(row))
	for i, v := range row {
		cells[i] = v
	}
	return cells
}

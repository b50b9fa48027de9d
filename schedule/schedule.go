// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package schedule

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// SourceTimezone is the wall-clock timezone of the schedule CSV
const SourceTimezone = "Asia/Kolkata"

const (
	dateLayout = "2 Jan 2006"
)

// timeLayouts accepts both padded and unpadded clock hours
var timeLayouts = []string{"3:04 PM", "03:04 PM"}

var requiredColumns = []string{
	"MatchNo", "Date", "Day", "Teams", "MatchTime", "Venue", "PollStartTime", "PollEndTime",
}

// placeholderTokens mark matches whose teams are not yet decided
var placeholderTokens = []string{"Qualifier", "Eliminator", "Final"}

// Match is one schedule entry. Immutable after load.
type Match struct {
	No           int
	Date         string
	Day          string
	Teams        string
	MatchTime    string
	Venue        string
	PollStartRaw string
	PollEndRaw   string

	// PollStartUTC is the poll-open instant, converted from the
	// source timezone at load time.
	PollStartUTC time.Time
}

// TeamNames splits the Teams field into the two scheduled teams
func (m Match) TeamNames() []string {
	parts := strings.Split(m.Teams, " vs ")
	names := make([]string, len(parts))
	for i, p := range parts {
		names[i] = strings.TrimSpace(p)
	}
	return names
}

// Undecided reports whether the teams for this match are not yet known
func (m Match) Undecided() bool {
	for _, token := range placeholderTokens {
		if strings.Contains(m.Teams, token) {
			return true
		}
	}
	return false
}

// Registry is an immutable match lookup, loaded once at startup and
// passed by handle into every component that needs it.
type Registry struct {
	matches map[int]Match
	order   []int
}

// Load reads and validates the schedule CSV. Missing required columns
// are fatal; a row that fails to parse is dropped with a warning.
func Load(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open schedule CSV %s: %w", path, err)
	}
	defer f.Close()

	loc, err := time.LoadLocation(SourceTimezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %s: %w", SourceTimezone, err)
	}

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse schedule CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, errors.New("schedule CSV is empty")
	}

	col := make(map[string]int)
	for i, name := range records[0] {
		col[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("schedule CSV missing required column %s", name)
		}
	}

	reg := &Registry{matches: make(map[int]Match)}
	for i, record := range records[1:] {
		rowNo := i + 2 // 1-based, after header

		cell := func(name string) string {
			idx := col[name]
			if idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		matchNo, err := strconv.Atoi(cell("MatchNo"))
		if err != nil {
			slog.Warn("dropping schedule row: bad match number",
				"row", rowNo, "match_no", cell("MatchNo"))
			continue
		}

		m := Match{
			No:           matchNo,
			Date:         cell("Date"),
			Day:          cell("Day"),
			Teams:        cell("Teams"),
			MatchTime:    cell("MatchTime"),
			Venue:        cell("Venue"),
			PollStartRaw: cell("PollStartTime"),
			PollEndRaw:   cell("PollEndTime"),
		}

		if !strings.Contains(m.Teams, " vs ") && !m.Undecided() {
			slog.Warn("teams format might be incorrect (expected 'Team A vs Team B')",
				"match_no", matchNo, "teams", m.Teams)
		}

		start, err := parseWallClock(m.Date, m.PollStartRaw, loc)
		if err != nil {
			slog.Warn("dropping schedule row: invalid date/time",
				"row", rowNo, "match_no", matchNo, "error", err)
			continue
		}
		m.PollStartUTC = start.UTC()

		reg.matches[matchNo] = m
	}

	for no := range reg.matches {
		reg.order = append(reg.order, no)
	}
	sort.Ints(reg.order)

	slog.Info("schedule loaded", "matches", len(reg.matches))
	return reg, nil
}

// Match looks up a match by number
func (r *Registry) Match(no int) (Match, bool) {
	m, ok := r.matches[no]
	return m, ok
}

// All returns every match in ascending match-number order
func (r *Registry) All() []Match {
	out := make([]Match, 0, len(r.order))
	for _, no := range r.order {
		out = append(out, r.matches[no])
	}
	return out
}

func (r *Registry) Len() int {
	return len(r.matches)
}

func parseWallClock(date, clock string, loc *time.Location) (time.Time, error) {
	var lastErr error
	for _, layout := range timeLayouts {
		t, err := time.ParseInLocation(dateLayout+" "+layout, date+" "+clock, loc)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

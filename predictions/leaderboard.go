// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package predictions

import (
	"sort"
	"strings"
)

// Entry is one leaderboard line
type Entry struct {
	Username string
	Score    int
}

// Leaderboard groups prediction rows by username and sums correctness,
// descending by score. Ties keep first-seen order in the table scan so
// the ranking is reproducible for a given snapshot. Rows with a blank
// username are excluded. Returns an empty slice, not an error, when
// there is nothing to rank.
func Leaderboard(rows []Row) []Entry {
	scores := make(map[string]int)
	var order []string

	for _, row := range rows {
		if strings.TrimSpace(row.Username) == "" {
			continue
		}
		if _, seen := scores[row.Username]; !seen {
			order = append(order, row.Username)
		}
		scores[row.Username] += row.Correct
	}

	entries := make([]Entry, 0, len(order))
	for _, name := range order {
		entries = append(entries, Entry{Username: name, Score: scores[name]})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})

	return entries
}

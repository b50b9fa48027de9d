// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package schedule

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schedule.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write CSV: %v", err)
	}
	return path
}

const header = "MatchNo,Date,Day,Teams,MatchTime,Venue,PollStartTime,PollEndTime\n"

func TestLoadParsesMatches(t *testing.T) {
	path := writeCSV(t, header+
		"1,22 Mar 2025,Saturday,Kolkata Knight Riders vs Royal Challengers Bengaluru,7:30 PM,Eden Gardens,7:00 PM,7:25 PM\n"+
		"2,23 Mar 2025,Sunday,Sunrisers Hyderabad vs Rajasthan Royals,3:30 PM,Rajiv Gandhi Stadium,3:00 PM,3:25 PM\n")

	reg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if reg.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", reg.Len())
	}

	m, ok := reg.Match(1)
	if !ok {
		t.Fatal("Match(1) not found")
	}
	if m.Teams != "Kolkata Knight Riders vs Royal Challengers Bengaluru" {
		t.Errorf("Teams = %q", m.Teams)
	}
	if m.Venue != "Eden Gardens" || m.Day != "Saturday" {
		t.Errorf("Unexpected match fields: %+v", m)
	}

	// 7:00 PM IST is 13:30 UTC
	want := time.Date(2025, time.March, 22, 13, 30, 0, 0, time.UTC)
	if !m.PollStartUTC.Equal(want) {
		t.Errorf("PollStartUTC = %v, want %v", m.PollStartUTC, want)
	}
}

func TestLoadDropsBadRows(t *testing.T) {
	path := writeCSV(t, header+
		"1,22 Mar 2025,Saturday,A vs B,7:30 PM,Venue,7:00 PM,7:25 PM\n"+
		"oops,22 Mar 2025,Saturday,C vs D,7:30 PM,Venue,7:00 PM,7:25 PM\n"+
		"3,not-a-date,Saturday,E vs F,7:30 PM,Venue,7:00 PM,7:25 PM\n"+
		"4,22 Mar 2025,Saturday,G vs H,7:30 PM,Venue,25:99,7:25 PM\n")

	reg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if reg.Len() != 1 {
		t.Errorf("Len() = %d, want 1 (bad rows dropped)", reg.Len())
	}
	if _, ok := reg.Match(1); !ok {
		t.Error("Match(1) should survive")
	}
}

func TestLoadMissingColumnFails(t *testing.T) {
	path := writeCSV(t, "MatchNo,Date,Teams\n1,22 Mar 2025,A vs B\n")

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() expected error for missing columns")
	}
	if !strings.Contains(err.Error(), "missing required column") {
		t.Errorf("Load() error = %v, want missing-column error", err)
	}
}

func TestLoadEmptyFileFails(t *testing.T) {
	path := writeCSV(t, "")
	if _, err := Load(path); err == nil {
		t.Fatal("Load() expected error for empty CSV")
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Fatal("Load() expected error for missing file")
	}
}

func TestAllReturnsAscendingOrder(t *testing.T) {
	path := writeCSV(t, header+
		"9,22 Mar 2025,Saturday,A vs B,7:30 PM,Venue,7:00 PM,7:25 PM\n"+
		"2,23 Mar 2025,Sunday,C vs D,7:30 PM,Venue,7:00 PM,7:25 PM\n"+
		"5,24 Mar 2025,Monday,E vs F,7:30 PM,Venue,7:00 PM,7:25 PM\n")

	reg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	var got []int
	for _, m := range reg.All() {
		got = append(got, m.No)
	}
	if want := []int{2, 5, 9}; !reflect.DeepEqual(got, want) {
		t.Errorf("All() order = %v, want %v", got, want)
	}
}

func TestTeamNames(t *testing.T) {
	tests := []struct {
		teams string
		want  []string
	}{
		{"Mumbai Indians vs Chennai Super Kings", []string{"Mumbai Indians", "Chennai Super Kings"}},
		{"A vs B", []string{"A", "B"}},
		{"Final", []string{"Final"}},
	}

	for _, tt := range tests {
		m := Match{Teams: tt.teams}
		if got := m.TeamNames(); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("TeamNames(%q) = %v, want %v", tt.teams, got, tt.want)
		}
	}
}

func TestUndecided(t *testing.T) {
	tests := []struct {
		teams string
		want  bool
	}{
		{"Mumbai Indians vs Chennai Super Kings", false},
		{"Qualifier 1", true},
		{"Eliminator", true},
		{"Final", true},
		{"Winner Qualifier 1 vs Winner Eliminator", true},
	}

	for _, tt := range tests {
		m := Match{Teams: tt.teams}
		if got := m.Undecided(); got != tt.want {
			t.Errorf("Undecided(%q) = %v, want %v", tt.teams, got, tt.want)
		}
	}
}

func TestParseWallClockLayouts(t *testing.T) {
	loc, err := time.LoadLocation(SourceTimezone)
	if err != nil {
		t.Fatalf("LoadLocation() error = %v", err)
	}

	// Both padded and unpadded clock hours must parse
	for _, clock := range []string{"7:00 PM", "07:00 PM"} {
		got, err := parseWallClock("22 Mar 2025", clock, loc)
		if err != nil {
			t.Fatalf("parseWallClock(%q) error = %v", clock, err)
		}
		want := time.Date(2025, time.March, 22, 19, 0, 0, 0, loc)
		if !got.Equal(want) {
			t.Errorf("parseWallClock(%q) = %v, want %v", clock, got, want)
		}
	}
}

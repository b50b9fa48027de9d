// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package predictions

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/danielhkuo/predictbot/pollmap"
	"github.com/danielhkuo/predictbot/schedule"
)

// Outcome classifies what a reconciliation did
type Outcome string

const (
	Recorded  Outcome = "recorded"
	Updated   Outcome = "updated"
	Retracted Outcome = "retracted"
	Ignored   Outcome = "ignored"
)

// Ignore reasons
const (
	ReasonUnknownPoll      = "unknown-poll"
	ReasonUnknownMatch     = "unknown-match"
	ReasonNothingToRetract = "nothing-to-retract"
	ReasonInvalidOption    = "invalid-option"
)

// Result describes a completed reconciliation
type Result struct {
	Outcome Outcome
	Reason  string // set when Outcome == Ignored
	MatchNo int
	Team    string // the recorded team, when a vote was stored
}

// Reconciler converts raw poll-answer events into at-most-one-row-per
// -user-per-match durable state changes. All calls must run on the
// bot's single event loop; the read-all/replace-all round trip is not
// safe against concurrent external writers.
type Reconciler struct {
	polls    *pollmap.Map
	registry *schedule.Registry
	table    *Table
}

func NewReconciler(polls *pollmap.Map, registry *schedule.Registry, table *Table) *Reconciler {
	return &Reconciler{polls: polls, registry: registry, table: table}
}

// Reconcile applies one poll-answer event. An empty optionIdxs is a
// retraction. Only the first selected option is honored; the polls
// are single-answer. Ignored outcomes are normal (stale polls, foreign
// polls, double retractions), never errors.
func (r *Reconciler) Reconcile(ctx context.Context, pollID, username string, optionIdxs []int) (Result, error) {
	pollMap, err := r.polls.Load(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("reconcile: %w", err)
	}

	matchNo, ok := pollMap[pollID]
	if !ok {
		slog.Warn("no match found for poll, maybe an old poll?", "poll_id", pollID)
		return Result{Outcome: Ignored, Reason: ReasonUnknownPoll}, nil
	}

	match, ok := r.registry.Match(matchNo)
	if !ok {
		slog.Warn("no match info found", "match_no", matchNo, "poll_id", pollID)
		return Result{Outcome: Ignored, Reason: ReasonUnknownMatch, MatchNo: matchNo}, nil
	}

	if len(optionIdxs) == 0 {
		return r.retract(ctx, matchNo, username)
	}

	teams := match.TeamNames()
	chosen := optionIdxs[0]
	if chosen < 0 || chosen >= len(teams) {
		slog.Error("invalid option index for poll",
			"option", chosen, "poll_id", pollID, "match_no", matchNo, "teams", match.Teams)
		return Result{Outcome: Ignored, Reason: ReasonInvalidOption, MatchNo: matchNo}, nil
	}
	chosenTeam := teams[chosen]

	rows, err := r.table.Load(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("reconcile: %w", err)
	}

	idx := findRow(rows, matchNo, username)
	outcome := Updated
	if idx < 0 {
		rows = append(rows, Row{
			MatchNo:    matchNo,
			Match:      match.Teams,
			Username:   username,
			Prediction: chosenTeam,
			Correct:    0,
		})
		outcome = Recorded
	} else {
		// A changed vote always clears prior scoring; correctness is
		// meaningless until the match is re-scored.
		rows[idx].Prediction = chosenTeam
		rows[idx].Correct = 0
	}

	if err := r.table.Save(ctx, rows); err != nil {
		return Result{}, fmt.Errorf("reconcile: %w", err)
	}

	return Result{Outcome: outcome, MatchNo: matchNo, Team: chosenTeam}, nil
}

func (r *Reconciler) retract(ctx context.Context, matchNo int, username string) (Result, error) {
	rows, err := r.table.Load(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("retract: %w", err)
	}

	idx := findRow(rows, matchNo, username)
	if idx < 0 {
		slog.Info("no existing prediction to remove", "match_no", matchNo, "username", username)
		return Result{Outcome: Ignored, Reason: ReasonNothingToRetract, MatchNo: matchNo}, nil
	}

	rows = append(rows[:idx], rows[idx+1:]...)
	if err := r.table.Save(ctx, rows); err != nil {
		return Result{}, fmt.Errorf("retract: %w", err)
	}

	return Result{Outcome: Retracted, MatchNo: matchNo}, nil
}

// findRow locates a user's row for a match by casefolded username
func findRow(rows []Row, matchNo int, username string) int {
	want := NormalizeUsername(username)
	for i, row := range rows {
		if row.MatchNo == matchNo && NormalizeUsername(row.Username) == want {
			return i
		}
	}
	return -1
}

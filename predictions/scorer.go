// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package predictions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/danielhkuo/predictbot/schedule"
)

// MaxScorableMatch is the highest match number with concretely known
// teams; playoff rows above it carry placeholder names until decided.
const MaxScorableMatch = 70

var (
	ErrUnknownMatch   = errors.New("match not found in the schedule")
	ErrNoPredictions  = errors.New("no predictions found for this match")
	ErrInvalidWinner  = errors.New("winner is not one of the scheduled teams")
	ErrTeamsUndecided = errors.New("teams are not decided yet for this match")
)

// ScoreResult reports a completed scoring pass
type ScoreResult struct {
	Winner  string // normalized to the schedule's casing
	Correct int    // rows marked correct
	Scored  int    // rows evaluated for the match
}

// Scorer recomputes the correctness flag for every prediction row of a
// match once its winner is declared.
type Scorer struct {
	registry *schedule.Registry
	table    *Table
}

func NewScorer(registry *schedule.Registry, table *Table) *Scorer {
	return &Scorer{registry: registry, table: table}
}

// Score marks correct = 1 for every row of the match whose prediction
// casefold-equals the declared winner, 0 for the rest. Rows for other
// matches are untouched. The whole table is rewritten on persist.
func (s *Scorer) Score(ctx context.Context, matchNo int, declaredWinner string) (ScoreResult, error) {
	match, ok := s.registry.Match(matchNo)
	if !ok {
		return ScoreResult{}, ErrUnknownMatch
	}

	if matchNo > MaxScorableMatch {
		return ScoreResult{}, ErrTeamsUndecided
	}

	winner, ok := normalizeWinner(match, declaredWinner)
	if !ok {
		return ScoreResult{}, ErrInvalidWinner
	}

	rows, err := s.table.Load(ctx)
	if err != nil {
		return ScoreResult{}, fmt.Errorf("score: %w", err)
	}
	if len(rows) == 0 {
		return ScoreResult{}, ErrNoPredictions
	}

	result := ScoreResult{Winner: winner}
	winnerFold := strings.ToLower(winner)
	for i := range rows {
		if rows[i].MatchNo != matchNo {
			continue
		}
		result.Scored++
		if strings.ToLower(strings.TrimSpace(rows[i].Prediction)) == winnerFold {
			rows[i].Correct = 1
			result.Correct++
		} else {
			rows[i].Correct = 0
		}
	}
	if result.Scored == 0 {
		return ScoreResult{}, ErrNoPredictions
	}

	if err := s.table.Save(ctx, rows); err != nil {
		return ScoreResult{}, fmt.Errorf("score: %w", err)
	}

	return result, nil
}

// normalizeWinner maps a case-insensitive winner name to the exact
// casing used in the schedule
func normalizeWinner(match schedule.Match, declared string) (string, bool) {
	want := strings.ToLower(strings.TrimSpace(declared))
	for _, team := range match.TeamNames() {
		if strings.ToLower(team) == want {
			return team, true
		}
	}
	return "", false
}

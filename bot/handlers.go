// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/predictbot/predictions"
	"github.com/danielhkuo/predictbot/schedule"
	"github.com/danielhkuo/predictbot/scheduler"
	"github.com/danielhkuo/predictbot/telegram"
)

const helpText = "🏏 *Prediction Bot Commands* 🏏\n\n" +
	"/startpoll <match_no> - Start a prediction poll for a match\n" +
	"/leaderboard - Show the current prediction leaderboard\n" +
	"/score <match_no> <winner> - Score a match (admin only)\n" +
	"/get_chat_id - Get the current chat ID\n" +
	"/help - Show this help message\n\n" +
	"Make your predictions by voting in the polls!"

func (b *Bot) handleMessage(ctx context.Context, msg *telegram.Message) {
	name, args, ok := parseCommand(msg.Text)
	if !ok {
		return
	}

	chatID := msg.Chat.ID
	slog.Info("command received", "command", name, "chat_id", chatID)

	switch name {
	case "start":
		b.handleStart(ctx, chatID, msg.From)
	case "help":
		b.replyMarkdown(ctx, chatID, helpText)
	case "get_chat_id":
		b.replyMarkdown(ctx, chatID, fmt.Sprintf("Chat ID: `%d`", chatID))
	case "startpoll":
		b.handleStartPoll(ctx, chatID, args)
	case "score":
		b.handleScore(ctx, chatID, msg.From, args)
	case "leaderboard":
		b.handleLeaderboard(ctx, chatID)
	}
}

// parseCommand splits "/score@PredictBot 5 Mumbai" into name and args
func parseCommand(text string) (string, []string, bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", nil, false
	}
	name := strings.TrimPrefix(fields[0], "/")
	if at := strings.Index(name, "@"); at >= 0 {
		name = name[:at]
	}
	return name, fields[1:], true
}

func (b *Bot) handleStart(ctx context.Context, chatID int64, from *telegram.User) {
	name := "there"
	if from != nil {
		name = from.FullName()
	}
	b.reply(ctx, chatID, fmt.Sprintf(
		"Hi %s! I'm the match prediction bot.\n"+
			"I'll help you predict match outcomes and track your predictions.\n"+
			"Use /help to see available commands.", name))
}

func (b *Bot) handleStartPoll(ctx context.Context, chatID int64, args []string) {
	if len(args) == 0 {
		b.reply(ctx, chatID, "Usage: /startpoll <match_no>")
		return
	}

	matchNo, err := strconv.Atoi(args[0])
	if err != nil {
		b.reply(ctx, chatID, "Invalid match number. Please provide an integer.")
		return
	}

	match, ok := b.registry.Match(matchNo)
	if !ok {
		b.reply(ctx, chatID, fmt.Sprintf("Match number %d not found in the schedule.", matchNo))
		return
	}

	b.sendPollForMatch(ctx, chatID, match)
}

// handleScheduledPoll fires when a match's poll window opens
func (b *Bot) handleScheduledPoll(ctx context.Context, job scheduler.Job) {
	slog.Info("running scheduled poll job", "match_no", job.MatchNo)

	match, ok := b.registry.Match(job.MatchNo)
	if !ok {
		slog.Error("scheduled job references unknown match", "match_no", job.MatchNo)
		return
	}

	b.sendPollForMatch(ctx, b.cfg.GroupChatID, match)
}

// sendPollForMatch sends the prediction poll for a decided match and
// records the poll mapping, or an informational message for an
// undecided one (which records no mapping).
func (b *Bot) sendPollForMatch(ctx context.Context, chatID int64, match schedule.Match) {
	if match.Undecided() {
		b.reply(ctx, chatID, fmt.Sprintf(
			"Match %d: %s\nThe teams for this match are not yet decided. The poll will be created later.",
			match.No, match.Teams))
		return
	}

	teams := match.TeamNames()
	if len(teams) != 2 {
		slog.Error("cannot create poll: incorrect number of teams",
			"match_no", match.No, "teams", match.Teams)
		b.reply(ctx, chatID, fmt.Sprintf(
			"Error: Invalid team format for Match %d ('%s'). Cannot create poll.",
			match.No, match.Teams))
		return
	}

	question := fmt.Sprintf("Match %d: %s\nVenue: %s\nWho will win?",
		match.No, match.Teams, match.Venue)

	pollID, err := b.transport.SendPoll(ctx, chatID, question, teams, false)
	if err != nil {
		slog.Error("failed to send poll", "match_no", match.No, "error", err)
		return
	}
	slog.Info("poll sent", "match_no", match.No, "poll_id", pollID)

	if err := b.polls.Add(ctx, pollID, match.No); err != nil {
		// The poll is live either way; votes on an unmapped poll are
		// ignored as unknown-poll until an operator repairs the sheet.
		slog.Error("failed to save poll mapping",
			"poll_id", pollID, "match_no", match.No, "error", err)
		return
	}
	slog.Info("poll mapped", "poll_id", pollID, "match_no", match.No)
}

func (b *Bot) handlePollAnswer(ctx context.Context, answer *telegram.PollAnswer) {
	if answer.User == nil {
		slog.Warn("poll answer without user information, skipping", "poll_id", answer.PollID)
		return
	}

	username := answer.User.FullName()
	slog.Info("poll answer received",
		"poll_id", answer.PollID,
		"user_id", answer.User.ID,
		"username", username,
		"options", answer.OptionIDs)

	result, err := b.reconciler.Reconcile(ctx, answer.PollID, username, answer.OptionIDs)
	if err != nil {
		// Not retried: the vote is logged here, not silently lost,
		// but there is no replay queue.
		slog.Error("vote not reconciled", "poll_id", answer.PollID, "username", username, "error", err)
		return
	}

	switch result.Outcome {
	case predictions.Ignored:
		slog.Warn("vote ignored", "poll_id", answer.PollID, "reason", result.Reason)
	case predictions.Retracted:
		slog.Info("vote retracted", "match_no", result.MatchNo, "username", username)
	default:
		slog.Info("vote "+string(result.Outcome),
			"match_no", result.MatchNo, "username", username, "team", result.Team)
	}
}

func (b *Bot) handleScore(ctx context.Context, chatID int64, from *telegram.User, args []string) {
	if from == nil || !b.cfg.IsAdmin(from.ID) {
		b.reply(ctx, chatID, "Sorry, only admins can use this command.")
		return
	}

	if len(args) < 2 {
		b.reply(ctx, chatID, "Usage: /score <match_no> <Winning Team Name>")
		return
	}

	matchNo, err := strconv.Atoi(args[0])
	if err != nil {
		b.reply(ctx, chatID, "Invalid match number. Please provide an integer.")
		return
	}

	winner := strings.TrimSpace(strings.Join(args[1:], " "))
	if winner == "" {
		b.reply(ctx, chatID, "Please provide the winning team name.")
		return
	}

	slog.Info("scoring match", "match_no", matchNo, "winner", winner, "initiated_by", from.FullName())

	result, err := b.scorer.Score(ctx, matchNo, winner)
	switch {
	case err == nil:
		b.reply(ctx, chatID, fmt.Sprintf(
			"Score updated for Match %d. Winner: %s. Predictions marked.",
			matchNo, result.Winner))
	case errors.Is(err, predictions.ErrUnknownMatch):
		b.reply(ctx, chatID, fmt.Sprintf(
			"Match number %d not found in the schedule. Cannot score.", matchNo))
	case errors.Is(err, predictions.ErrTeamsUndecided):
		b.reply(ctx, chatID, fmt.Sprintf(
			"Match number %d cannot be scored until the teams are decided.", matchNo))
	case errors.Is(err, predictions.ErrInvalidWinner):
		match, _ := b.registry.Match(matchNo)
		teams := match.TeamNames()
		b.reply(ctx, chatID, fmt.Sprintf(
			"Invalid winner '%s'. For Match %d, expected one of: %s",
			winner, matchNo, strings.Join(teams, ", ")))
	case errors.Is(err, predictions.ErrNoPredictions):
		b.reply(ctx, chatID, fmt.Sprintf(
			"No predictions found for Match %d. Nothing to score.", matchNo))
	default:
		slog.Error("failed to score match", "match_no", matchNo, "error", err)
		b.reply(ctx, chatID, fmt.Sprintf(
			"An error occurred while updating scores for Match %d.", matchNo))
	}
}

func (b *Bot) handleLeaderboard(ctx context.Context, chatID int64) {
	rows, err := b.table.Load(ctx)
	if err != nil {
		slog.Error("failed to load predictions for leaderboard", "error", err)
		b.reply(ctx, chatID, "Error accessing prediction data for leaderboard.")
		return
	}

	if len(rows) == 0 {
		b.reply(ctx, chatID, "No predictions found yet to generate a leaderboard.")
		return
	}

	entries := predictions.Leaderboard(rows)
	if len(entries) == 0 {
		b.reply(ctx, chatID, "No scores recorded yet for the leaderboard.")
		return
	}

	var sb strings.Builder
	sb.WriteString("🏆 *Leaderboard* 🏆\n\n")
	for i, entry := range entries {
		rank := i + 1
		medal := ""
		switch rank {
		case 1:
			medal = "🥇 "
		case 2:
			medal = "🥈 "
		case 3:
			medal = "🥉 "
		}
		fmt.Fprintf(&sb, "%s%s: %s - %d points\n",
			medal, humanize.Ordinal(rank), entry.Username, entry.Score)
	}

	b.replyMarkdown(ctx, chatID, sb.String())
}

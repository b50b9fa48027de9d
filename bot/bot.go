// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package bot

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/danielhkuo/predictbot/cliparse"
	"github.com/danielhkuo/predictbot/pollmap"
	"github.com/danielhkuo/predictbot/predictions"
	"github.com/danielhkuo/predictbot/schedule"
	"github.com/danielhkuo/predictbot/scheduler"
	"github.com/danielhkuo/predictbot/telegram"
)

// ConflictMarker is the log line the supervisor scans stderr for. It
// must stay in sync with the manager's detector.
const ConflictMarker = "webhook conflict detected"

const (
	longPollTimeout = 50 * time.Second
	conflictPause   = 5 * time.Second
	errorPause      = 3 * time.Second
)

// Transport is the chat boundary the bot consumes. *telegram.Client
// satisfies it; tests use a fake.
type Transport interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendMarkdown(ctx context.Context, chatID int64, text string) error
	SendPoll(ctx context.Context, chatID int64, question string, options []string, anonymous bool) (string, error)
	SetMyCommands(ctx context.Context, commands []telegram.BotCommand) error
	GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]telegram.Update, error)
}

// Bot owns the single event loop. Command handlers, the poll-answer
// handler and scheduled-job callbacks all run on that one goroutine,
// which is what serializes every store-mutating operation.
type Bot struct {
	cfg        cliparse.Config
	transport  Transport
	registry   *schedule.Registry
	polls      *pollmap.Map
	table      *predictions.Table
	reconciler *predictions.Reconciler
	scorer     *predictions.Scorer
	jobs       <-chan scheduler.Job
}

func New(
	cfg cliparse.Config,
	transport Transport,
	registry *schedule.Registry,
	polls *pollmap.Map,
	table *predictions.Table,
	jobs <-chan scheduler.Job,
) *Bot {
	return &Bot{
		cfg:        cfg,
		transport:  transport,
		registry:   registry,
		polls:      polls,
		table:      table,
		reconciler: predictions.NewReconciler(polls, registry, table),
		scorer:     predictions.NewScorer(registry, table),
		jobs:       jobs,
	}
}

// Run registers commands, starts the update poller and processes
// events until the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	b.registerCommands(ctx)

	updates := make(chan telegram.Update)
	go b.pollUpdates(ctx, updates)

	jobs := b.jobs
	slog.Info("bot event loop started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case job, ok := <-jobs:
			if !ok {
				jobs = nil // all scheduled polls fired
				continue
			}
			b.handleScheduledPoll(ctx, job)

		case u := <-updates:
			b.handleUpdate(ctx, u)
		}
	}
}

// pollUpdates long-polls the transport and feeds the event loop. A
// conflict is logged with the fixed marker and polling continues; the
// supervisor decides whether to restart us.
func (b *Bot) pollUpdates(ctx context.Context, out chan<- telegram.Update) {
	var offset int64

	for {
		if ctx.Err() != nil {
			return
		}

		batch, err := b.transport.GetUpdates(ctx, offset, longPollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if errors.Is(err, telegram.ErrConflict) {
				slog.Error(ConflictMarker+": the bot is likely configured with a webhook", "error", err)
				sleepCtx(ctx, conflictPause)
				continue
			}
			slog.Error("failed to fetch updates", "error", err)
			sleepCtx(ctx, errorPause)
			continue
		}

		for _, u := range batch {
			offset = u.UpdateID + 1
			select {
			case <-ctx.Done():
				return
			case out <- u:
			}
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, u telegram.Update) {
	start := time.Now()

	switch {
	case u.PollAnswer != nil:
		b.handlePollAnswer(ctx, u.PollAnswer)
	case u.Message != nil:
		b.handleMessage(ctx, u.Message)
	default:
		return
	}

	slog.Info("update processed",
		"update_id", u.UpdateID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

func (b *Bot) registerCommands(ctx context.Context) {
	commands := []telegram.BotCommand{
		{Command: "start", Description: "Get started with the prediction bot"},
		{Command: "help", Description: "Show available commands"},
		{Command: "startpoll", Description: "Start a poll for a match"},
		{Command: "leaderboard", Description: "View current leaderboard"},
		{Command: "score", Description: "Score a match (admin only)"},
		{Command: "get_chat_id", Description: "Get current chat ID"},
	}
	if err := b.transport.SetMyCommands(ctx, commands); err != nil {
		slog.Error("failed to register bot commands", "error", err)
		return
	}
	slog.Info("bot commands registered")
}

// reply sends a user-facing response; a command is never left
// silently unanswered, so a failed send is at least logged
func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	if err := b.transport.SendMessage(ctx, chatID, text); err != nil {
		slog.Error("failed to send reply", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) replyMarkdown(ctx context.Context, chatID int64, text string) {
	if err := b.transport.SendMarkdown(ctx, chatID, text); err != nil {
		slog.Error("failed to send reply", "chat_id", chatID, "error", err)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/danielhkuo/predictbot/bot"
	"github.com/danielhkuo/predictbot/cliparse"
	"github.com/danielhkuo/predictbot/pollmap"
	"github.com/danielhkuo/predictbot/predictions"
	"github.com/danielhkuo/predictbot/retry"
	"github.com/danielhkuo/predictbot/schedule"
	"github.com/danielhkuo/predictbot/scheduler"
	"github.com/danielhkuo/predictbot/store"
	"github.com/danielhkuo/predictbot/telegram"
)

func main() {
	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load the match schedule
	registry, err := schedule.Load(cfg.ScheduleCSV)
	if err != nil {
		slog.Error("failed to load schedule", "error", err)
		os.Exit(1)
	}

	// Connect to the tabular store
	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open store", "backend", cfg.StoreBackend, "error", err)
		os.Exit(1)
	}
	defer closeStore()
	slog.Info("store ready", "backend", cfg.StoreBackend)

	polls := pollmap.New(st, cfg.PollMapSheetID)
	if err := polls.EnsureHeader(ctx); err != nil {
		slog.Error("failed to initialize poll map sheet", "error", err)
		os.Exit(1)
	}
	table := predictions.NewTable(st, cfg.PredictionsSheetID)

	client := telegram.NewClient(cfg.BotToken)

	// A lingering webhook would starve long polling; clear it first
	err = retry.WithBackoff(ctx, retry.DefaultConfig(), "webhook cleanup", func() error {
		return telegram.EnsureWebhookDeleted(ctx, client)
	})
	if err != nil {
		slog.Error("cannot start bot with active webhook", "error", err)
		os.Exit(1)
	}

	// Schedule every match's poll window
	sched := scheduler.New()
	for _, m := range registry.All() {
		sched.Add(m.No, m.PollStartUTC)
		slog.Info("scheduled poll", "match_no", m.No, "at_utc", m.PollStartUTC)
	}
	sched.Start(ctx)

	// Run the event loop
	slog.Info("starting bot", "chat_id", cfg.GroupChatID, "matches", registry.Len())
	b := bot.New(cfg, client, registry, polls, table, sched.C())
	if err := b.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("bot stopped with error", "error", err)
		os.Exit(1)
	}
	slog.Info("bot stopped")
}

func openStore(ctx context.Context, cfg cliparse.Config) (store.Store, func(), error) {
	switch cfg.StoreBackend {
	case cliparse.BackendSQLite:
		st, err := store.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return st, func() { st.Close() }, nil
	default:
		st, err := store.NewSheets(ctx, cfg.GoogleCredentials)
		if err != nil {
			return nil, nil, err
		}
		return st, func() {}, nil
	}
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Command botmanager supervises the bot process: it spawns the bot
// binary, watches for webhook conflicts, and restarts it with backoff
// and an error budget. It takes no flags; see package cliparse for
// the environment it reads.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/danielhkuo/predictbot/cliparse"
	"github.com/danielhkuo/predictbot/manager"
	"github.com/danielhkuo/predictbot/retry"
	"github.com/danielhkuo/predictbot/telegram"
)

func main() {
	cfg, err := cliparse.ParseManagerEnv()
	if err != nil {
		slog.Error("Error parsing configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := telegram.NewClient(cfg.BotToken)
	cleanup := func(ctx context.Context) error {
		return retry.WithBackoff(ctx, retry.DefaultConfig(), "webhook cleanup", func() error {
			return telegram.EnsureWebhookDeleted(ctx, client)
		})
	}

	// Always make sure the webhook is deleted before the first start
	if err := cleanup(ctx); err != nil {
		slog.Error("initial webhook cleanup failed, starting anyway", "error", err)
	}

	sup := manager.New(&manager.ExecLauncher{Command: cfg.BotCommand}, cleanup)

	exit, err := sup.Run(ctx)
	if err != nil {
		slog.Error("supervisor stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("supervisor finished", "exit", string(exit))
}

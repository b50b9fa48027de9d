// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Command deletewebhook clears any active webhook for the bot so long
// polling can run. Exit code 0 on success, 1 on failure; the output
// is also what an operator checks when the supervisor reports
// repeated conflicts.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/danielhkuo/predictbot/cliparse"
	"github.com/danielhkuo/predictbot/retry"
	"github.com/danielhkuo/predictbot/telegram"
)

func main() {
	cfg, err := cliparse.ParseManagerEnv()
	if err != nil {
		slog.Error("Error parsing configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client := telegram.NewClient(cfg.BotToken)

	retryCfg := retry.Config{
		MaxRetries:    5,
		InitialDelay:  5 * time.Second,
		MaxDelay:      30 * time.Second,
		Multiplier:    1.5,
		JitterEnabled: false,
	}
	err = retry.WithBackoff(ctx, retryCfg, "webhook deletion", func() error {
		return telegram.EnsureWebhookDeleted(ctx, client)
	})
	if err != nil {
		slog.Error("webhook deletion failed", "error", err)
		fmt.Println("Webhook deletion failed")
		os.Exit(1)
	}

	fmt.Println("Webhook deletion successful")
}

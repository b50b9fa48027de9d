// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// SessionAPI is the webhook status/cleanup surface of the client,
// split out so the supervisor and the cleanup tool can be tested
// against fakes.
type SessionAPI interface {
	GetWebhookInfo(ctx context.Context) (WebhookInfo, error)
	DeleteWebhook(ctx context.Context, dropPending bool) error
}

// EnsureWebhookDeleted checks for an active webhook, deletes it, and
// verifies the deletion took effect. One pass; callers that need
// persistence wrap it in retry.WithBackoff.
func EnsureWebhookDeleted(ctx context.Context, api SessionAPI) error {
	info, err := api.GetWebhookInfo(ctx)
	if err != nil {
		return fmt.Errorf("failed to check webhook status: %w", err)
	}
	if info.URL == "" {
		slog.Info("no active webhook found, ready for polling")
		return nil
	}

	slog.Warn("found active webhook, deleting",
		"url", info.URL, "pending_updates", info.PendingUpdateCount)
	if err := api.DeleteWebhook(ctx, true); err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}

	// Deletion is eventually consistent on the API side; give it a
	// moment before verifying
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(time.Second):
	}

	info, err = api.GetWebhookInfo(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify webhook deletion: %w", err)
	}
	if info.URL != "" {
		return fmt.Errorf("webhook still active after deletion attempt: %s", info.URL)
	}

	slog.Info("successfully deleted webhook")
	return nil
}

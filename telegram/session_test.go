// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package telegram

import (
	"context"
	"errors"
	"testing"
)

// fakeSession scripts webhook states: each GetWebhookInfo call pops the
// next state off infos.
type fakeSession struct {
	infos      []WebhookInfo
	infoErr    error
	deleteErr  error
	deletes    int
	infoCalls  int
}

func (f *fakeSession) GetWebhookInfo(context.Context) (WebhookInfo, error) {
	if f.infoErr != nil {
		return WebhookInfo{}, f.infoErr
	}
	f.infoCalls++
	if len(f.infos) == 0 {
		return WebhookInfo{}, nil
	}
	info := f.infos[0]
	f.infos = f.infos[1:]
	return info, nil
}

func (f *fakeSession) DeleteWebhook(context.Context, bool) error {
	f.deletes++
	return f.deleteErr
}

func TestEnsureWebhookDeletedNoWebhook(t *testing.T) {
	f := &fakeSession{infos: []WebhookInfo{{}}}

	if err := EnsureWebhookDeleted(context.Background(), f); err != nil {
		t.Fatalf("EnsureWebhookDeleted() error = %v", err)
	}
	if f.deletes != 0 {
		t.Errorf("DeleteWebhook called %d times, want 0", f.deletes)
	}
}

func TestEnsureWebhookDeletedActiveWebhook(t *testing.T) {
	f := &fakeSession{infos: []WebhookInfo{
		{URL: "https://example.com/hook", PendingUpdateCount: 3},
		{}, // verification sees it gone
	}}

	if err := EnsureWebhookDeleted(context.Background(), f); err != nil {
		t.Fatalf("EnsureWebhookDeleted() error = %v", err)
	}
	if f.deletes != 1 {
		t.Errorf("DeleteWebhook called %d times, want 1", f.deletes)
	}
	if f.infoCalls != 2 {
		t.Errorf("GetWebhookInfo called %d times, want check + verify", f.infoCalls)
	}
}

func TestEnsureWebhookDeletedStillActive(t *testing.T) {
	f := &fakeSession{infos: []WebhookInfo{
		{URL: "https://example.com/hook"},
		{URL: "https://example.com/hook"}, // deletion did not stick
	}}

	if err := EnsureWebhookDeleted(context.Background(), f); err == nil {
		t.Fatal("EnsureWebhookDeleted() expected error when webhook persists")
	}
}

func TestEnsureWebhookDeletedErrors(t *testing.T) {
	boom := errors.New("api down")

	t.Run("status check fails", func(t *testing.T) {
		f := &fakeSession{infoErr: boom}
		if err := EnsureWebhookDeleted(context.Background(), f); !errors.Is(err, boom) {
			t.Errorf("EnsureWebhookDeleted() error = %v, want wrapped %v", err, boom)
		}
	})

	t.Run("delete fails", func(t *testing.T) {
		f := &fakeSession{
			infos:     []WebhookInfo{{URL: "https://example.com/hook"}},
			deleteErr: boom,
		}
		if err := EnsureWebhookDeleted(context.Background(), f); !errors.Is(err, boom) {
			t.Errorf("EnsureWebhookDeleted() error = %v, want wrapped %v", err, boom)
		}
	})
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package retry

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func fastConfig() Config {
	return Config{
		MaxRetries:   3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestWithBackoffSucceedsFirstTry(t *testing.T) {
	calls := 0
	err := WithBackoff(context.Background(), fastConfig(), "op", func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("WithBackoff() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}

func TestWithBackoffRecovers(t *testing.T) {
	calls := 0
	err := WithBackoff(context.Background(), fastConfig(), "op", func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithBackoff() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("Expected 3 calls, got %d", calls)
	}
}

func TestWithBackoffExhausts(t *testing.T) {
	sentinel := errors.New("persistent")
	calls := 0
	err := WithBackoff(context.Background(), fastConfig(), "webhook cleanup", func() error {
		calls++
		return sentinel
	})
	if err == nil {
		t.Fatal("WithBackoff() expected error after exhaustion")
	}
	if calls != 3 {
		t.Errorf("Expected 3 calls, got %d", calls)
	}
	if !errors.Is(err, sentinel) {
		t.Errorf("WithBackoff() error = %v, want wrapped %v", err, sentinel)
	}
	if !strings.Contains(err.Error(), "webhook cleanup") {
		t.Errorf("WithBackoff() error should name the operation: %v", err)
	}
}

func TestWithBackoffHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := WithBackoff(ctx, Config{
		MaxRetries:   5,
		InitialDelay: time.Minute, // would hang without cancellation
		MaxDelay:     time.Minute,
		Multiplier:   2.0,
	}, "op", func() error {
		calls++
		cancel()
		return errors.New("fail")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("WithBackoff() error = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("Expected 1 call before cancellation, got %d", calls)
	}
}

func TestCalculateBackoff(t *testing.T) {
	cfg := Config{
		InitialDelay: time.Second,
		MaxDelay:     4 * time.Second,
		Multiplier:   2.0,
	}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 4 * time.Second}, // capped
		{5, 4 * time.Second},
	}

	for _, tt := range tests {
		if got := calculateBackoff(cfg, tt.attempt); got != tt.want {
			t.Errorf("calculateBackoff(attempt=%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestCalculateBackoffJitterStaysBounded(t *testing.T) {
	cfg := Config{
		InitialDelay:  time.Second,
		MaxDelay:      30 * time.Second,
		Multiplier:    2.0,
		JitterEnabled: true,
	}

	for i := 0; i < 100; i++ {
		got := calculateBackoff(cfg, 1)
		lo, hi := 850*time.Millisecond, 1150*time.Millisecond
		if got < lo || got > hi {
			t.Fatalf("calculateBackoff() with jitter = %v, want within [%v, %v]", got, lo, hi)
		}
	}
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package manager

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/danielhkuo/predictbot/bot"
)

// Exit classifies how the supervisor finished
type Exit string

const (
	// ExitClean means the child exited with code 0; a cleanly-exited
	// child is never resurrected
	ExitClean Exit = "clean"

	// ExitExhausted means the restart budget ran out
	ExitExhausted Exit = "exhausted"
)

// Supervisor keeps the bot process alive across crashes and webhook
// conflicts. One control goroutine owns the child lifecycle; restart
// and backoff sleeps block it deliberately, since supervision is its
// only job.
type Supervisor struct {
	Launcher Launcher
	Cleanup  func(ctx context.Context) error

	MaxRestarts          int
	MaxConsecutiveErrors int
	ErrorCooldown        time.Duration
	TerminateGrace       time.Duration
	FastCrashThreshold   time.Duration
	PollInterval         time.Duration
	RestartPause         time.Duration
	CleanupFailPause     time.Duration
}

// New returns a Supervisor with production settings
func New(launcher Launcher, cleanup func(ctx context.Context) error) *Supervisor {
	return &Supervisor{
		Launcher:             launcher,
		Cleanup:              cleanup,
		MaxRestarts:          10,
		MaxConsecutiveErrors: 3,
		ErrorCooldown:        60 * time.Second,
		TerminateGrace:       5 * time.Second,
		FastCrashThreshold:   10 * time.Second,
		PollInterval:         100 * time.Millisecond,
		RestartPause:         5 * time.Second,
		CleanupFailPause:     15 * time.Second,
	}
}

// Run drives the supervision state machine until the child exits
// cleanly or the restart budget is exhausted. The counters are loop
// state, never recursion, so a long crash history cannot grow the
// stack.
func (s *Supervisor) Run(ctx context.Context) (Exit, error) {
	restartCount := 0
	consecutiveErrors := 0

	for {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		if restartCount >= s.MaxRestarts {
			slog.Error("reached maximum restarts, exiting", "max_restarts", s.MaxRestarts)
			return ExitExhausted, nil
		}

		// Circuit breaker against tight crash loops, independent of
		// the restart budget
		if consecutiveErrors >= s.MaxConsecutiveErrors {
			slog.Warn("multiple consecutive errors detected, pausing",
				"cooldown", s.ErrorCooldown)
			sleepCtx(ctx, s.ErrorCooldown)
			consecutiveErrors = 0
		}

		runID := uuid.NewString()
		slog.Info("starting bot",
			"attempt", restartCount+1,
			"max_attempts", s.MaxRestarts+1,
			"run_id", runID)

		// Stale-session cleanup before every restart; first launch is
		// covered by the outer driver. Best effort: one retry with an
		// extended wait, then proceed anyway.
		if restartCount > 0 {
			if err := s.Cleanup(ctx); err != nil {
				slog.Error("failed to delete webhook before restart, waiting", "error", err)
				sleepCtx(ctx, s.CleanupFailPause)
				if err := s.Cleanup(ctx); err != nil {
					slog.Error("still failed to delete webhook, continuing anyway", "error", err)
				}
			}
		}

		proc, err := s.Launcher.Start()
		if err != nil {
			slog.Error("failed to start bot process", "run_id", runID, "error", err)
			restartCount++
			consecutiveErrors++
			sleepCtx(ctx, s.RestartPause)
			continue
		}

		started := time.Now()
		conflict := s.watch(ctx, proc)
		runtime := time.Since(started)

		if conflict {
			slog.Info("terminating bot process due to webhook conflict", "run_id", runID)
			s.stop(ctx, proc)

			if err := s.Cleanup(ctx); err != nil {
				slog.Error("failed to delete webhook, waiting longer", "error", err)
				sleepCtx(ctx, s.CleanupFailPause)
			} else {
				slog.Info("webhook deleted, restarting bot")
				sleepCtx(ctx, s.RestartPause)
			}

			restartCount++
			consecutiveErrors++
			continue
		}

		// Child exited on its own; flush whatever is left
		s.tee(proc)
		code := proc.ExitCode()
		slog.Info("bot process ended",
			"run_id", runID,
			"exit_code", code,
			"ran_for", strings.TrimSpace(humanize.RelTime(started, time.Now(), "", "")))

		if code == 0 {
			return ExitClean, nil
		}

		restartCount++
		if runtime < s.FastCrashThreshold {
			// Fast failure implies a config/auth problem and counts
			// against the error budget; a long run before failure
			// does not.
			slog.Warn("bot crashed quickly after start, treating as consecutive error")
			consecutiveErrors++
		} else {
			consecutiveErrors = 0
		}
	}
}

// watch tees child output and scans stderr until the child exits or
// the conflict marker appears. Returns true on conflict.
func (s *Supervisor) watch(ctx context.Context, proc Process) bool {
	for proc.Running() {
		if ctx.Err() != nil {
			return false
		}
		if s.tee(proc) {
			return true
		}
		sleepCtx(ctx, s.PollInterval)
	}
	return s.tee(proc)
}

// tee forwards queued child output to the console and reports whether
// any stderr line carried the conflict marker
func (s *Supervisor) tee(proc Process) bool {
	for _, line := range proc.DrainStdout() {
		fmt.Fprintln(os.Stdout, line)
	}

	conflict := false
	for _, line := range proc.DrainStderr() {
		fmt.Fprintln(os.Stderr, line)
		if strings.Contains(strings.ToLower(line), bot.ConflictMarker) {
			conflict = true
		}
	}
	return conflict
}

// stop terminates the child gracefully, escalating to a kill after
// the grace period
func (s *Supervisor) stop(ctx context.Context, proc Process) {
	proc.Terminate()

	deadline := time.Now().Add(s.TerminateGrace)
	for proc.Running() && time.Now().Before(deadline) {
		sleepCtx(ctx, s.PollInterval)
	}

	if proc.Running() {
		slog.Warn("bot process did not terminate gracefully, forcing termination")
		proc.Kill()
		for proc.Running() {
			sleepCtx(ctx, s.PollInterval)
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

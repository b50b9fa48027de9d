// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package manager

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeProcess pretends to run for lifetime, then exits with exitCode.
// Terminate and Kill end it early.
type fakeProcess struct {
	mu       sync.Mutex
	started  time.Time
	lifetime time.Duration
	exitCode int
	stdout   []string
	stderr   []string

	terminated bool
	killed     bool
	stopped    bool
}

func (p *fakeProcess) DrainStdout() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := p.stdout
	p.stdout = nil
	return out
}

func (p *fakeProcess) DrainStderr() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := p.stderr
	p.stderr = nil
	return out
}

func (p *fakeProcess) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return false
	}
	return time.Since(p.started) < p.lifetime
}

func (p *fakeProcess) ExitCode() int { return p.exitCode }

func (p *fakeProcess) Terminate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.terminated = true
	p.stopped = true
}

func (p *fakeProcess) Kill() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.killed = true
	p.stopped = true
}

// fakeLauncher hands out scripted processes in order
type fakeLauncher struct {
	mu     sync.Mutex
	procs  []*fakeProcess
	starts int
}

func (l *fakeLauncher) Start() (Process, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.procs) == 0 {
		return nil, errors.New("no more scripted processes")
	}
	p := l.procs[0]
	l.procs = l.procs[1:]
	p.started = time.Now()
	l.starts++
	return p, nil
}

// newSupervisor shrinks every production delay so crash loops play out
// in milliseconds
func newSupervisor(l Launcher, cleanup func(context.Context) error) *Supervisor {
	if cleanup == nil {
		cleanup = func(context.Context) error { return nil }
	}
	return &Supervisor{
		Launcher:             l,
		Cleanup:              cleanup,
		MaxRestarts:          10,
		MaxConsecutiveErrors: 3,
		ErrorCooldown:        50 * time.Millisecond,
		TerminateGrace:       50 * time.Millisecond,
		FastCrashThreshold:   20 * time.Millisecond,
		PollInterval:         time.Millisecond,
		RestartPause:         time.Millisecond,
		CleanupFailPause:     time.Millisecond,
	}
}

func TestCleanExitStopsSupervision(t *testing.T) {
	cleanups := 0
	l := &fakeLauncher{procs: []*fakeProcess{
		{exitCode: 0, stdout: []string{"bot stopped"}},
	}}
	s := newSupervisor(l, func(context.Context) error { cleanups++; return nil })

	exit, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if exit != ExitClean {
		t.Errorf("Run() exit = %v, want %v", exit, ExitClean)
	}
	if l.starts != 1 {
		t.Errorf("starts = %d, want 1", l.starts)
	}
	if cleanups != 0 {
		t.Errorf("cleanup ran %d times before any restart, want 0", cleanups)
	}
}

func TestRestartBudgetExhaustion(t *testing.T) {
	// Every child crashes instantly; the budget must bound the spawns
	l := &fakeLauncher{procs: []*fakeProcess{
		{exitCode: 1}, {exitCode: 1}, {exitCode: 1},
	}}
	cleanups := 0
	s := newSupervisor(l, func(context.Context) error { cleanups++; return nil })
	s.MaxRestarts = 3

	exit, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if exit != ExitExhausted {
		t.Errorf("Run() exit = %v, want %v", exit, ExitExhausted)
	}
	if l.starts != 3 {
		t.Errorf("starts = %d, want exactly 3", l.starts)
	}
	// First launch skips cleanup, every restart runs it once
	if cleanups != 2 {
		t.Errorf("cleanups = %d, want 2", cleanups)
	}
}

func TestFastCrashesTriggerCooldown(t *testing.T) {
	l := &fakeLauncher{procs: []*fakeProcess{
		{exitCode: 1}, {exitCode: 1}, {exitCode: 1},
	}}
	s := newSupervisor(l, nil)
	s.MaxRestarts = 3
	s.MaxConsecutiveErrors = 2
	s.ErrorCooldown = 80 * time.Millisecond

	start := time.Now()
	exit, err := s.Run(context.Background())
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if exit != ExitExhausted {
		t.Errorf("Run() exit = %v, want %v", exit, ExitExhausted)
	}
	// Two fast crashes hit the error threshold, so the third launch
	// waits out the cooldown first
	if elapsed < 80*time.Millisecond {
		t.Errorf("Run() took %v, expected at least one %v cooldown", elapsed, s.ErrorCooldown)
	}
}

func TestSlowCrashResetsConsecutiveErrors(t *testing.T) {
	// fast crash, slow crash, fast crash, clean exit: the error count
	// never reaches 2 in a row, so the 10s cooldown must never fire
	l := &fakeLauncher{procs: []*fakeProcess{
		{exitCode: 1},
		{exitCode: 1, lifetime: 30 * time.Millisecond},
		{exitCode: 1},
		{exitCode: 0},
	}}
	s := newSupervisor(l, nil)
	s.MaxConsecutiveErrors = 2
	s.ErrorCooldown = 10 * time.Second

	start := time.Now()
	exit, err := s.Run(context.Background())
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if exit != ExitClean {
		t.Errorf("Run() exit = %v, want %v", exit, ExitClean)
	}
	if elapsed > 2*time.Second {
		t.Errorf("Run() took %v, cooldown should not have fired", elapsed)
	}
	if l.starts != 4 {
		t.Errorf("starts = %d, want 4", l.starts)
	}
}

func TestConflictRestartsChild(t *testing.T) {
	conflicted := &fakeProcess{
		lifetime: 10 * time.Second,
		exitCode: 1,
		stderr:   []string{"time=x level=ERROR msg=\"Webhook Conflict Detected: the bot is likely configured with a webhook\""},
	}
	l := &fakeLauncher{procs: []*fakeProcess{
		conflicted,
		{exitCode: 0},
	}}
	cleanups := 0
	s := newSupervisor(l, func(context.Context) error { cleanups++; return nil })

	exit, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if exit != ExitClean {
		t.Errorf("Run() exit = %v, want %v", exit, ExitClean)
	}
	if !conflicted.terminated {
		t.Error("conflicted child should have been terminated")
	}
	if conflicted.killed {
		t.Error("graceful termination sufficed; Kill should not fire")
	}
	// Conflict path plus the pre-restart cleanup
	if cleanups != 2 {
		t.Errorf("cleanups = %d, want 2", cleanups)
	}
	if l.starts != 2 {
		t.Errorf("starts = %d, want 2", l.starts)
	}
}

func TestKillAfterGracePeriod(t *testing.T) {
	stubborn := &stubbornProcess{fakeProcess: fakeProcess{
		lifetime: 10 * time.Second,
		exitCode: 1,
		stderr:   []string{"webhook conflict detected"},
	}}
	l := &stubbornLauncher{first: stubborn, then: &fakeProcess{exitCode: 0}}
	s := newSupervisor(l, nil)
	s.TerminateGrace = 10 * time.Millisecond

	exit, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if exit != ExitClean {
		t.Errorf("Run() exit = %v, want %v", exit, ExitClean)
	}
	if !stubborn.killed {
		t.Error("child ignoring SIGTERM must be killed after the grace period")
	}
}

// stubbornProcess ignores Terminate and only dies on Kill
type stubbornProcess struct {
	fakeProcess
}

func (p *stubbornProcess) Terminate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.terminated = true // noted, not honored
}

type stubbornLauncher struct {
	mu     sync.Mutex
	first  *stubbornProcess
	then   *fakeProcess
	starts int
}

func (l *stubbornLauncher) Start() (Process, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.starts++
	if l.starts == 1 {
		l.first.started = time.Now()
		return l.first, nil
	}
	l.then.started = time.Now()
	return l.then, nil
}

func TestCleanupFailureStillRestarts(t *testing.T) {
	l := &fakeLauncher{procs: []*fakeProcess{
		{exitCode: 1}, {exitCode: 1},
	}}
	cleanups := 0
	s := newSupervisor(l, func(context.Context) error {
		cleanups++
		return errors.New("api down")
	})
	s.MaxRestarts = 2

	exit, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if exit != ExitExhausted {
		t.Errorf("Run() exit = %v, want %v", exit, ExitExhausted)
	}
	// One restart, two cleanup attempts for it, and the child still
	// gets launched
	if l.starts != 2 {
		t.Errorf("starts = %d, want 2", l.starts)
	}
	if cleanups != 2 {
		t.Errorf("cleanups = %d, want 2", cleanups)
	}
}

func TestLaunchFailureCountsAgainstBudget(t *testing.T) {
	l := &fakeLauncher{} // Start always fails
	s := newSupervisor(l, nil)
	s.MaxRestarts = 2

	exit, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if exit != ExitExhausted {
		t.Errorf("Run() exit = %v, want %v", exit, ExitExhausted)
	}
}

func TestCancelledContextStopsRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := newSupervisor(&fakeLauncher{}, nil)
	if _, err := s.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package manager

import (
	"bufio"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"syscall"
)

// Launcher starts bot child processes. The exec-backed implementation
// is used in production; tests substitute a fake.
type Launcher interface {
	Start() (Process, error)
}

// Process is a running (or exited) bot child. Output is drained
// non-blockingly; the reader goroutines behind the queues have no
// backpressure, which is fine at operator-log volume.
type Process interface {
	// DrainStdout returns and removes all stdout lines queued so far
	DrainStdout() []string

	// DrainStderr returns and removes all stderr lines queued so far
	DrainStderr() []string

	// Running reports whether the child is still alive
	Running() bool

	// ExitCode is valid once Running returns false
	ExitCode() int

	// Terminate asks the child to exit gracefully
	Terminate()

	// Kill forcefully ends the child
	Kill()
}

// ExecLauncher launches the bot binary as a subprocess
type ExecLauncher struct {
	Command string
	Args    []string
}

func (l *ExecLauncher) Start() (Process, error) {
	cmd := exec.Command(l.Command, l.Args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", l.Command, err)
	}

	p := &execProcess{cmd: cmd, done: make(chan struct{})}
	go p.readLines(stdout, &p.stdout)
	go p.readLines(stderr, &p.stderr)
	go func() {
		err := cmd.Wait()
		p.mu.Lock()
		p.exitCode = exitCodeOf(err)
		p.mu.Unlock()
		close(p.done)
	}()

	return p, nil
}

type execProcess struct {
	cmd      *exec.Cmd
	stdout   lineQueue
	stderr   lineQueue
	done     chan struct{}
	mu       sync.Mutex
	exitCode int
}

func (p *execProcess) readLines(r io.Reader, q *lineQueue) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		q.push(scanner.Text())
	}
}

func (p *execProcess) DrainStdout() []string { return p.stdout.drain() }
func (p *execProcess) DrainStderr() []string { return p.stderr.drain() }

func (p *execProcess) Running() bool {
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

func (p *execProcess) ExitCode() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exitCode
}

func (p *execProcess) Terminate() {
	_ = p.cmd.Process.Signal(syscall.SIGTERM)
}

func (p *execProcess) Kill() {
	_ = p.cmd.Process.Kill()
}

func exitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode()
	}
	return -1
}

// lineQueue is an unbounded thread-safe line buffer with exactly one
// producer (the pipe reader) and one consumer (the control loop)
type lineQueue struct {
	mu    sync.Mutex
	lines []string
}

func (q *lineQueue) push(line string) {
	q.mu.Lock()
	q.lines = append(q.lines, line)
	q.mu.Unlock()
}

func (q *lineQueue) drain() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.lines
	q.lines = nil
	return out
}

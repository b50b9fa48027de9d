// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package scheduler fires one-shot jobs at fixed wall-clock instants.
//
// All jobs are registered before Start and there is no cancellation;
// the schedule is immutable for the life of the process. A job whose
// fire time is already in the past fires immediately, so a late
// process start still sends its polls.
package scheduler

import (
	"container/heap"
	"context"
	"log/slog"
	"time"
)

// Job identifies a scheduled poll by match number
type Job struct {
	MatchNo int
	At      time.Time
}

// Scheduler dispatches jobs in fire-time order into C. One dispatch
// goroutine owns the heap after Start; callbacks run on whatever loop
// consumes C, never here.
type Scheduler struct {
	queue jobQueue
	out   chan Job

	// Now is overridable for tests
	Now func() time.Time
}

func New() *Scheduler {
	return &Scheduler{
		out: make(chan Job),
		Now: time.Now,
	}
}

// Add registers a one-shot job. Must be called before Start.
func (s *Scheduler) Add(matchNo int, at time.Time) {
	heap.Push(&s.queue, Job{MatchNo: matchNo, At: at})
}

// Len reports the number of pending jobs
func (s *Scheduler) Len() int {
	return s.queue.Len()
}

// C delivers due jobs in fire-time order
func (s *Scheduler) C() <-chan Job {
	return s.out
}

// Start launches the dispatch goroutine. The channel closes once all
// jobs have fired or the context is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	go s.run(ctx)
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.out)

	for s.queue.Len() > 0 {
		next := heap.Pop(&s.queue).(Job)

		wait := next.At.Sub(s.Now())
		if wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		} else if wait < 0 {
			slog.Info("firing past-due job immediately",
				"match_no", next.MatchNo, "scheduled_for", next.At)
		}

		select {
		case <-ctx.Done():
			return
		case s.out <- next:
		}
	}
}

// jobQueue is a min-heap ordered by fire time
type jobQueue []Job

func (q jobQueue) Len() int            { return len(q) }
func (q jobQueue) Less(i, j int) bool  { return q[i].At.Before(q[j].At) }
func (q jobQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *jobQueue) Push(x interface{}) { *q = append(*q, x.(Job)) }
func (q *jobQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// Package scheduler drives the periodic passes: a fixed-interval ticker
// running named tasks with per-task overlap protection. A task still
// running when its next tick arrives is skipped for that tick, never
// queued.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultInterval is the production tick period.
const DefaultInterval = 30 * time.Minute

// Task is one named unit of periodic work. Tasks report their outcome via
// logging; the scheduler does not interpret errors.
type Task struct {
	Name string
	Run  func(ctx context.Context)

	mu sync.Mutex
}

// Scheduler runs its tasks once immediately and then on every tick.
type Scheduler struct {
	interval time.Duration
	tasks    []*Task
}

// New creates a Scheduler with the given tick interval.
func New(interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{interval: interval}
}

// Add registers a named task. Not safe to call after Run has started.
func (s *Scheduler) Add(name string, run func(ctx context.Context)) {
	s.tasks = append(s.tasks, &Task{Name: name, Run: run})
}

// Run blocks until ctx is cancelled, firing all tasks immediately and
// then once per interval.
func (s *Scheduler) Run(ctx context.Context) {
	slog.Info("scheduler started",
		"interval", s.interval,
		"tasks", len(s.tasks),
	)

	s.RunNow(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.RunNow(ctx)
		}
	}
}

// RunNow fires every task once, sequentially, skipping any task whose
// previous run is still in flight.
func (s *Scheduler) RunNow(ctx context.Context) {
	for _, t := range s.tasks {
		if ctx.Err() != nil {
			return
		}
		s.runTask(ctx, t)
	}
}

func (s *Scheduler) runTask(ctx context.Context, t *Task) {
	if !t.mu.TryLock() {
		slog.Warn("task still running, skipping tick", "task", t.Name)
		return
	}
	defer t.mu.Unlock()

	start := time.Now()
	t.Run(ctx)
	slog.Debug("task finished", "task", t.Name, "duration", time.Since(start))
}

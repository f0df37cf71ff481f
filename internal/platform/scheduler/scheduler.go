// Package scheduler runs the recurring pipeline jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is one unit of scheduled work.
type Job func(ctx context.Context) error

// Scheduler manages all cron tasks.
// Overlapping runs of the same job are skipped and panics are recovered.
type Scheduler struct {
	cron    *cron.Cron
	ctx     context.Context
	timeout time.Duration

	mu   sync.Mutex
	jobs map[string]Job
}

// New creates a Scheduler evaluating specs in loc. Specs use the standard 5-field format.
// timeout bounds a single run; zero means no bound.
func New(ctx context.Context, loc *time.Location, timeout time.Duration) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	logger := slogAdapter{}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		ctx:     ctx,
		timeout: timeout,
		jobs:    make(map[string]Job),
	}
}

// Register adds job under name. An empty spec registers the job for RunNow only.
func (s *Scheduler) Register(name, spec string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.jobs[name]; dup {
		return fmt.Errorf("job %q already registered", name)
	}
	if spec != "" {
		if _, err := s.cron.AddFunc(spec, func() { s.run(name, job) }); err != nil {
			return fmt.Errorf("register %s task: %w", name, err)
		}
	}
	s.jobs[name] = job
	return nil
}

// RunNow executes the named job synchronously (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunNow(name string) error {
	s.mu.Lock()
	job, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("job %q not registered", name)
	}
	return s.run(name, job)
}

func (s *Scheduler) run(name string, job Job) error {
	ctx := s.ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	slog.Info("running scheduled job", "job", name)
	if err := job(ctx); err != nil {
		slog.Error("scheduled job failed", "job", name, "elapsed", time.Since(start), "error", err)
		return err
	}
	slog.Info("scheduled job finished", "job", name, "elapsed", time.Since(start))
	return nil
}

// Entries returns the number of cron entries.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	slog.Info("scheduler started", "entries", s.Entries())
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	slog.Info("scheduler stopped")
}

// slogAdapter は cron.Logger を slog に委譲します。
type slogAdapter struct{}

func (slogAdapter) Info(msg string, keysAndValues ...interface{}) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (slogAdapter) Error(err error, msg string, keysAndValues ...interface{}) {
	slog.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}

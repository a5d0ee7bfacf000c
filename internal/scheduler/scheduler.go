// Package scheduler runs periodic maintenance jobs for IntakeFlow, such as purging
// idle intake sessions from stores without native expiry.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultPurgeSchedule runs the idle-session purge every ten minutes.
const DefaultPurgeSchedule = "*/10 * * * *"

// DefaultJobTimeout bounds a single job run.
const DefaultJobTimeout = time.Minute

// Job is a named unit of periodic work.
type Job func(ctx context.Context) error

// Scheduler provides cron-based job scheduling.
type Scheduler struct {
	cron    *cron.Cron
	timeout time.Duration
}

// NewScheduler creates and starts a cron scheduler. Jobs run with at most one
// instance in flight each; a panicking job is recovered and logged.
func NewScheduler() *Scheduler {
	// Standard 5-field parser (min, hour, dom, month, dow) plus descriptors such as @every 5m
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	c := cron.New(cron.WithParser(parser), cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger)))
	c.Start()
	return &Scheduler{cron: c, timeout: DefaultJobTimeout}
}

// AddJob schedules job under name using a cron expression.
// It returns an error if the expression is invalid.
func (s *Scheduler) AddJob(name, expr string, job Job) error {
	_, err := s.cron.AddFunc(expr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		start := time.Now()
		if err := job(ctx); err != nil {
			slog.Error("Scheduler.AddJob: job failed", "job", name, "error", err, "duration", time.Since(start))
			return
		}
		slog.Debug("Scheduler.AddJob: job finished", "job", name, "duration", time.Since(start))
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", expr, name, err)
	}
	slog.Info("Scheduler.AddJob: job scheduled", "job", name, "schedule", expr)
	return nil
}

// Len returns the number of scheduled jobs.
func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

// Stop stops the cron scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

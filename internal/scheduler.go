package internal

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/AssilKherfi/Retention-Dashboard/errors"
	"github.com/AssilKherfi/Retention-Dashboard/logging"
)

// Job is one scheduled unit of work
type Job func(ctx context.Context) error

// Scheduler runs jobs on standard 5-field cron expressions, e.g.
// "0 8 * * 1" for Mondays 08:00. A job that fails or panics is logged and
// the schedule carries on.
type Scheduler struct {
	cron   *cron.Cron
	logger *logging.Logger

	mu  sync.Mutex
	ctx context.Context
}

// NewScheduler creates a scheduler evaluating expressions in loc
func NewScheduler(loc *time.Location, logger *logging.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(loc)),
		logger: logger,
		ctx:    context.Background(),
	}
}

// Add registers job under name
func (s *Scheduler) Add(spec, name string, job Job) (cron.EntryID, error) {
	spec = strings.TrimSpace(spec)
	id, err := s.cron.AddFunc(spec, s.wrap(name, job))
	if err != nil {
		return 0, errors.Wrapf(errors.ErrorTypeConfig, "scheduler", err, "invalid schedule %q for %s", spec, name)
	}
	s.logger.Infof("Scheduled %s (cron: %s)", name, spec)
	return id, nil
}

// Next is the next activation of the given entry, zero when unscheduled
func (s *Scheduler) Next(id cron.EntryID) time.Time {
	return s.cron.Entry(id).Next
}

// Len is the number of registered jobs
func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

// Run starts the scheduler and blocks until ctx is done, then waits for
// running jobs to finish
func (s *Scheduler) Run(ctx context.Context) error {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	s.cron.Start()
	for _, e := range s.cron.Entries() {
		s.logger.Infof("Next run at %s", e.Next.Format("Mon Jan 2 15:04"))
	}

	<-ctx.Done()
	<-s.cron.Stop().Done()
	return nil
}

func (s *Scheduler) jobContext() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx
}

func (s *Scheduler) wrap(name string, job Job) func() {
	return func() {
		started := time.Now()
		err := errors.SafeRun(name, func() error {
			return job(s.jobContext())
		})
		if err != nil {
			s.logger.Errorf("Scheduled %s failed: %v", name, err)
			return
		}
		s.logger.Infof("Scheduled %s completed in %s", name, time.Since(started).Round(time.Millisecond))
	}
}

// DigestJob analyses the current orders and publishes the report
func (a *App) DigestJob(pub Publisher) Job {
	return func(ctx context.Context) error {
		report, err := a.Analyze(ctx)
		if err != nil {
			return err
		}
		return pub.Publish(ctx, report)
	}
}

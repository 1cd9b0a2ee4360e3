// Package hydrate runs the background jobs that keep the local library
// and session fresh: periodic library sync, genre enrichment and token
// refresh. Jobs only run while a session exists and pause on logout.
package hydrate

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/spotless-music/spotless-go/player"
)

// Job is a unit of background hydration work.
type Job interface {
	Name() string
	// Interval returns the job's own cadence; zero means the scheduler
	// default.
	Interval() time.Duration
	Run(ctx context.Context) error
}

// Scheduler drives registered jobs while a session exists. Each job
// keeps its own timer; a run that overshoots its timeout is abandoned
// and the schedule is not shifted.
type Scheduler struct {
	auth     player.AuthStore
	pool     player.WorkerPool
	interval time.Duration
	timeout  time.Duration
	logger   player.Logger
	jobs     []Job
}

func NewScheduler(auth player.AuthStore, pool player.WorkerPool, interval, timeout time.Duration, logger player.Logger) *Scheduler {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &Scheduler{
		auth:     auth,
		pool:     pool,
		interval: interval,
		timeout:  timeout,
		logger:   logger.With("module", "hydrate"),
	}
}

// Register adds jobs to the scheduler. Not safe to call after Run.
func (s *Scheduler) Register(jobs ...Job) {
	s.jobs = append(s.jobs, jobs...)
}

// Run blocks until ctx is cancelled, supervising one loop per job.
func (s *Scheduler) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, job := range s.jobs {
		job := job
		g.Go(func() error {
			s.runJob(ctx, job)
			return nil
		})
	}
	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// runJob ticks the job while authenticated. A fresh session triggers an
// immediate run; logout stops the timer until the next login.
func (s *Scheduler) runJob(ctx context.Context, job Job) {
	interval := job.Interval()
	if interval <= 0 {
		interval = s.interval
	}

	watch := s.auth.WatchAuth(ctx)

	var ticker *time.Ticker
	var tick <-chan time.Time
	stopTicker := func() {
		if ticker != nil {
			ticker.Stop()
			ticker = nil
			tick = nil
		}
	}
	defer stopTicker()

	for {
		select {
		case <-ctx.Done():
			return

		case user, ok := <-watch:
			if !ok {
				return
			}
			if user == nil {
				if ticker != nil {
					s.logger.Info("session gone, pausing job", "job", job.Name())
				}
				stopTicker()
				continue
			}
			if ticker == nil {
				s.logger.Info("session active, starting job", "job", job.Name(), "interval", interval)
				s.dispatch(ctx, job)
				ticker = time.NewTicker(interval)
				tick = ticker.C
			}

		case <-tick:
			s.dispatch(ctx, job)
		}
	}
}

// dispatch hands a run to the worker pool. Runs that exceed the timeout
// are abandoned; their goroutine finishes in the background but the
// worker slot is released.
func (s *Scheduler) dispatch(ctx context.Context, job Job) {
	err := s.pool.Submit(func() {
		runCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		started := time.Now()
		done := make(chan error, 1)
		go func() { done <- job.Run(runCtx) }()

		select {
		case <-runCtx.Done():
			if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
				s.logger.Warn("hydration was too slow, abandoning run",
					"job", job.Name(), "timeout", s.timeout)
			}
		case err := <-done:
			if err != nil {
				s.logger.Error("hydration run failed",
					"job", job.Name(), "elapsed", time.Since(started), "error", err)
				return
			}
			s.logger.Debug("hydration run finished",
				"job", job.Name(), "elapsed", time.Since(started))
		}
	})
	if err != nil {
		s.logger.Warn("dispatch rejected", "job", job.Name(), "error", err)
	}
}

// Package schedule runs a job on a cron schedule until its context ends.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"github.com/gorhill/cronexpr"
)

// ErrNoNextRun is returned when the expression has no activation left.
var ErrNoNextRun = errors.New("cron expression has no future activation")

// Job is the unit of work run at each activation.
type Job func(ctx context.Context)

// Scheduler fires a Job at every activation of a cron expression.
type Scheduler struct {
	spec string
	expr *cronexpr.Expression
	job  Job
	log  logr.Logger
	now  func() time.Time
}

func New(spec string, job Job, log logr.Logger) (*Scheduler, error) {
	expr, err := cronexpr.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", spec, err)
	}
	return &Scheduler{
		spec: spec,
		expr: expr,
		job:  job,
		log:  log.WithName("schedule"),
		now:  time.Now,
	}, nil
}

// UntilNext returns how long to wait from now for the next activation
// after from. A non-positive duration means the activation is due.
func (s *Scheduler) UntilNext(from time.Time) (time.Duration, error) {
	next := s.expr.Next(from)
	if next.IsZero() {
		return 0, ErrNoNextRun
	}
	return next.Sub(s.now()), nil
}

// Run blocks, firing the job at each activation. Activations missed while
// the job was running are skipped. It returns nil when ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	for ctx.Err() == nil {
		wait, err := s.UntilNext(s.now())
		if err != nil {
			return err
		}
		s.log.V(1).Info("Next run scheduled", "schedule", s.spec, "in", wait.String())

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}

		started := s.now()
		s.job(ctx)
		s.log.V(1).Info("Scheduled run finished", "took", s.now().Sub(started).String())
	}
	return nil
}

package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/sirupsen/logrus"
)

type TaskFn func(ctx context.Context) error

// Scheduler runs background jobs. Jobs never overlap themselves and a panic
// inside a job is logged instead of crashing the process.
type Scheduler struct {
	scheduler gocron.Scheduler
	logger    *logrus.Logger
}

func New(logger *logrus.Logger) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	return &Scheduler{scheduler: s, logger: logger}, nil
}

func (s *Scheduler) Start() {
	s.scheduler.Start()
}

// Stop waits for running jobs to return.
func (s *Scheduler) Stop() error {
	return s.scheduler.Shutdown()
}

func (s *Scheduler) NewIntervalJob(name string, fn TaskFn, interval time.Duration, startImmediately bool) error {
	return s.createJob(gocron.DurationJob(interval), name, fn, startImmediately)
}

func (s *Scheduler) NewCrontabJob(name string, fn TaskFn, crontab string, startImmediately bool) error {
	return s.createJob(gocron.CronJob(crontab, true), name, fn, startImmediately)
}

func (s *Scheduler) createJob(def gocron.JobDefinition, name string, fn TaskFn, startImmediately bool) error {
	opts := []gocron.JobOption{
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	}
	if startImmediately {
		opts = append(opts, gocron.WithStartAt(gocron.WithStartImmediately()))
	}

	if _, err := s.scheduler.NewJob(def, gocron.NewTask(s.taskWithRecover(fn, name)), opts...); err != nil {
		return fmt.Errorf("create job %s: %w", name, err)
	}
	return nil
}

func (s *Scheduler) taskWithRecover(fn TaskFn, jobName string) func(ctx context.Context) {
	return func(ctx context.Context) {
		log := s.logger.WithField("job", jobName)
		defer func() {
			if r := recover(); r != nil {
				log.WithFields(logrus.Fields{
					"panic":      r,
					"stacktrace": string(debug.Stack()),
				}).Error("panic recovered in scheduler job")
			}
		}()

		start := time.Now()
		if err := fn(ctx); err != nil {
			log.WithError(err).Error("job failed")
			return
		}
		log.WithField("duration_ms", time.Since(start).Milliseconds()).Debug("job completed")
	}
}

package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	robfig "github.com/robfig/cron/v3"

	"github.com/angelmondragon/haani-backend/pkg/logger"
	"github.com/angelmondragon/haani-backend/pkg/metrics"
)

var (
	// ErrUnknownJob is returned by RunOnce for names not in the registry.
	ErrUnknownJob = errors.New("unknown job")
	// ErrLocked means another worker holds the job's lock.
	ErrLocked = errors.New("job is running on another worker")
)

// ServiceParams configure the cron service.
type ServiceParams struct {
	Logger   *logger.Logger
	Registry *Registry
	Lock     Lock
	Metrics  *metrics.CronJobMetrics
	Location *time.Location
}

// Service runs each registered job on its own schedule. Every run holds the
// job's lock, so a second worker skips instead of overlapping.
type Service struct {
	logg      *logger.Logger
	registry  *Registry
	lock      Lock
	metrics   *metrics.CronJobMetrics
	scheduler *robfig.Cron
}

// NewService builds a cron service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Lock == nil {
		return nil, fmt.Errorf("lock required")
	}
	registry := params.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	location := params.Location
	if location == nil {
		location = time.UTC
	}

	cronLog := cronLogger{logg: params.Logger}
	scheduler := robfig.New(
		robfig.WithLocation(location),
		robfig.WithLogger(cronLog),
		robfig.WithChain(robfig.Recover(cronLog), robfig.SkipIfStillRunning(cronLog)),
	)
	return &Service{
		logg:      params.Logger,
		registry:  registry,
		lock:      params.Lock,
		metrics:   params.Metrics,
		scheduler: scheduler,
	}, nil
}

// Run schedules every registered job and blocks until ctx is canceled. Jobs
// already running are allowed to finish before Run returns.
func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	for _, entry := range s.registry.Entries() {
		job := entry.Job
		if _, err := s.scheduler.AddFunc(entry.Schedule, func() { _ = s.runJob(ctx, job) }); err != nil {
			return fmt.Errorf("schedule %s: %w", job.Name(), err)
		}
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"job":      job.Name(),
			"schedule": entry.Schedule,
		}), "job scheduled")
	}

	s.scheduler.Start()
	<-ctx.Done()
	s.logg.Info(ctx, "cron service context canceled")
	<-s.scheduler.Stop().Done()
	return ctx.Err()
}

// RunOnce runs the named job immediately under its lock.
func (s *Service) RunOnce(ctx context.Context, name string) error {
	job, ok := s.registry.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	return s.runJob(ctx, job)
}

func (s *Service) runJob(ctx context.Context, job Job) error {
	name := job.Name()
	jobCtx := s.logg.WithJob(ctx, name)
	jobCtx = s.logg.WithField(jobCtx, "event", "cron.job")

	token, ok, err := s.lock.Acquire(jobCtx, name)
	if err != nil {
		s.logg.Error(jobCtx, "job lock unavailable", err)
		s.metrics.IncFailure(name)
		return fmt.Errorf("lock acquire: %w", err)
	}
	if !ok {
		s.logg.Info(jobCtx, "another worker holds the job lock; skipping")
		s.metrics.IncSkipped(name)
		return ErrLocked
	}
	defer func() {
		if relErr := s.lock.Release(context.WithoutCancel(jobCtx), name, token); relErr != nil {
			s.logg.Error(jobCtx, "failed to release job lock", relErr)
		}
	}()

	s.logg.Info(jobCtx, "job start")
	start := time.Now()
	err = job.Run(jobCtx)
	duration := time.Since(start)
	s.metrics.ObserveDuration(name, duration)
	jobCtx = s.logg.WithField(jobCtx, "duration_ms", duration.Milliseconds())
	if err != nil {
		s.logg.Error(jobCtx, "job failed", err)
		s.metrics.IncFailure(name)
		return err
	}
	s.logg.Info(jobCtx, "job completed")
	s.metrics.IncSuccess(name)
	return nil
}

// cronLogger routes robfig/cron's own logging through the service logger.
type cronLogger struct {
	logg *logger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.logg.Debug(c.fields(keysAndValues), "cron: "+msg)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.logg.Error(c.fields(keysAndValues), "cron: "+msg, err)
}

func (c cronLogger) fields(keysAndValues []any) context.Context {
	fields := make(map[string]any, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return c.logg.WithFields(context.Background(), fields)
}

package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/webstudio/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Config sizes the worker pool
type Config struct {
	Workers       int
	QueueSize     int
	JobTimeout    time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
}

// DefaultConfig is used for every zero field of a Config
func DefaultConfig() Config {
	return Config{
		Workers:       2,
		QueueSize:     100,
		JobTimeout:    5 * time.Minute,
		RetryAttempts: 3,
		RetryDelay:    30 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Workers <= 0 {
		c.Workers = d.Workers
	}
	if c.QueueSize <= 0 {
		c.QueueSize = d.QueueSize
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = d.JobTimeout
	}
	c.RetryAttempts = max(c.RetryAttempts, 0)
	c.RetryDelay = max(c.RetryDelay, 0)
	return c
}

// JobObserver sees every finished attempt, successful or not
type JobObserver func(job *Job, elapsed time.Duration)

// Scheduler runs submitted jobs on a fixed pool of workers. Jobs are
// accepted only between Start and Stop.
type Scheduler struct {
	cfg     Config
	log     *zap.Logger
	observe JobObserver
	now     func() time.Time

	mu      sync.Mutex
	queue   chan *Job
	running bool
	cancel  context.CancelFunc
	workers sync.WaitGroup
}

// NewScheduler builds a stopped scheduler
func NewScheduler(cfg Config, log *zap.Logger) *Scheduler {
	cfg = cfg.withDefaults()
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		cfg:   cfg,
		log:   log.Named("jobs"),
		now:   time.Now,
		queue: make(chan *Job, cfg.QueueSize),
	}
}

// SetObserver must be called before Start
func (s *Scheduler) SetObserver(o JobObserver) { s.observe = o }

// RetryAttempts is the retry budget of jobs created through Submit
func (s *Scheduler) RetryAttempts() int { return s.cfg.RetryAttempts }

// IsRunning reports whether Submit currently accepts jobs
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Start launches the workers. Starting twice is a no-op.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}
	s.running = true

	ctx, s.cancel = context.WithCancel(ctx)
	s.workers.Add(s.cfg.Workers)
	for id := range s.cfg.Workers {
		go s.work(ctx, id)
	}

	s.log.Info("Job workers started",
		zap.Int("workers", s.cfg.Workers),
		zap.Int("queue", s.cfg.QueueSize),
		zap.Duration("job_timeout", s.cfg.JobTimeout),
	)
	return nil
}

// Stop cancels in-flight jobs, drops queued ones and waits for the workers
// until ctx expires.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.queue)
	s.cancel()
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.workers.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.log.Info("Job workers stopped")
		return nil
	case <-ctx.Done():
		s.log.Warn("Job workers did not stop in time")
		return ctx.Err()
	}
}

// Submit wraps run in a job with the configured retry budget and queues it
func (s *Scheduler) Submit(name string, run JobFunc) (*Job, error) {
	job := NewJob(name, run, s.cfg.RetryAttempts)
	return job, s.SubmitJob(job)
}

// Enqueue satisfies the job queue interface of the application services
func (s *Scheduler) Enqueue(name string, run func(ctx context.Context) error) error {
	_, err := s.Submit(name, run)
	return err
}

// SubmitJob queues job without blocking. A full queue is an error.
func (s *Scheduler) SubmitJob(job *Job) error {
	if job == nil || job.Run == nil {
		return fmt.Errorf("%w: job has no work", ErrInvalidJob)
	}
	if !s.offer(job) {
		if !s.IsRunning() {
			return ErrSchedulerNotRunning
		}
		return ErrJobQueueFull
	}
	s.log.Debug("Job queued", zap.Stringer("job_id", job.ID), zap.String("job", job.Name))
	return nil
}

// offer puts job on the queue unless the pool is stopped or full
func (s *Scheduler) offer(job *Job) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return false
	}
	select {
	case s.queue <- job:
		return true
	default:
		return false
	}
}

func (s *Scheduler) work(ctx context.Context, id int) {
	defer s.workers.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-s.queue:
			if !ok {
				return
			}
			s.attempt(ctx, id, job)
		}
	}
}

func (s *Scheduler) attempt(ctx context.Context, worker int, job *Job) {
	job.begin(s.now())
	fields := []zap.Field{
		zap.Int("worker", worker),
		zap.Stringer("job_id", job.ID),
		zap.String("job", job.Name),
		zap.Int("attempt", job.Attempt),
	}

	runCtx, cancel := context.WithTimeout(ctx, s.cfg.JobTimeout)
	runCtx, span := telemetry.StartSpan(runCtx, "job "+job.Name,
		attribute.String(telemetry.SpanAttrJob, job.Name),
		attribute.Int(telemetry.SpanAttrJobAttempt, job.Attempt))
	err := invoke(runCtx, job.Run)
	telemetry.EndSpan(span, err)
	cancel()

	retry := job.finish(s.now(), err)
	if s.observe != nil {
		s.observe(job, job.Elapsed())
	}

	if err == nil {
		s.log.Info("Job done", append(fields, zap.Duration("elapsed", job.Elapsed()))...)
		return
	}
	s.log.Error("Job failed", append(fields, zap.Error(err))...)
	if !retry || ctx.Err() != nil {
		return
	}

	job.Status = JobStatusPending
	s.log.Info("Job will be retried", append(fields,
		zap.Int("retries_left", job.Retries),
		zap.Duration("delay", s.cfg.RetryDelay))...)
	time.AfterFunc(s.cfg.RetryDelay, func() {
		if !s.offer(job) {
			s.log.Warn("Retry dropped", fields...)
		}
	})
}

// invoke runs fn and reports a panic as an error
func invoke(ctx context.Context, fn JobFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return fn(ctx)
}

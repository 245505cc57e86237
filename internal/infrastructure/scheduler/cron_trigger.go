package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Schedule computes the next firing time strictly after the given instant
type Schedule interface {
	Next(after time.Time) time.Time
}

// Every fires at a fixed interval
type Every time.Duration

// Next returns after + interval
func (e Every) Next(after time.Time) time.Time {
	return after.Add(time.Duration(e))
}

// Daily fires once a day at Hour:Minute in Location (time.Local when nil)
type Daily struct {
	Hour     int
	Minute   int
	Location *time.Location
}

// Next returns the first Hour:Minute after the given instant
func (d Daily) Next(after time.Time) time.Time {
	loc := d.Location
	if loc == nil {
		loc = time.Local
	}
	t := after.In(loc)
	next := time.Date(t.Year(), t.Month(), t.Day(), d.Hour, d.Minute, 0, 0, loc)
	if !next.After(t) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func (d Daily) valid() bool {
	return d.Hour >= 0 && d.Hour < 24 && d.Minute >= 0 && d.Minute < 60
}

// CronTriggerConfig holds configuration for the cron trigger
type CronTriggerConfig struct {
	// CheckInterval is how often due entries are looked for
	CheckInterval time.Duration
}

// DefaultCronTriggerConfig returns default cron trigger configuration
func DefaultCronTriggerConfig() CronTriggerConfig {
	return CronTriggerConfig{CheckInterval: time.Second}
}

type entry struct {
	name     string
	schedule Schedule
	run      JobFunc
	next     time.Time
	inFlight atomic.Bool
}

// CronTrigger submits recurring jobs to the scheduler when they come due.
// An entry whose previous run has not finished is skipped.
type CronTrigger struct {
	config    CronTriggerConfig
	scheduler *Scheduler
	logger    *zap.Logger
	now       func() time.Time

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	entries   []*entry
}

// NewCronTrigger creates a new cron trigger
func NewCronTrigger(config CronTriggerConfig, scheduler *Scheduler, logger *zap.Logger) *CronTrigger {
	if config.CheckInterval <= 0 {
		config.CheckInterval = DefaultCronTriggerConfig().CheckInterval
	}
	return &CronTrigger{
		config:    config,
		scheduler: scheduler,
		logger:    logger,
		now:       time.Now,
	}
}

// Add registers a recurring job. The first run is the schedule's next time after now.
func (c *CronTrigger) Add(name string, schedule Schedule, run JobFunc) error {
	if run == nil || schedule == nil {
		return fmt.Errorf("%w: %s", ErrInvalidSchedule, name)
	}
	switch s := schedule.(type) {
	case Every:
		if s <= 0 {
			return fmt.Errorf("%w: %s has non-positive interval", ErrInvalidSchedule, name)
		}
	case Daily:
		if !s.valid() {
			return fmt.Errorf("%w: %s at %02d:%02d", ErrInvalidSchedule, name, s.Hour, s.Minute)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, &entry{
		name:     name,
		schedule: schedule,
		run:      run,
		next:     schedule.Next(c.now()),
	})
	return nil
}

// NextRun returns when the named entry fires next
func (c *CronTrigger) NextRun(name string) (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		if e.name == name {
			return e.next, true
		}
	}
	return time.Time{}, false
}

// Start starts the cron trigger
func (c *CronTrigger) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = true
	c.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.wg.Add(1)
	go c.runLoop(ctx)

	c.mu.Lock()
	for _, e := range c.entries {
		c.logger.Info("Recurring job registered",
			zap.String("job", e.name),
			zap.Time("next_run", e.next),
		)
	}
	c.mu.Unlock()

	return nil
}

// Stop stops the cron trigger
func (c *CronTrigger) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = false
	c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info("Cron trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *CronTrigger) runLoop(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.checkAndTrigger()
		}
	}
}

// checkAndTrigger submits every entry that is due. Missed runs are not replayed.
func (c *CronTrigger) checkAndTrigger() int {
	now := c.now()

	c.mu.Lock()
	due := make([]*entry, 0, len(c.entries))
	for _, e := range c.entries {
		if now.Before(e.next) {
			continue
		}
		e.next = e.schedule.Next(now)
		due = append(due, e)
	}
	c.mu.Unlock()

	submitted := 0
	for _, e := range due {
		if !e.inFlight.CompareAndSwap(false, true) {
			c.logger.Debug("Skipping recurring job, previous run still active", zap.String("job", e.name))
			continue
		}
		job := NewJob(e.name, c.wrap(e), c.scheduler.RetryAttempts())
		if err := c.scheduler.SubmitJob(job); err != nil {
			e.inFlight.Store(false)
			c.logger.Error("Failed to submit recurring job",
				zap.String("job", e.name),
				zap.Error(err),
			)
			continue
		}
		submitted++
	}
	return submitted
}

// wrap clears the in-flight flag when an attempt returns
func (c *CronTrigger) wrap(e *entry) JobFunc {
	return func(ctx context.Context) error {
		defer e.inFlight.Store(false)
		return e.run(ctx)
	}
}

package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestScheduler(t *testing.T, cfg Config) *Scheduler {
	t.Helper()
	s := NewScheduler(cfg, zap.NewNop())
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Stop(ctx)
	})
	return s
}

func TestJob_RetryBudget(t *testing.T) {
	t0 := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	job := NewJob("blog.publish_due", func(context.Context) error { return nil }, 2)
	assert.Equal(t, JobStatusPending, job.Status)
	assert.Zero(t, job.Elapsed())

	job.begin(t0)
	assert.Equal(t, JobStatusRunning, job.Status)
	assert.Equal(t, 1, job.Attempt)

	assert.True(t, job.finish(t0.Add(time.Second), errors.New("boom")))
	assert.Equal(t, JobStatusFailed, job.Status)
	assert.Equal(t, "boom", job.Error)
	assert.Equal(t, time.Second, job.Elapsed())
	assert.Equal(t, 1, job.Retries)

	job.begin(t0)
	assert.Empty(t, job.Error)
	assert.Zero(t, job.Elapsed())
	assert.True(t, job.finish(t0, errors.New("boom")))

	job.begin(t0)
	assert.False(t, job.finish(t0, errors.New("boom")), "budget exhausted")
	assert.Equal(t, 3, job.Attempt)

	job.begin(t0)
	assert.False(t, job.finish(t0, nil))
	assert.Equal(t, JobStatusSuccess, job.Status)
}

func TestNewJob_ClampsNegativeRetries(t *testing.T) {
	assert.Zero(t, NewJob("x", func(context.Context) error { return nil }, -3).Retries)
}

func TestConfig_WithDefaults(t *testing.T) {
	cfg := Config{RetryAttempts: -1}.withDefaults()
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, 100, cfg.QueueSize)
	assert.Equal(t, 5*time.Minute, cfg.JobTimeout)
	assert.Equal(t, 0, cfg.RetryAttempts)
}

func TestScheduler_SubmitNotRunning(t *testing.T) {
	s := NewScheduler(DefaultConfig(), zap.NewNop())

	_, err := s.Submit("noop", func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrSchedulerNotRunning)
}

func TestScheduler_SubmitInvalidJob(t *testing.T) {
	s := newTestScheduler(t, DefaultConfig())

	assert.ErrorIs(t, s.SubmitJob(nil), ErrInvalidJob)
	assert.ErrorIs(t, s.SubmitJob(&Job{Name: "empty"}), ErrInvalidJob)
}

func TestScheduler_RunsJob(t *testing.T) {
	finished := make(chan JobStatus, 1)
	s := NewScheduler(Config{Workers: 1}, zap.NewNop())
	s.SetObserver(func(job *Job, _ time.Duration) { finished <- job.Status })
	require.NoError(t, s.Start(context.Background()))
	defer func() { _ = s.Stop(context.Background()) }()

	var ran atomic.Bool
	job, err := s.Submit("audit.run", func(context.Context) error {
		ran.Store(true)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "audit.run", job.Name)

	select {
	case status := <-finished:
		assert.Equal(t, JobStatusSuccess, status)
	case <-time.After(time.Second):
		t.Fatal("job did not run")
	}
	assert.True(t, ran.Load())
}

func TestScheduler_RetriesUntilSuccess(t *testing.T) {
	s := newTestScheduler(t, Config{Workers: 1, RetryAttempts: 3, RetryDelay: time.Millisecond})

	var calls atomic.Int32
	_, err := s.Submit("flaky", func(context.Context) error {
		if calls.Add(1) < 3 {
			return errors.New("temporary")
		}
		return nil
	})
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return calls.Load() == 3 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(3), calls.Load())
}

func TestScheduler_GivesUpAfterRetryBudget(t *testing.T) {
	var mu sync.Mutex
	var attempts []JobStatus

	s := NewScheduler(Config{Workers: 1, RetryAttempts: 2, RetryDelay: time.Millisecond}, zap.NewNop())
	s.SetObserver(func(job *Job, _ time.Duration) {
		mu.Lock()
		attempts = append(attempts, job.Status)
		mu.Unlock()
	})
	require.NoError(t, s.Start(context.Background()))
	defer func() { _ = s.Stop(context.Background()) }()

	_, err := s.Submit("broken", func(context.Context) error { return errors.New("always") })
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(attempts) == 3
	}, time.Second, 5*time.Millisecond)

	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []JobStatus{JobStatusFailed, JobStatusFailed, JobStatusFailed}, attempts)
}

func TestScheduler_JobTimeout(t *testing.T) {
	s := newTestScheduler(t, Config{Workers: 1, JobTimeout: 10 * time.Millisecond})

	errc := make(chan error, 1)
	_, err := s.Submit("slow", func(ctx context.Context) error {
		<-ctx.Done()
		errc <- ctx.Err()
		return ctx.Err()
	})
	require.NoError(t, err)

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(time.Second):
		t.Fatal("job was not cancelled")
	}
}

func TestScheduler_RecoversPanic(t *testing.T) {
	var failed atomic.Bool
	s := NewScheduler(Config{Workers: 1}, zap.NewNop())
	s.SetObserver(func(job *Job, _ time.Duration) {
		if job.Status == JobStatusFailed {
			failed.Store(true)
		}
	})
	require.NoError(t, s.Start(context.Background()))
	defer func() { _ = s.Stop(context.Background()) }()

	_, err := s.Submit("panics", func(context.Context) error { panic("bad") })
	require.NoError(t, err)

	assert.Eventually(t, failed.Load, time.Second, 5*time.Millisecond)

	ran := make(chan struct{})
	_, err = s.Submit("after", func(context.Context) error { close(ran); return nil })
	require.NoError(t, err)
	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("worker died after panic")
	}
}

func TestScheduler_QueueFull(t *testing.T) {
	s := newTestScheduler(t, Config{Workers: 1, QueueSize: 1})

	block := make(chan struct{})
	started := make(chan struct{})
	_, err := s.Submit("blocker", func(context.Context) error {
		close(started)
		<-block
		return nil
	})
	require.NoError(t, err)
	<-started

	_, err = s.Submit("queued", func(context.Context) error { return nil })
	require.NoError(t, err)

	_, err = s.Submit("overflow", func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrJobQueueFull)

	close(block)
}

func TestScheduler_StopIsIdempotent(t *testing.T) {
	s := NewScheduler(DefaultConfig(), zap.NewNop())
	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Start(context.Background()))

	require.NoError(t, s.Stop(context.Background()))
	require.NoError(t, s.Stop(context.Background()))
	assert.False(t, s.IsRunning())
}

func TestScheduler_Enqueue(t *testing.T) {
	s := newTestScheduler(t, Config{Workers: 1})

	done := make(chan struct{})
	require.NoError(t, s.Enqueue("audit.run", func(context.Context) error {
		close(done)
		return nil
	}))
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("enqueued job did not run")
	}

	stopped := NewScheduler(DefaultConfig(), zap.NewNop())
	assert.ErrorIs(t, stopped.Enqueue("x", func(context.Context) error { return nil }), ErrSchedulerNotRunning)
}

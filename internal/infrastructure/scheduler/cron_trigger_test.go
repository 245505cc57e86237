package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDaily_Next(t *testing.T) {
	loc := time.UTC
	d := Daily{Hour: 6, Minute: 30, Location: loc}

	tests := []struct {
		name  string
		after time.Time
		want  time.Time
	}{
		{"earlier same day", time.Date(2026, 3, 1, 5, 0, 0, 0, loc), time.Date(2026, 3, 1, 6, 30, 0, 0, loc)},
		{"exactly at run time", time.Date(2026, 3, 1, 6, 30, 0, 0, loc), time.Date(2026, 3, 2, 6, 30, 0, 0, loc)},
		{"later same day", time.Date(2026, 3, 1, 22, 0, 0, 0, loc), time.Date(2026, 3, 2, 6, 30, 0, 0, loc)},
		{"end of year", time.Date(2026, 12, 31, 23, 0, 0, 0, loc), time.Date(2027, 1, 1, 6, 30, 0, 0, loc)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.Next(tt.after))
		})
	}
}

func TestEvery_Next(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, now.Add(time.Minute), Every(time.Minute).Next(now))
}

func TestCronTrigger_AddRejectsInvalidSchedules(t *testing.T) {
	c := NewCronTrigger(CronTriggerConfig{}, NewScheduler(DefaultConfig(), zap.NewNop()), zap.NewNop())
	noop := func(context.Context) error { return nil }

	assert.ErrorIs(t, c.Add("zero", Every(0), noop), ErrInvalidSchedule)
	assert.ErrorIs(t, c.Add("hour", Daily{Hour: 24}, noop), ErrInvalidSchedule)
	assert.ErrorIs(t, c.Add("minute", Daily{Minute: -1}, noop), ErrInvalidSchedule)
	assert.ErrorIs(t, c.Add("nil", Every(time.Second), nil), ErrInvalidSchedule)
	assert.NoError(t, c.Add("ok", Daily{Hour: 23, Minute: 59}, noop))
}

func TestCronTrigger_SubmitsDueEntries(t *testing.T) {
	s := newTestScheduler(t, Config{Workers: 1})
	c := NewCronTrigger(CronTriggerConfig{}, s, zap.NewNop())

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	var publishes, generates atomic.Int32
	require.NoError(t, c.Add("blog.publish_due", Every(time.Minute), func(context.Context) error {
		publishes.Add(1)
		return nil
	}))
	require.NoError(t, c.Add("blog.generate_daily", Daily{Hour: 10, Minute: 5, Location: time.UTC}, func(context.Context) error {
		generates.Add(1)
		return nil
	}))

	assert.Equal(t, 0, c.checkAndTrigger())

	now = now.Add(time.Minute)
	assert.Equal(t, 1, c.checkAndTrigger())
	assert.Eventually(t, func() bool {
		return publishes.Load() == 1 && !c.entries[0].inFlight.Load()
	}, time.Second, 5*time.Millisecond)

	now = now.Add(4 * time.Minute)
	assert.Equal(t, 2, c.checkAndTrigger())
	assert.Eventually(t, func() bool {
		return publishes.Load() == 2 && generates.Load() == 1
	}, time.Second, 5*time.Millisecond)

	next, ok := c.NextRun("blog.generate_daily")
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 2, 10, 5, 0, 0, time.UTC), next)

	_, ok = c.NextRun("unknown")
	assert.False(t, ok)
}

func TestCronTrigger_SkipsWhilePreviousRunActive(t *testing.T) {
	s := newTestScheduler(t, Config{Workers: 2})
	c := NewCronTrigger(CronTriggerConfig{}, s, zap.NewNop())

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	release := make(chan struct{})
	started := make(chan struct{}, 2)
	require.NoError(t, c.Add("slow", Every(time.Second), func(context.Context) error {
		started <- struct{}{}
		<-release
		return nil
	}))

	now = now.Add(time.Second)
	assert.Equal(t, 1, c.checkAndTrigger())
	<-started

	now = now.Add(time.Second)
	assert.Equal(t, 0, c.checkAndTrigger())

	close(release)
	assert.Eventually(t, func() bool {
		now = now.Add(time.Second)
		return c.checkAndTrigger() == 1
	}, time.Second, 5*time.Millisecond)
}

func TestCronTrigger_SchedulerStopped(t *testing.T) {
	s := NewScheduler(DefaultConfig(), zap.NewNop())
	c := NewCronTrigger(CronTriggerConfig{}, s, zap.NewNop())

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	require.NoError(t, c.Add("tick", Every(time.Second), func(context.Context) error { return nil }))

	now = now.Add(time.Second)
	assert.Equal(t, 0, c.checkAndTrigger())
}

func TestCronTrigger_StartStop(t *testing.T) {
	s := newTestScheduler(t, DefaultConfig())
	c := NewCronTrigger(CronTriggerConfig{CheckInterval: 5 * time.Millisecond}, s, zap.NewNop())

	var runs atomic.Int32
	require.NoError(t, c.Add("fast", Every(time.Millisecond), func(context.Context) error {
		runs.Add(1)
		return nil
	}))

	require.NoError(t, c.Start(context.Background()))
	assert.Eventually(t, func() bool { return runs.Load() > 0 }, time.Second, 5*time.Millisecond)
	require.NoError(t, c.Stop(context.Background()))
	require.NoError(t, c.Stop(context.Background()))
}

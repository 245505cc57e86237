package scheduler

import "errors"

var (
	// ErrSchedulerNotRunning is returned when trying to submit a job to a stopped scheduler
	ErrSchedulerNotRunning = errors.New("scheduler is not running")

	// ErrJobQueueFull is returned when the job queue is full
	ErrJobQueueFull = errors.New("job queue is full")

	// ErrInvalidJob is returned for a job without a run function
	ErrInvalidJob = errors.New("invalid job")

	// ErrInvalidSchedule is returned for a trigger entry that can never fire
	ErrInvalidSchedule = errors.New("invalid schedule")
)

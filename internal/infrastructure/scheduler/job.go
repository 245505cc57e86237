package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JobStatus is where a job stands after its latest attempt
type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// JobFunc is the work a job performs. It must honour ctx cancellation.
type JobFunc func(ctx context.Context) error

// Job is one queued unit of background work such as a site audit or the
// due-post publisher. A failed job is re-queued until its retries run out.
type Job struct {
	ID      uuid.UUID
	Name    string
	Run     JobFunc
	Status  JobStatus
	Error   string
	Retries int // retries still allowed
	Attempt int // 1-based, 0 before the first run

	StartedAt  time.Time
	FinishedAt time.Time
}

// NewJob returns a pending job that may be retried up to retries times
func NewJob(name string, run JobFunc, retries int) *Job {
	return &Job{
		ID:      uuid.New(),
		Name:    name,
		Run:     run,
		Status:  JobStatusPending,
		Retries: max(retries, 0),
	}
}

func (j *Job) begin(now time.Time) {
	j.Attempt++
	j.Status = JobStatusRunning
	j.Error = ""
	j.StartedAt = now
	j.FinishedAt = time.Time{}
}

// finish records the attempt outcome and reports whether another attempt
// should be queued.
func (j *Job) finish(now time.Time, err error) (retry bool) {
	j.FinishedAt = now
	if err == nil {
		j.Status = JobStatusSuccess
		return false
	}
	j.Status = JobStatusFailed
	j.Error = err.Error()
	if j.Retries == 0 {
		return false
	}
	j.Retries--
	return true
}

// Elapsed is the duration of the latest finished attempt
func (j *Job) Elapsed() time.Duration {
	if j.FinishedAt.IsZero() {
		return 0
	}
	return j.FinishedAt.Sub(j.StartedAt)
}

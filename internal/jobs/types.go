// Package jobs defines bulk categorization job state and the registry that
// tracks it between the HTTP request that starts a job and later status polls.
package jobs

import (
	"context"
	"errors"
	"time"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	// JobStatusPending indicates the job is waiting for a worker slot.
	JobStatusPending JobStatus = "PENDING"
	// JobStatusRunning indicates the job is currently being processed.
	JobStatusRunning JobStatus = "RUNNING"
	// JobStatusCompleted indicates every selected transaction was visited.
	JobStatusCompleted JobStatus = "COMPLETED"
	// JobStatusFailed indicates processing stopped on an error.
	JobStatusFailed JobStatus = "FAILED"
)

// Terminal reports whether no further transitions are possible.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// ErrJobNotFound is returned by stores when no job has the requested ID.
var ErrJobNotFound = errors.New("job not found")

// BulkJob is a snapshot of one bulk categorization run.
type BulkJob struct {
	// JobID is the unique identifier handed back to the client.
	JobID string `json:"job_id"`

	// UserID owns the job and every transaction it touches.
	UserID string `json:"user_id"`

	Status JobStatus `json:"status"`

	// TotalProcessed counts transactions visited so far.
	TotalProcessed int `json:"total_processed"`

	// TotalUpdated counts transactions whose category was changed.
	TotalUpdated int `json:"total_updated"`

	// TotalSkippedLowConfidence counts visited transactions left unchanged.
	TotalSkippedLowConfidence int `json:"total_skipped_low_confidence"`

	// ConfidenceThreshold is the minimum suggestion confidence applied.
	ConfidenceThreshold float64 `json:"confidence_threshold"`

	// Error contains the failure reason when Status is FAILED.
	Error string `json:"error,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Clone returns a deep copy of j.
func (j *BulkJob) Clone() *BulkJob {
	c := *j
	if j.StartedAt != nil {
		t := *j.StartedAt
		c.StartedAt = &t
	}
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}

// Store tracks bulk jobs. Implementations are safe for concurrent use and
// never hand out pointers to their internal state.
type Store interface {
	// Create stores a new job. The JobID must be set and unused.
	Create(ctx context.Context, job *BulkJob) error

	// Get returns a copy of the job or ErrJobNotFound.
	Get(ctx context.Context, jobID string) (*BulkJob, error)

	// Update applies mutate to the stored job atomically and returns the result.
	Update(ctx context.Context, jobID string, mutate func(*BulkJob)) (*BulkJob, error)

	// ListByUser returns the user's jobs, newest first.
	ListByUser(ctx context.Context, userID string) ([]*BulkJob, error)

	// DeleteFinishedBefore removes terminal jobs completed before cutoff.
	DeleteFinishedBefore(ctx context.Context, cutoff time.Time) (int, error)
}

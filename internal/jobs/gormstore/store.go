// Package gormstore persists bulk categorization jobs in the application
// database so job status survives a restart.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/rdd81/smart-budget-app/internal/jobs"
)

// JobRecord is the row layout of bulk_categorization_jobs.
type JobRecord struct {
	JobID                     string  `gorm:"type:uuid;primaryKey"`
	UserID                    string  `gorm:"type:uuid;not null;index"`
	Status                    string  `gorm:"size:16;not null;index"`
	TotalProcessed            int     `gorm:"not null;default:0"`
	TotalUpdated              int     `gorm:"not null;default:0"`
	TotalSkippedLowConfidence int     `gorm:"not null;default:0"`
	ConfidenceThreshold       float64 `gorm:"not null"`
	Error                     string
	CreatedAt                 time.Time `gorm:"not null"`
	StartedAt                 *time.Time
	CompletedAt               *time.Time `gorm:"index"`
}

// TableName pins the table created by the 000002 migration.
func (JobRecord) TableName() string {
	return "bulk_categorization_jobs"
}

func toRecord(job *jobs.BulkJob) *JobRecord {
	return &JobRecord{
		JobID:                     job.JobID,
		UserID:                    job.UserID,
		Status:                    string(job.Status),
		TotalProcessed:            job.TotalProcessed,
		TotalUpdated:              job.TotalUpdated,
		TotalSkippedLowConfidence: job.TotalSkippedLowConfidence,
		ConfidenceThreshold:       job.ConfidenceThreshold,
		Error:                     job.Error,
		CreatedAt:                 job.CreatedAt,
		StartedAt:                 job.StartedAt,
		CompletedAt:               job.CompletedAt,
	}
}

func (r *JobRecord) toJob() *jobs.BulkJob {
	job := &jobs.BulkJob{
		JobID:                     r.JobID,
		UserID:                    r.UserID,
		Status:                    jobs.JobStatus(r.Status),
		TotalProcessed:            r.TotalProcessed,
		TotalUpdated:              r.TotalUpdated,
		TotalSkippedLowConfidence: r.TotalSkippedLowConfidence,
		ConfidenceThreshold:       r.ConfidenceThreshold,
		Error:                     r.Error,
		CreatedAt:                 r.CreatedAt,
		StartedAt:                 r.StartedAt,
		CompletedAt:               r.CompletedAt,
	}
	return job.Clone()
}

// Store implements jobs.Store on top of GORM.
type Store struct {
	db *gorm.DB
	// mu serializes read-modify-write cycles issued by this process.
	mu sync.Mutex
}

// NewStore creates a GORM-backed job store.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, job *jobs.BulkJob) error {
	if job.JobID == "" {
		return fmt.Errorf("job ID is required")
	}
	if err := s.db.WithContext(ctx).Create(toRecord(job)).Error; err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, jobID string) (*jobs.BulkJob, error) {
	var record JobRecord
	if err := s.db.WithContext(ctx).Where("job_id = ?", jobID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, jobs.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return record.toJob(), nil
}

func (s *Store) Update(ctx context.Context, jobID string, mutate func(*jobs.BulkJob)) (*jobs.BulkJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var updated *jobs.BulkJob
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record JobRecord
		if err := tx.Where("job_id = ?", jobID).First(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return jobs.ErrJobNotFound
			}
			return fmt.Errorf("failed to load job: %w", err)
		}

		job := record.toJob()
		mutate(job)
		job.JobID = record.JobID

		if err := tx.Save(toRecord(job)).Error; err != nil {
			return fmt.Errorf("failed to save job: %w", err)
		}
		updated = job
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Store) ListByUser(ctx context.Context, userID string) ([]*jobs.BulkJob, error) {
	var records []JobRecord
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	result := make([]*jobs.BulkJob, 0, len(records))
	for i := range records {
		result = append(result, records[i].toJob())
	}
	return result, nil
}

func (s *Store) DeleteFinishedBefore(ctx context.Context, cutoff time.Time) (int, error) {
	result := s.db.WithContext(ctx).
		Where("status IN ? AND completed_at < ?",
			[]string{string(jobs.JobStatusCompleted), string(jobs.JobStatusFailed)}, cutoff).
		Delete(&JobRecord{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete finished jobs: %w", result.Error)
	}
	return int(result.RowsAffected), nil
}

// Ensure Store implements jobs.Store.
var _ jobs.Store = (*Store)(nil)

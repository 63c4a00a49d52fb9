package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rdd81/smart-budget-app/internal/jobs"
)

// Store is an in-memory implementation of jobs.Store.
// Data is lost on restart; use gormstore for persistence.
type Store struct {
	mu      sync.RWMutex
	jobs    map[string]*jobs.BulkJob
	maxJobs int
}

// Option configures a Store.
type Option func(*Store)

// WithMaxJobs bounds the number of retained jobs. When the bound is reached,
// Create drops the oldest finished jobs to make room.
func WithMaxJobs(n int) Option {
	return func(s *Store) {
		s.maxJobs = n
	}
}

// NewStore creates a new in-memory job store.
func NewStore(opts ...Option) *Store {
	s := &Store{jobs: make(map[string]*jobs.BulkJob)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Create(ctx context.Context, job *jobs.BulkJob) error {
	if job.JobID == "" {
		return fmt.Errorf("job ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[job.JobID]; exists {
		return fmt.Errorf("job %s already exists", job.JobID)
	}
	if s.maxJobs > 0 && len(s.jobs) >= s.maxJobs {
		s.evictFinishedLocked(len(s.jobs) - s.maxJobs + 1)
	}
	s.jobs[job.JobID] = job.Clone()
	return nil
}

func (s *Store) Get(ctx context.Context, jobID string) (*jobs.BulkJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return nil, jobs.ErrJobNotFound
	}
	return job.Clone(), nil
}

func (s *Store) Update(ctx context.Context, jobID string, mutate func(*jobs.BulkJob)) (*jobs.BulkJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return nil, jobs.ErrJobNotFound
	}
	mutate(job)
	return job.Clone(), nil
}

func (s *Store) ListByUser(ctx context.Context, userID string) ([]*jobs.BulkJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*jobs.BulkJob, 0)
	for _, job := range s.jobs {
		if job.UserID == userID {
			result = append(result, job.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (s *Store) DeleteFinishedBefore(ctx context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, job := range s.jobs {
		if job.Status.Terminal() && job.CompletedAt != nil && job.CompletedAt.Before(cutoff) {
			delete(s.jobs, id)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of retained jobs.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

// evictFinishedLocked drops up to n finished jobs, oldest completion first.
// Jobs still pending or running are never evicted, so the store may exceed
// maxJobs while many jobs are active.
func (s *Store) evictFinishedLocked(n int) {
	finished := make([]*jobs.BulkJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		if job.Status.Terminal() {
			finished = append(finished, job)
		}
	}
	sort.Slice(finished, func(i, j int) bool {
		return completedAt(finished[i]).Before(completedAt(finished[j]))
	})
	for i := 0; i < n && i < len(finished); i++ {
		delete(s.jobs, finished[i].JobID)
	}
}

func completedAt(job *jobs.BulkJob) time.Time {
	if job.CompletedAt != nil {
		return *job.CompletedAt
	}
	return job.CreatedAt
}

// Ensure Store implements jobs.Store.
var _ jobs.Store = (*Store)(nil)

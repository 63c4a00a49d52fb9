// Package jobstest holds behavior checks shared by every jobs.Store implementation.
package jobstest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rdd81/smart-budget-app/internal/jobs"
	"github.com/rdd81/smart-budget-app/internal/uuid"
)

// RunStoreTests exercises a jobs.Store built fresh by newStore for each subtest.
func RunStoreTests(t *testing.T, newStore func(t *testing.T) jobs.Store) {
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	newJob := func(userID string, created time.Time) *jobs.BulkJob {
		return &jobs.BulkJob{
			JobID:               uuid.New(),
			UserID:              userID,
			Status:              jobs.JobStatusPending,
			ConfidenceThreshold: 0.7,
			CreatedAt:           created,
		}
	}

	t.Run("create and get returns a copy", func(t *testing.T) {
		store := newStore(t)
		job := newJob(uuid.New(), base)
		require.NoError(t, store.Create(ctx, job))

		job.Status = jobs.JobStatusFailed

		got, err := store.Get(ctx, job.JobID)
		require.NoError(t, err)
		assert.Equal(t, jobs.JobStatusPending, got.Status)
		assert.Equal(t, 0.7, got.ConfidenceThreshold)

		got.TotalProcessed = 99
		again, err := store.Get(ctx, job.JobID)
		require.NoError(t, err)
		assert.Equal(t, 0, again.TotalProcessed)
	})

	t.Run("create requires an ID", func(t *testing.T) {
		store := newStore(t)
		err := store.Create(ctx, &jobs.BulkJob{UserID: uuid.New(), CreatedAt: base})
		assert.Error(t, err)
	})

	t.Run("get unknown job", func(t *testing.T) {
		store := newStore(t)
		_, err := store.Get(ctx, uuid.New())
		assert.True(t, errors.Is(err, jobs.ErrJobNotFound), "got %v", err)
	})

	t.Run("update applies mutation", func(t *testing.T) {
		store := newStore(t)
		job := newJob(uuid.New(), base)
		require.NoError(t, store.Create(ctx, job))

		started := base.Add(time.Second)
		updated, err := store.Update(ctx, job.JobID, func(j *jobs.BulkJob) {
			j.Status = jobs.JobStatusRunning
			j.StartedAt = &started
			j.TotalProcessed = 3
			j.TotalUpdated = 2
			j.TotalSkippedLowConfidence = 1
		})
		require.NoError(t, err)
		assert.Equal(t, jobs.JobStatusRunning, updated.Status)

		got, err := store.Get(ctx, job.JobID)
		require.NoError(t, err)
		assert.Equal(t, 3, got.TotalProcessed)
		assert.Equal(t, 2, got.TotalUpdated)
		assert.Equal(t, 1, got.TotalSkippedLowConfidence)
		require.NotNil(t, got.StartedAt)
		assert.True(t, got.StartedAt.Equal(started))
	})

	t.Run("update unknown job", func(t *testing.T) {
		store := newStore(t)
		_, err := store.Update(ctx, uuid.New(), func(*jobs.BulkJob) {})
		assert.True(t, errors.Is(err, jobs.ErrJobNotFound), "got %v", err)
	})

	t.Run("concurrent updates are not lost", func(t *testing.T) {
		store := newStore(t)
		job := newJob(uuid.New(), base)
		require.NoError(t, store.Create(ctx, job))

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := store.Update(ctx, job.JobID, func(j *jobs.BulkJob) { j.TotalProcessed++ })
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		got, err := store.Get(ctx, job.JobID)
		require.NoError(t, err)
		assert.Equal(t, 20, got.TotalProcessed)
	})

	t.Run("list by user newest first", func(t *testing.T) {
		store := newStore(t)
		user := uuid.New()
		older := newJob(user, base)
		newer := newJob(user, base.Add(time.Minute))
		other := newJob(uuid.New(), base)
		for _, j := range []*jobs.BulkJob{older, newer, other} {
			require.NoError(t, store.Create(ctx, j))
		}

		list, err := store.ListByUser(ctx, user)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, newer.JobID, list[0].JobID)
		assert.Equal(t, older.JobID, list[1].JobID)
	})

	t.Run("delete finished before cutoff", func(t *testing.T) {
		store := newStore(t)
		user := uuid.New()

		oldDone := newJob(user, base)
		oldDone.Status = jobs.JobStatusCompleted
		doneAt := base.Add(time.Minute)
		oldDone.CompletedAt = &doneAt

		oldFailed := newJob(user, base)
		oldFailed.Status = jobs.JobStatusFailed
		oldFailed.CompletedAt = &doneAt

		recent := newJob(user, base)
		recent.Status = jobs.JobStatusCompleted
		recentAt := base.Add(2 * time.Hour)
		recent.CompletedAt = &recentAt

		running := newJob(user, base)
		running.Status = jobs.JobStatusRunning

		for _, j := range []*jobs.BulkJob{oldDone, oldFailed, recent, running} {
			require.NoError(t, store.Create(ctx, j))
		}

		removed, err := store.DeleteFinishedBefore(ctx, base.Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 2, removed)

		_, err = store.Get(ctx, oldDone.JobID)
		assert.True(t, errors.Is(err, jobs.ErrJobNotFound))
		_, err = store.Get(ctx, recent.JobID)
		assert.NoError(t, err)
		_, err = store.Get(ctx, running.JobID)
		assert.NoError(t, err)
	})
}

package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/rdd81/smart-budget-app/internal/errors"
	"github.com/rdd81/smart-budget-app/internal/jobs"
	"github.com/rdd81/smart-budget-app/internal/logger"
	"github.com/rdd81/smart-budget-app/internal/metrics"
	"github.com/rdd81/smart-budget-app/internal/models"
	"github.com/rdd81/smart-budget-app/internal/repositories"
	"github.com/rdd81/smart-budget-app/internal/uuid"
)

const (
	// DefaultBulkConfidenceThreshold is applied when a job does not set one.
	DefaultBulkConfidenceThreshold = 0.7
	defaultBulkWorkers             = 4

	// finalizeAttempts bounds how often the terminal state write is tried.
	finalizeAttempts        = 3
	defaultFinalizeInterval = 200 * time.Millisecond
)

// Per-transaction outcomes reported to metrics.
const (
	outcomeUpdated = "updated"
	outcomeSkipped = "skipped"
)

// bulkCategorizationService runs re-categorization jobs in the background.
// Each job runs on a single goroutine; at most maxWorkers jobs run at once
// and the rest wait in PENDING.
type bulkCategorizationService struct {
	engine           CategorizationServicer
	transactions     repositories.TransactionRepositoryInterface
	categories       repositories.CategoryRepositoryInterface
	store            jobs.Store
	audit            AuditServicer
	metrics          metrics.Recorder
	defaultThreshold float64
	slots            chan struct{}
	wg               sync.WaitGroup
	retryDelay       time.Duration
	log              *zap.SugaredLogger
	now              func() time.Time
}

// BulkOption configures the bulk categorization service.
type BulkOption func(*bulkCategorizationService)

// WithMaxWorkers bounds how many jobs execute concurrently.
func WithMaxWorkers(n int) BulkOption {
	return func(s *bulkCategorizationService) {
		if n > 0 {
			s.slots = make(chan struct{}, n)
		}
	}
}

// WithDefaultThreshold overrides the confidence threshold used when a job
// does not specify one.
func WithDefaultThreshold(threshold float64) BulkOption {
	return func(s *bulkCategorizationService) {
		s.defaultThreshold = threshold
	}
}

// WithBulkAudit records an audit entry when each job finishes.
func WithBulkAudit(audit AuditServicer) BulkOption {
	return func(s *bulkCategorizationService) {
		s.audit = audit
	}
}

// WithBulkMetrics reports job and transaction outcomes to recorder.
func WithBulkMetrics(recorder metrics.Recorder) BulkOption {
	return func(s *bulkCategorizationService) {
		s.metrics = recorder
	}
}

// NewBulkCategorizationService creates a new BulkCategorizationServicer.
func NewBulkCategorizationService(
	engine CategorizationServicer,
	transactions repositories.TransactionRepositoryInterface,
	categories repositories.CategoryRepositoryInterface,
	store jobs.Store,
	opts ...BulkOption,
) BulkCategorizationServicer {
	s := &bulkCategorizationService{
		engine:           engine,
		transactions:     transactions,
		categories:       categories,
		store:            store,
		metrics:          metrics.Nop{},
		defaultThreshold: DefaultBulkConfidenceThreshold,
		slots:            make(chan struct{}, defaultBulkWorkers),
		retryDelay:       defaultFinalizeInterval,
		log:              logger.Named("bulk"),
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartJob registers a PENDING job and schedules it. The returned snapshot
// is taken before the job starts; poll GetJob for progress.
func (s *bulkCategorizationService) StartJob(ctx context.Context, userID string, filter BulkFilter) (*jobs.BulkJob, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthorized
	}

	threshold := s.defaultThreshold
	if filter.ConfidenceThreshold != nil {
		threshold = *filter.ConfidenceThreshold
		if math.IsNaN(threshold) || threshold < 0 || threshold > 1 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "confidence threshold must be between 0 and 1")
		}
	}
	if filter.DateFrom != nil && filter.DateTo != nil && filter.DateFrom.After(*filter.DateTo) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "date_from must not be after date_to")
	}
	if filter.TransactionType != nil && !filter.TransactionType.Valid() {
		return nil, apperrors.ErrInvalidTransactionType
	}

	job := &jobs.BulkJob{
		JobID:               uuid.New(),
		UserID:              userID,
		Status:              jobs.JobStatusPending,
		ConfidenceThreshold: threshold,
		CreatedAt:           s.now().UTC(),
	}
	if err := s.store.Create(ctx, job); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.log.Infow("bulk categorization job queued", "job_id", job.JobID, "user_id", userID, "threshold", threshold)

	s.wg.Add(1)
	go s.run(job.JobID, userID, filter, threshold)

	return job.Clone(), nil
}

// GetJob returns the job if it exists and belongs to userID.
func (s *bulkCategorizationService) GetJob(ctx context.Context, userID, jobID string) (*jobs.BulkJob, error) {
	job, err := s.store.Get(ctx, jobID)
	if err != nil {
		if errors.Is(err, jobs.ErrJobNotFound) {
			return nil, apperrors.ErrJobNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if job.UserID != userID {
		return nil, apperrors.ErrJobNotFound
	}
	return job, nil
}

// ListJobs returns the user's retained jobs, newest first.
func (s *bulkCategorizationService) ListJobs(ctx context.Context, userID string) ([]*jobs.BulkJob, error) {
	list, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return list, nil
}

// Wait blocks until every scheduled job has reached a terminal state.
func (s *bulkCategorizationService) Wait() {
	s.wg.Wait()
}

// run executes one job. The job outlives the request that started it, so it
// uses its own background context.
func (s *bulkCategorizationService) run(jobID, userID string, filter BulkFilter, threshold float64) {
	defer s.wg.Done()

	s.slots <- struct{}{}
	defer func() { <-s.slots }()

	ctx := context.Background()
	log := s.log.With("job_id", jobID, "user_id", userID)

	started := s.now().UTC()
	if _, err := s.store.Update(ctx, jobID, func(j *jobs.BulkJob) {
		j.Status = jobs.JobStatusRunning
		j.StartedAt = &started
	}); err != nil {
		log.Errorw("failed to mark job running", "error", err)
		s.finish(ctx, log, jobID, userID, started, jobProgress{}, fmt.Errorf("failed to mark job running: %w", err))
		return
	}

	s.metrics.BulkJobsRunning(1)
	progress, runErr := s.execute(ctx, jobID, userID, filter, threshold)
	s.metrics.BulkJobsRunning(-1)

	s.finish(ctx, log, jobID, userID, started, progress, runErr)
}

// jobProgress is the runner's own tally. It is written to the store as
// absolute values, so a lost progress write is repaired by the next one.
type jobProgress struct {
	processed int
	updated   int
	skipped   int
}

func (p jobProgress) apply(j *jobs.BulkJob) {
	j.TotalProcessed = p.processed
	j.TotalUpdated = p.updated
	j.TotalSkippedLowConfidence = p.skipped
}

// finish moves the job to COMPLETED or FAILED, then reports and audits it.
func (s *bulkCategorizationService) finish(ctx context.Context, log *zap.SugaredLogger, jobID, userID string, started time.Time, progress jobProgress, runErr error) {
	completed := s.now().UTC()
	final, err := s.finalize(ctx, jobID, completed, progress, runErr)
	if err != nil {
		log.Errorw("failed to finalize job", "error", err, "run_error", runErr)
		return
	}

	s.metrics.BulkJobFinished(string(final.Status), completed.Sub(started))
	if runErr != nil {
		log.Errorw("bulk categorization job failed",
			"error", runErr,
			"processed", final.TotalProcessed,
			"updated", final.TotalUpdated,
		)
	} else {
		log.Infow("bulk categorization job completed",
			"processed", final.TotalProcessed,
			"updated", final.TotalUpdated,
			"skipped", final.TotalSkippedLowConfidence,
			"duration", completed.Sub(started),
		)
	}

	if s.audit != nil {
		s.audit.Log(userID, "BULK_CATEGORIZE", "bulk_categorization_job", jobID, "", map[string]interface{}{
			"status":                       final.Status,
			"total_processed":              final.TotalProcessed,
			"total_updated":                final.TotalUpdated,
			"total_skipped_low_confidence": final.TotalSkippedLowConfidence,
		})
	}
}

// finalize writes the terminal state, retrying with a growing delay so a
// transient store error does not strand the job in PENDING or RUNNING.
func (s *bulkCategorizationService) finalize(ctx context.Context, jobID string, completed time.Time, progress jobProgress, runErr error) (*jobs.BulkJob, error) {
	var err error
	for attempt := 0; attempt < finalizeAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(attempt) * s.retryDelay)
		}
		var final *jobs.BulkJob
		final, err = s.store.Update(ctx, jobID, func(j *jobs.BulkJob) {
			progress.apply(j)
			j.CompletedAt = &completed
			if runErr != nil {
				j.Status = jobs.JobStatusFailed
				j.Error = runErr.Error()
				return
			}
			j.Status = jobs.JobStatusCompleted
			j.Error = ""
		})
		if err == nil {
			return final, nil
		}
		if errors.Is(err, jobs.ErrJobNotFound) {
			return nil, err
		}
	}
	return nil, err
}

// execute walks the selected transactions. The first error or panic stops
// the job; the returned progress covers every transaction handled so far.
func (s *bulkCategorizationService) execute(ctx context.Context, jobID, userID string, filter BulkFilter, threshold float64) (progress jobProgress, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unexpected panic: %v", r)
		}
	}()

	transactions, err := s.transactions.FindForBulk(ctx, userID, repositories.BulkQuery{
		DateFrom:   filter.DateFrom,
		DateTo:     filter.DateTo,
		CategoryID: filter.CurrentCategoryID,
		Type:       filter.TransactionType,
	})
	if err != nil {
		return progress, err
	}

	for i := range transactions {
		tx := &transactions[i]
		updated, err := s.apply(ctx, userID, tx, threshold)
		if err != nil {
			return progress, fmt.Errorf("transaction %s: %w", tx.ID, err)
		}

		progress.processed++
		if updated {
			progress.updated++
			s.metrics.BulkTransactionOutcome(outcomeUpdated, 1)
		} else {
			progress.skipped++
			s.metrics.BulkTransactionOutcome(outcomeSkipped, 1)
		}

		snapshot := progress
		if _, err := s.store.Update(ctx, jobID, snapshot.apply); err != nil {
			return progress, fmt.Errorf("failed to record progress: %w", err)
		}
	}
	return progress, nil
}

// apply re-categorizes tx when the engine is confident enough and proposes a
// different, still existing category. It reports whether tx was changed.
func (s *bulkCategorizationService) apply(ctx context.Context, userID string, tx *models.Transaction, threshold float64) (bool, error) {
	amount := tx.Amount
	suggestion, err := s.engine.SuggestCategory(ctx, SuggestionInput{
		Description:     tx.Description,
		Amount:          &amount,
		TransactionType: tx.Type,
		UserID:          userID,
	})
	if err != nil {
		return false, err
	}
	if suggestion == nil || suggestion.Confidence < threshold || tx.HasCategory(suggestion.CategoryID) {
		return false, nil
	}

	category, err := s.categories.FindByID(ctx, suggestion.CategoryID)
	if err != nil {
		return false, err
	}
	if category == nil {
		return false, nil
	}

	if err := s.transactions.SaveCategory(ctx, tx.ID, category.ID); err != nil {
		return false, err
	}
	return true, nil
}

package services

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/rdd81/smart-budget-app/internal/logger"
	"github.com/rdd81/smart-budget-app/internal/metrics"
	"github.com/rdd81/smart-budget-app/internal/models"
	"github.com/rdd81/smart-budget-app/internal/repositories"
)

// feedbackService records suggestion outcomes off the request path.
type feedbackService struct {
	repo    repositories.FeedbackRepositoryInterface
	metrics metrics.Recorder
	log     *zap.SugaredLogger
	wg      sync.WaitGroup
}

// NewFeedbackService creates a new FeedbackServicer.
func NewFeedbackService(repo repositories.FeedbackRepositoryInterface, recorder metrics.Recorder) FeedbackServicer {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &feedbackService{
		repo:    repo,
		metrics: recorder,
		log:     logger.Named("feedback"),
	}
}

// RecordFeedback stores one feedback row on its own goroutine and database
// transaction. It returns immediately. Records without a user, transaction
// or actual category are ignored. Errors are logged but never propagate to
// the caller, and cancelling ctx does not abort a write already scheduled.
func (s *feedbackService) RecordFeedback(ctx context.Context, record FeedbackRecord) {
	if record.UserID == "" || record.TransactionID == "" || record.ActualCategoryID == "" {
		return
	}

	entry := &models.CategorizationFeedback{
		UserID:              record.UserID,
		Description:         record.Description,
		SuggestedCategoryID: record.SuggestedCategoryID,
		ActualCategoryID:    record.ActualCategoryID,
		TransactionID:       record.TransactionID,
	}
	writeCtx := context.WithoutCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		err := s.save(writeCtx, entry)
		s.metrics.FeedbackRecorded(err == nil)
		if err != nil {
			s.log.Errorw("failed to record categorization feedback",
				"error", err,
				"user_id", entry.UserID,
				"transaction_id", entry.TransactionID,
				"actual_category_id", entry.ActualCategoryID,
			)
		}
	}()
}

func (s *feedbackService) save(ctx context.Context, entry *models.CategorizationFeedback) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while saving feedback: %v", r)
		}
	}()
	return s.repo.Save(ctx, entry)
}

// Wait blocks until every scheduled write has finished.
func (s *feedbackService) Wait() {
	s.wg.Wait()
}

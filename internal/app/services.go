// Package app assembles repositories, services and the HTTP router.
package app

import (
	"gorm.io/gorm"

	"github.com/rdd81/smart-budget-app/internal/config"
	"github.com/rdd81/smart-budget-app/internal/jobs"
	"github.com/rdd81/smart-budget-app/internal/metrics"
	"github.com/rdd81/smart-budget-app/internal/repositories"
	"github.com/rdd81/smart-budget-app/internal/services"
)

// Services bundles every service the router needs.
type Services struct {
	Categorization services.CategorizationServicer
	Metrics        services.CategorizationMetricsServicer
	Bulk           services.BulkCategorizationServicer
	Feedback       services.FeedbackServicer
	Category       services.CategoryServicer
	Rule           services.RuleServicer
	Transaction    services.TransactionServicer
	Audit          services.AuditServicer
}

// NewServices builds the service graph on db. personal may be nil to disable
// the personalization cache.
func NewServices(
	db *gorm.DB,
	cfg *config.Config,
	store jobs.Store,
	recorder metrics.Recorder,
	personal *services.PersonalizationCache,
) *Services {
	if recorder == nil {
		recorder = metrics.Nop{}
	}

	categoryRepo := repositories.NewCategoryRepository(db)
	ruleRepo := repositories.NewRuleRepository(db)
	feedbackRepo := repositories.NewFeedbackRepository(db)
	transactionRepo := repositories.NewTransactionRepository(db)
	auditRepo := repositories.NewAuditRepository(db)

	audit := services.NewAuditService(auditRepo)
	feedback := services.NewFeedbackService(feedbackRepo, recorder)
	engine := services.NewCategorizationService(ruleRepo, categoryRepo, feedbackRepo, personal, recorder)

	bulk := services.NewBulkCategorizationService(engine, transactionRepo, categoryRepo, store,
		services.WithMaxWorkers(cfg.BulkMaxWorkers),
		services.WithDefaultThreshold(cfg.BulkDefaultConfidence),
		services.WithBulkAudit(audit),
		services.WithBulkMetrics(recorder),
	)

	return &Services{
		Categorization: engine,
		Metrics:        services.NewCategorizationMetricsService(feedbackRepo),
		Bulk:           bulk,
		Feedback:       feedback,
		Category:       services.NewCategoryService(categoryRepo),
		Rule:           services.NewRuleService(ruleRepo, categoryRepo),
		Transaction:    services.NewTransactionService(transactionRepo, categoryRepo, feedback, audit),
		Audit:          audit,
	}
}

// Wait blocks until background bulk jobs and feedback writes have drained.
func (s *Services) Wait() {
	s.Bulk.Wait()
	s.Feedback.Wait()
}

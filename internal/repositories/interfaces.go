package repositories

import (
	"context"
	"time"

	"github.com/rdd81/smart-budget-app/internal/models"
	"github.com/rdd81/smart-budget-app/internal/pagination"
)

// Lookups return (nil, nil) when the record does not exist; errors are
// reserved for store failures.

// CategoryCorrectionCount is one row of a user's feedback history grouped by
// the category they actually chose.
type CategoryCorrectionCount struct {
	// Category is nil when the corrected-to category has since been deleted.
	Category        *models.Category
	CorrectionCount int64
}

// FeedbackTotals aggregates feedback rows over a time window.
type FeedbackTotals struct {
	Total    int64
	Accepted int64
	Rejected int64
}

// CategoryFeedbackSummary aggregates feedback rows for one actual category.
type CategoryFeedbackSummary struct {
	CategoryID   string
	CategoryName string
	Total        int64
	Accepted     int64
	Rejected     int64
}

// TimeRange bounds a query on created_at. From is inclusive, To exclusive;
// nil leaves that side open.
type TimeRange struct {
	From *time.Time
	To   *time.Time
}

// BulkQuery selects the transactions a bulk job walks over.
type BulkQuery struct {
	DateFrom   *time.Time
	DateTo     *time.Time
	CategoryID *string
	Type       *models.TransactionType
}

// TransactionQuery holds optional list filters for a user's transactions.
type TransactionQuery struct {
	DateFrom   *time.Time
	DateTo     *time.Time
	Type       *models.TransactionType
	CategoryID *string
}

// RuleRepositoryInterface defines the contract for categorization rule storage.
type RuleRepositoryInterface interface {
	FindByTransactionType(ctx context.Context, transactionType models.TransactionType) ([]models.CategorizationRule, error)
	FindByID(ctx context.Context, id string) (*models.CategorizationRule, error)
	List(ctx context.Context, transactionType *models.TransactionType, page pagination.PageRequest) ([]models.CategorizationRule, int64, error)
	Create(ctx context.Context, rule *models.CategorizationRule) error
	Delete(ctx context.Context, rule *models.CategorizationRule) error
}

// CategoryRepositoryInterface defines the contract for category storage.
type CategoryRepositoryInterface interface {
	FindByID(ctx context.Context, id string) (*models.Category, error)
	FindByNameIgnoreCase(ctx context.Context, name string) (*models.Category, error)
	List(ctx context.Context, categoryType *models.CategoryType, page pagination.PageRequest) ([]models.Category, int64, error)
	Create(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, category *models.Category) error
}

// FeedbackRepositoryInterface defines the contract for categorization feedback storage.
type FeedbackRepositoryInterface interface {
	FindTopCorrectedCategories(ctx context.Context, userID, token string) ([]CategoryCorrectionCount, error)
	Save(ctx context.Context, feedback *models.CategorizationFeedback) error
	SummarizeTotals(ctx context.Context, window TimeRange) (FeedbackTotals, error)
	SummarizeByCategory(ctx context.Context, window TimeRange) ([]CategoryFeedbackSummary, error)
}

// TransactionRepositoryInterface defines the contract for transaction storage.
type TransactionRepositoryInterface interface {
	Create(ctx context.Context, transaction *models.Transaction) error
	FindByIDForUser(ctx context.Context, userID, id string) (*models.Transaction, error)
	Update(ctx context.Context, transaction *models.Transaction) error
	Delete(ctx context.Context, transaction *models.Transaction) error
	List(ctx context.Context, userID string, query TransactionQuery, page pagination.PageRequest) ([]models.Transaction, int64, error)
	FindForBulk(ctx context.Context, userID string, query BulkQuery) ([]models.Transaction, error)
	SaveCategory(ctx context.Context, transactionID, categoryID string) error
}

// AuditRepositoryInterface defines the contract for audit trail storage.
type AuditRepositoryInterface interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	ListByUser(ctx context.Context, userID string, limit int) ([]models.AuditLog, error)
}

package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rdd81/smart-budget-app/internal/jobs"
	"github.com/rdd81/smart-budget-app/internal/models"
	"github.com/rdd81/smart-budget-app/internal/pagination"
)

// CategorySuggestion is the engine's answer for one description.
type CategorySuggestion struct {
	CategoryID   string  `json:"category_id"`
	CategoryName string  `json:"category_name"`
	Confidence   float64 `json:"confidence"`
}

// SuggestionInput carries what is known about a transaction at suggestion time.
// Amount and UserID are optional; an empty TransactionType yields no suggestion.
type SuggestionInput struct {
	Description     string
	Amount          *decimal.Decimal
	TransactionType models.TransactionType
	UserID          string
}

// CategorizationServicer defines the contract for category suggestions.
type CategorizationServicer interface {
	SuggestCategory(ctx context.Context, input SuggestionInput) (*CategorySuggestion, error)
}

// BulkFilter narrows the transactions a bulk job visits.
type BulkFilter struct {
	DateFrom            *time.Time
	DateTo              *time.Time
	CurrentCategoryID   *string
	TransactionType     *models.TransactionType
	ConfidenceThreshold *float64
}

// BulkCategorizationServicer defines the contract for background re-categorization.
type BulkCategorizationServicer interface {
	StartJob(ctx context.Context, userID string, filter BulkFilter) (*jobs.BulkJob, error)
	GetJob(ctx context.Context, userID, jobID string) (*jobs.BulkJob, error)
	ListJobs(ctx context.Context, userID string) ([]*jobs.BulkJob, error)
	Wait()
}

// FeedbackRecord is one accepted or corrected suggestion.
type FeedbackRecord struct {
	UserID              string
	Description         string
	SuggestedCategoryID *string
	ActualCategoryID    string
	TransactionID       string
}

// FeedbackServicer records suggestion outcomes without blocking the caller.
type FeedbackServicer interface {
	RecordFeedback(ctx context.Context, record FeedbackRecord)
	Wait()
}

// CategoryBreakdown holds feedback statistics for one category.
type CategoryBreakdown struct {
	CategoryID   string  `json:"category_id"`
	CategoryName string  `json:"category_name"`
	Total        int64   `json:"total"`
	Accepted     int64   `json:"accepted"`
	Rejected     int64   `json:"rejected"`
	Accuracy     float64 `json:"accuracy"`
}

// CategorizationMetrics summarizes feedback over a date window.
type CategorizationMetrics struct {
	TotalSuggestions    int64               `json:"total_suggestions"`
	AcceptedSuggestions int64               `json:"accepted_suggestions"`
	RejectedSuggestions int64               `json:"rejected_suggestions"`
	Accuracy            float64             `json:"accuracy"`
	Breakdown           []CategoryBreakdown `json:"breakdown"`
}

// CategorizationMetricsServicer defines the contract for suggestion accuracy reporting.
type CategorizationMetricsServicer interface {
	GetMetrics(ctx context.Context, startDate, endDate *time.Time) (*CategorizationMetrics, error)
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(ctx context.Context, name string, categoryType models.CategoryType, description string) (*models.Category, error)
	GetCategories(ctx context.Context, categoryType *models.CategoryType, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoryByID(ctx context.Context, categoryID string) (*models.Category, error)
	DeleteCategory(ctx context.Context, categoryID string) error
}

// RuleServicer defines the contract for keyword rule administration.
type RuleServicer interface {
	CreateRule(ctx context.Context, keyword string, transactionType models.TransactionType, categoryID string) (*models.CategorizationRule, error)
	GetRules(ctx context.Context, transactionType *models.TransactionType, page pagination.PageRequest) (*pagination.PageResponse[models.CategorizationRule], error)
	DeleteRule(ctx context.Context, ruleID string) error
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate   *time.Time
	ToDate     *time.Time
	Type       *models.TransactionType
	CategoryID *string
}

// TransactionInput is the payload for creating or replacing a transaction.
// SuggestedCategoryID, when set, is what the engine proposed before the user
// chose CategoryID and drives feedback recording.
type TransactionInput struct {
	CategoryID          string
	SuggestedCategoryID *string
	Type                models.TransactionType
	Amount              decimal.Decimal
	Description         string
	Date                time.Time
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(ctx context.Context, userID string, input TransactionInput) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, userID, transactionID string, input TransactionInput) (*models.Transaction, error)
	GetUserTransactions(ctx context.Context, userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(ctx context.Context, userID, transactionID string) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, transactionID string) error
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}

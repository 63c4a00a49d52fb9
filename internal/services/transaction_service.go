package services

import (
	"context"
	"strings"
	"time"

	apperrors "github.com/rdd81/smart-budget-app/internal/errors"
	"github.com/rdd81/smart-budget-app/internal/models"
	"github.com/rdd81/smart-budget-app/internal/pagination"
	"github.com/rdd81/smart-budget-app/internal/repositories"
)

const maxDescriptionLength = 255

// transactionService handles transaction-related business logic.
type transactionService struct {
	transactions repositories.TransactionRepositoryInterface
	categories   repositories.CategoryRepositoryInterface
	feedback     FeedbackServicer
	audit        AuditServicer
	now          func() time.Time
}

// NewTransactionService creates a new TransactionServicer. Saving a
// transaction that carries a suggested category records feedback.
func NewTransactionService(
	transactions repositories.TransactionRepositoryInterface,
	categories repositories.CategoryRepositoryInterface,
	feedback FeedbackServicer,
	audit AuditServicer,
) TransactionServicer {
	return &transactionService{
		transactions: transactions,
		categories:   categories,
		feedback:     feedback,
		audit:        audit,
		now:          time.Now,
	}
}

// CreateTransaction creates a new transaction for a user
func (s *transactionService) CreateTransaction(ctx context.Context, userID string, input TransactionInput) (*models.Transaction, error) {
	category, err := s.validateInput(ctx, &input)
	if err != nil {
		return nil, err
	}

	transaction := &models.Transaction{
		UserID:      userID,
		CategoryID:  &category.ID,
		Type:        input.Type,
		Amount:      input.Amount,
		Description: input.Description,
		Date:        input.Date,
	}
	if err := s.transactions.Create(ctx, transaction); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	transaction.Category = category

	s.recordFeedback(ctx, userID, input, category, transaction)
	return transaction, nil
}

// UpdateTransaction replaces the editable fields of a user's transaction.
func (s *transactionService) UpdateTransaction(ctx context.Context, userID, transactionID string, input TransactionInput) (*models.Transaction, error) {
	transaction, err := s.GetTransactionByID(ctx, userID, transactionID)
	if err != nil {
		return nil, err
	}

	category, err := s.validateInput(ctx, &input)
	if err != nil {
		return nil, err
	}

	transaction.CategoryID = &category.ID
	transaction.Category = nil
	transaction.Type = input.Type
	transaction.Amount = input.Amount
	transaction.Description = input.Description
	transaction.Date = input.Date

	if err := s.transactions.Update(ctx, transaction); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	transaction.Category = category

	s.recordFeedback(ctx, userID, input, category, transaction)
	return transaction, nil
}

// GetUserTransactions retrieves a paginated, filtered list of transactions for a user.
func (s *transactionService) GetUserTransactions(ctx context.Context, userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	if filter.FromDate != nil && filter.ToDate != nil && filter.FromDate.After(*filter.ToDate) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "from_date must not be after to_date")
	}

	transactions, total, err := s.transactions.List(ctx, userID, repositories.TransactionQuery{
		DateFrom:   filter.FromDate,
		DateTo:     filter.ToDate,
		Type:       filter.Type,
		CategoryID: filter.CategoryID,
	}, page)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page, total)
	return &result, nil
}

// GetTransactionByID retrieves a transaction by ID for a specific user.
// Transactions of other users are reported as not found.
func (s *transactionService) GetTransactionByID(ctx context.Context, userID, transactionID string) (*models.Transaction, error) {
	transaction, err := s.transactions.FindByIDForUser(ctx, userID, transactionID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if transaction == nil {
		return nil, apperrors.ErrTransactionNotFound
	}
	return transaction, nil
}

// DeleteTransaction deletes a user's transaction
func (s *transactionService) DeleteTransaction(ctx context.Context, userID, transactionID string) error {
	transaction, err := s.GetTransactionByID(ctx, userID, transactionID)
	if err != nil {
		return err
	}
	if err := s.transactions.Delete(ctx, transaction); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if s.audit != nil {
		s.audit.Log(userID, "DELETE_TRANSACTION", "transaction", transactionID, "", map[string]interface{}{
			"amount":      transaction.Amount.String(),
			"type":        transaction.Type,
			"description": transaction.Description,
		})
	}
	return nil
}

// validateInput normalizes input in place and resolves its category.
func (s *transactionService) validateInput(ctx context.Context, input *TransactionInput) (*models.Category, error) {
	if !input.Type.Valid() {
		return nil, apperrors.ErrInvalidTransactionType
	}
	if !input.Amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	input.Description = strings.TrimSpace(input.Description)
	if len([]rune(input.Description)) > maxDescriptionLength {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "description cannot exceed 255 characters")
	}
	if input.Date.IsZero() {
		input.Date = s.now().UTC()
	}
	if input.Date.After(s.now()) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "transaction date cannot be in the future")
	}
	if input.CategoryID == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category ID is required")
	}

	category, err := s.categories.FindByID(ctx, input.CategoryID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if category == nil {
		return nil, apperrors.ErrCategoryNotFound
	}
	return category, nil
}

// recordFeedback hands the outcome of a suggestion to the feedback recorder
// when the client reported one. An unknown suggested category is recorded
// as no suggestion.
func (s *transactionService) recordFeedback(ctx context.Context, userID string, input TransactionInput, actual *models.Category, transaction *models.Transaction) {
	if s.feedback == nil || input.SuggestedCategoryID == nil {
		return
	}

	var suggestedID *string
	suggested, err := s.categories.FindByID(ctx, *input.SuggestedCategoryID)
	if err == nil && suggested != nil {
		suggestedID = &suggested.ID
	}

	s.feedback.RecordFeedback(ctx, FeedbackRecord{
		UserID:              userID,
		Description:         input.Description,
		SuggestedCategoryID: suggestedID,
		ActualCategoryID:    actual.ID,
		TransactionID:       transaction.ID,
	})
}

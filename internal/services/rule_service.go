package services

import (
	"context"
	"strings"

	apperrors "github.com/rdd81/smart-budget-app/internal/errors"
	"github.com/rdd81/smart-budget-app/internal/models"
	"github.com/rdd81/smart-budget-app/internal/pagination"
	"github.com/rdd81/smart-budget-app/internal/repositories"
)

// ruleService manages keyword categorization rules.
type ruleService struct {
	rules      repositories.RuleRepositoryInterface
	categories repositories.CategoryRepositoryInterface
}

// NewRuleService creates a new RuleServicer.
func NewRuleService(rules repositories.RuleRepositoryInterface, categories repositories.CategoryRepositoryInterface) RuleServicer {
	return &ruleService{rules: rules, categories: categories}
}

// CreateRule stores a keyword rule. The keyword is trimmed and lower-cased,
// and the target category must exist with a type matching transactionType.
func (s *ruleService) CreateRule(ctx context.Context, keyword string, transactionType models.TransactionType, categoryID string) (*models.CategorizationRule, error) {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "keyword is required")
	}
	if !transactionType.Valid() {
		return nil, apperrors.ErrInvalidTransactionType
	}

	category, err := s.categories.FindByID(ctx, categoryID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if category == nil {
		return nil, apperrors.ErrCategoryNotFound
	}
	if !category.Matches(transactionType) {
		return nil, apperrors.ErrRuleTypeMismatch
	}

	rule := &models.CategorizationRule{
		Keyword:         keyword,
		TransactionType: transactionType,
		CategoryID:      category.ID,
	}
	if err := s.rules.Create(ctx, rule); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	rule.Category = category
	return rule, nil
}

// GetRules retrieves a page of rules, optionally for one transaction type.
func (s *ruleService) GetRules(ctx context.Context, transactionType *models.TransactionType, page pagination.PageRequest) (*pagination.PageResponse[models.CategorizationRule], error) {
	page.Defaults()

	rules, total, err := s.rules.List(ctx, transactionType, page)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(rules, page, total)
	return &result, nil
}

// DeleteRule removes a rule.
func (s *ruleService) DeleteRule(ctx context.Context, ruleID string) error {
	rule, err := s.rules.FindByID(ctx, ruleID)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if rule == nil {
		return apperrors.ErrRuleNotFound
	}
	if err := s.rules.Delete(ctx, rule); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

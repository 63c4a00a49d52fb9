package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/rdd81/smart-budget-app/internal/models"
	"github.com/rdd81/smart-budget-app/internal/pagination"
)

type ruleRepository struct {
	db *gorm.DB
}

// NewRuleRepository creates a new categorization rule repository
func NewRuleRepository(db *gorm.DB) RuleRepositoryInterface {
	return &ruleRepository{db: db}
}

// FindByTransactionType returns every rule for the type with its category
// preloaded. Rules whose category was deleted come back with a nil Category.
func (r *ruleRepository) FindByTransactionType(ctx context.Context, transactionType models.TransactionType) ([]models.CategorizationRule, error) {
	var rules []models.CategorizationRule
	if err := r.db.WithContext(ctx).
		Preload("Category").
		Where("transaction_type = ?", transactionType).
		Order("created_at ASC").
		Find(&rules).Error; err != nil {
		return nil, fmt.Errorf("failed to get rules for %s: %w", transactionType, err)
	}
	return rules, nil
}

func (r *ruleRepository) FindByID(ctx context.Context, id string) (*models.CategorizationRule, error) {
	var rule models.CategorizationRule
	if err := r.db.WithContext(ctx).Preload("Category").Where("id = ?", id).First(&rule).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get rule: %w", err)
	}
	return &rule, nil
}

func (r *ruleRepository) List(ctx context.Context, transactionType *models.TransactionType, page pagination.PageRequest) ([]models.CategorizationRule, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.CategorizationRule{})
	if transactionType != nil {
		base = base.Where("transaction_type = ?", *transactionType)
	}
	base = base.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count rules: %w", err)
	}

	var rules []models.CategorizationRule
	if err := base.Preload("Category").
		Order("keyword ASC").
		Scopes(pagination.Paginate(page)).
		Find(&rules).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list rules: %w", err)
	}
	return rules, total, nil
}

func (r *ruleRepository) Create(ctx context.Context, rule *models.CategorizationRule) error {
	if err := r.db.WithContext(ctx).Create(rule).Error; err != nil {
		return fmt.Errorf("failed to create rule: %w", err)
	}
	return nil
}

func (r *ruleRepository) Delete(ctx context.Context, rule *models.CategorizationRule) error {
	if err := r.db.WithContext(ctx).Delete(rule).Error; err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}
	return nil
}

package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/rdd81/smart-budget-app/internal/models"
	"github.com/rdd81/smart-budget-app/internal/pagination"
)

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *gorm.DB) TransactionRepositoryInterface {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, transaction *models.Transaction) error {
	if err := r.db.WithContext(ctx).Create(transaction).Error; err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// FindByIDForUser returns the transaction only when it belongs to userID.
func (r *transactionRepository) FindByIDForUser(ctx context.Context, userID, id string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := r.db.WithContext(ctx).
		Preload("Category").
		Where("id = ? AND user_id = ?", id, userID).
		First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &transaction, nil
}

func (r *transactionRepository) Update(ctx context.Context, transaction *models.Transaction) error {
	if err := r.db.WithContext(ctx).
		Model(transaction).
		Select("category_id", "type", "amount", "description", "date").
		Updates(transaction).Error; err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	return nil
}

func (r *transactionRepository) Delete(ctx context.Context, transaction *models.Transaction) error {
	if err := r.db.WithContext(ctx).Delete(transaction).Error; err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return nil
}

// List returns one page of the user's transactions, newest first.
func (r *transactionRepository) List(ctx context.Context, userID string, query TransactionQuery, page pagination.PageRequest) ([]models.Transaction, int64, error) {
	base := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("user_id = ?", userID).
		Scopes(applyTransactionQuery(query)).
		Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	var transactions []models.Transaction
	if err := base.Preload("Category").
		Order("date DESC, id DESC").
		Scopes(pagination.Paginate(page)).
		Find(&transactions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}
	return transactions, total, nil
}

// FindForBulk returns every transaction of the user matching query, oldest first.
func (r *transactionRepository) FindForBulk(ctx context.Context, userID string, query BulkQuery) ([]models.Transaction, error) {
	var transactions []models.Transaction
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Scopes(applyTransactionQuery(TransactionQuery{
			DateFrom:   query.DateFrom,
			DateTo:     query.DateTo,
			Type:       query.Type,
			CategoryID: query.CategoryID,
		})).
		Order("date ASC, id ASC").
		Find(&transactions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions for bulk categorization: %w", err)
	}
	return transactions, nil
}

// SaveCategory sets category_id on a single transaction.
func (r *transactionRepository) SaveCategory(ctx context.Context, transactionID, categoryID string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("id = ?", transactionID).
		Update("category_id", categoryID)
	if result.Error != nil {
		return fmt.Errorf("failed to update transaction category: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("transaction %s no longer exists", transactionID)
	}
	return nil
}

func applyTransactionQuery(query TransactionQuery) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if query.DateFrom != nil {
			db = db.Where("date >= ?", *query.DateFrom)
		}
		if query.DateTo != nil {
			db = db.Where("date <= ?", *query.DateTo)
		}
		if query.Type != nil {
			db = db.Where("type = ?", *query.Type)
		}
		if query.CategoryID != nil {
			db = db.Where("category_id = ?", *query.CategoryID)
		}
		return db
	}
}

package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rdd81/smart-budget-app/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	user := &models.User{
		Email:     fmt.Sprintf("user%d@test.com", nextID()),
		FirstName: "Test",
		LastName:  "User",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestCategory creates a category with a unique name.
func CreateTestCategory(t *testing.T, db *gorm.DB, categoryType models.CategoryType) *models.Category {
	t.Helper()
	return CreateTestCategoryWithName(t, db, fmt.Sprintf("Test Category %d", nextID()), categoryType)
}

// CreateTestCategoryWithName creates a category with the given name.
func CreateTestCategoryWithName(t *testing.T, db *gorm.DB, name string, categoryType models.CategoryType) *models.Category {
	t.Helper()

	category := &models.Category{
		Name:        name,
		Type:        categoryType,
		Description: "Test category",
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestRule creates a keyword rule pointing at categoryID.
func CreateTestRule(t *testing.T, db *gorm.DB, keyword string, transactionType models.TransactionType, categoryID string) *models.CategorizationRule {
	t.Helper()

	rule := &models.CategorizationRule{
		Keyword:         keyword,
		TransactionType: transactionType,
		CategoryID:      categoryID,
	}
	if err := db.Create(rule).Error; err != nil {
		t.Fatalf("failed to create test rule: %v", err)
	}
	return rule
}

// CreateTestTransaction creates a transaction for userID. categoryID may be nil.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID string, categoryID *string, transactionType models.TransactionType, amount string, description string) *models.Transaction {
	t.Helper()
	return CreateTestTransactionOn(t, db, userID, categoryID, transactionType, amount, description, time.Now().UTC())
}

// CreateTestTransactionOn is CreateTestTransaction with an explicit date.
func CreateTestTransactionOn(t *testing.T, db *gorm.DB, userID string, categoryID *string, transactionType models.TransactionType, amount string, description string, date time.Time) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:      userID,
		CategoryID:  categoryID,
		Type:        transactionType,
		Amount:      decimal.RequireFromString(amount),
		Description: description,
		Date:        date,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestFeedback records count feedback rows for userID with the given
// description and actual category.
func CreateTestFeedback(t *testing.T, db *gorm.DB, userID, description string, suggestedCategoryID *string, actualCategoryID string, count int) []models.CategorizationFeedback {
	t.Helper()

	rows := make([]models.CategorizationFeedback, 0, count)
	for i := 0; i < count; i++ {
		fb := models.CategorizationFeedback{
			UserID:              userID,
			Description:         description,
			SuggestedCategoryID: suggestedCategoryID,
			ActualCategoryID:    actualCategoryID,
			TransactionID:       fmt.Sprintf("00000000-0000-7000-8000-%012d", nextID()),
		}
		if err := db.Create(&fb).Error; err != nil {
			t.Fatalf("failed to create test feedback: %v", err)
		}
		rows = append(rows, fb)
	}
	return rows
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}

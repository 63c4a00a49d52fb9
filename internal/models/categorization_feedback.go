package models

import (
	"time"

	"github.com/rdd81/smart-budget-app/internal/uuid"

	"gorm.io/gorm"
)

// CategorizationFeedback records what the engine suggested for a transaction
// and what the user actually chose. Rows are append-only.
type CategorizationFeedback struct {
	ID                  string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID              string    `gorm:"type:uuid;not null;index" json:"user_id"`
	Description         string    `gorm:"size:500" json:"description"`
	SuggestedCategoryID *string   `gorm:"type:uuid" json:"suggested_category_id,omitempty"`
	ActualCategoryID    string    `gorm:"type:uuid;not null;index" json:"actual_category_id"`
	TransactionID       string    `gorm:"type:uuid;not null" json:"transaction_id"`
	CreatedAt           time.Time `gorm:"index" json:"created_at"`

	SuggestedCategory *Category `gorm:"foreignKey:SuggestedCategoryID" json:"suggested_category,omitempty"`
	ActualCategory    *Category `gorm:"foreignKey:ActualCategoryID" json:"actual_category,omitempty"`
}

// TableName pins the table name used by migrations and raw queries.
func (CategorizationFeedback) TableName() string {
	return "categorization_feedback"
}

// BeforeCreate assigns a UUIDv7 when the caller did not.
func (f *CategorizationFeedback) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.New()
	}
	return nil
}

// Accepted reports whether the user kept the suggested category.
func (f *CategorizationFeedback) Accepted() bool {
	return f.SuggestedCategoryID != nil && *f.SuggestedCategoryID == f.ActualCategoryID
}

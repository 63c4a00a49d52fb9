package models

// CategorizationRule maps a keyword found in a transaction description to a
// category, scoped to one transaction type.
type CategorizationRule struct {
	Base
	Keyword         string          `gorm:"not null" json:"keyword"`
	TransactionType TransactionType `gorm:"not null;index" json:"transaction_type"`
	CategoryID      string          `gorm:"type:uuid;not null" json:"category_id"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

package models

// CategoryType represents the type of category
type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "income"
	CategoryTypeExpense CategoryType = "expense"
)

// Category is a shared, operator-maintained transaction category.
type Category struct {
	Base
	Name        string       `gorm:"not null;uniqueIndex" json:"name"`
	Type        CategoryType `gorm:"not null;index" json:"type"`
	Description string       `json:"description"`
}

// Matches reports whether the category can hold transactions of type t.
func (c *Category) Matches(t TransactionType) bool {
	return string(c.Type) == string(t)
}

package repositories

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/rdd81/smart-budget-app/internal/models"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type feedbackRepository struct {
	db *gorm.DB
}

// NewFeedbackRepository creates a new categorization feedback repository
func NewFeedbackRepository(db *gorm.DB) FeedbackRepositoryInterface {
	return &feedbackRepository{db: db}
}

type correctionRow struct {
	ActualCategoryID string
	CorrectionCount  int64
}

// FindTopCorrectedCategories groups the user's feedback whose description
// contains token (case-insensitive) by the category actually chosen, most
// frequent first. Ties are ordered by category ID. Groups whose category no
// longer exists are dropped.
func (r *feedbackRepository) FindTopCorrectedCategories(ctx context.Context, userID, token string) ([]CategoryCorrectionCount, error) {
	pattern := "%" + likeEscaper.Replace(strings.ToLower(token)) + "%"

	var rows []correctionRow
	if err := r.db.WithContext(ctx).
		Model(&models.CategorizationFeedback{}).
		Select("actual_category_id, COUNT(id) AS correction_count").
		Where("user_id = ? AND LOWER(description) LIKE ? ESCAPE '\\'", userID, pattern).
		Group("actual_category_id").
		Order("correction_count DESC, actual_category_id ASC").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate feedback: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ActualCategoryID)
	}
	var categories []models.Category
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to load corrected categories: %w", err)
	}
	byID := make(map[string]models.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	result := make([]CategoryCorrectionCount, 0, len(rows))
	for _, row := range rows {
		entry := CategoryCorrectionCount{CorrectionCount: row.CorrectionCount}
		if category, ok := byID[row.ActualCategoryID]; ok {
			entry.Category = &category
		}
		result = append(result, entry)
	}
	return result, nil
}

// Save inserts one feedback row inside its own database transaction.
func (r *feedbackRepository) Save(ctx context.Context, feedback *models.CategorizationFeedback) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(feedback).Error; err != nil {
			return fmt.Errorf("failed to save feedback: %w", err)
		}
		return nil
	})
}

const (
	acceptedExpr = "SUM(CASE WHEN suggested_category_id = actual_category_id THEN 1 ELSE 0 END)"
	rejectedExpr = "SUM(CASE WHEN suggested_category_id <> actual_category_id THEN 1 ELSE 0 END)"
)

func (r *feedbackRepository) SummarizeTotals(ctx context.Context, window TimeRange) (FeedbackTotals, error) {
	var row struct {
		Total    int64
		Accepted *int64
		Rejected *int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.CategorizationFeedback{}).
		Select("COUNT(id) AS total, " + acceptedExpr + " AS accepted, " + rejectedExpr + " AS rejected").
		Scopes(createdWithin(window)).
		Scan(&row).Error
	if err != nil {
		return FeedbackTotals{}, fmt.Errorf("failed to summarize feedback: %w", err)
	}
	return FeedbackTotals{Total: row.Total, Accepted: deref(row.Accepted), Rejected: deref(row.Rejected)}, nil
}

// SummarizeByCategory breaks feedback down by the category actually chosen,
// largest groups first.
func (r *feedbackRepository) SummarizeByCategory(ctx context.Context, window TimeRange) ([]CategoryFeedbackSummary, error) {
	var rows []struct {
		CategoryID   string
		CategoryName string
		Total        int64
		Accepted     *int64
		Rejected     *int64
	}
	err := r.db.WithContext(ctx).
		Table("categorization_feedback AS f").
		Select("f.actual_category_id AS category_id, c.name AS category_name, COUNT(f.id) AS total, " +
			acceptedExpr + " AS accepted, " +
			rejectedExpr + " AS rejected").
		Joins("JOIN categories c ON c.id = f.actual_category_id").
		Scopes(createdWithinColumn("f.created_at", window)).
		Group("f.actual_category_id, c.name").
		Order("total DESC, c.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to summarize feedback by category: %w", err)
	}

	result := make([]CategoryFeedbackSummary, 0, len(rows))
	for _, row := range rows {
		result = append(result, CategoryFeedbackSummary{
			CategoryID:   row.CategoryID,
			CategoryName: row.CategoryName,
			Total:        row.Total,
			Accepted:     deref(row.Accepted),
			Rejected:     deref(row.Rejected),
		})
	}
	return result, nil
}

func createdWithin(window TimeRange) func(*gorm.DB) *gorm.DB {
	return createdWithinColumn("created_at", window)
}

func createdWithinColumn(column string, window TimeRange) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if window.From != nil {
			db = db.Where(column+" >= ?", *window.From)
		}
		if window.To != nil {
			db = db.Where(column+" < ?", *window.To)
		}
		return db
	}
}

func deref(n *int64) int64 {
	if n == nil {
		return 0
	}
	return *n
}

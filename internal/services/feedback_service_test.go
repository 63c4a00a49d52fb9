package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rdd81/smart-budget-app/internal/models"
	"github.com/rdd81/smart-budget-app/internal/repositories"
	"github.com/rdd81/smart-budget-app/internal/testutil"
	"github.com/rdd81/smart-budget-app/internal/uuid"
)

func TestFeedbackService_RecordFeedback(t *testing.T) {
	t.Run("persists accepted and corrected suggestions", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		user := testutil.CreateTestUser(t, db)
		food := testutil.CreateTestCategoryWithName(t, db, "Food", models.CategoryTypeExpense)
		dining := testutil.CreateTestCategoryWithName(t, db, "Dining", models.CategoryTypeExpense)

		svc := NewFeedbackService(repositories.NewFeedbackRepository(db), nil)
		svc.RecordFeedback(context.Background(), FeedbackRecord{
			UserID: user.ID, Description: "Starbucks", SuggestedCategoryID: &food.ID,
			ActualCategoryID: food.ID, TransactionID: uuid.New(),
		})
		svc.RecordFeedback(context.Background(), FeedbackRecord{
			UserID: user.ID, Description: "Starbucks", SuggestedCategoryID: &food.ID,
			ActualCategoryID: dining.ID, TransactionID: uuid.New(),
		})
		svc.Wait()

		var rows []models.CategorizationFeedback
		require.NoError(t, db.Order("created_at").Find(&rows).Error)
		require.Len(t, rows, 2)
		accepted := 0
		for _, row := range rows {
			assert.Equal(t, user.ID, row.UserID)
			assert.NotEmpty(t, row.ID)
			if row.Accepted() {
				accepted++
			}
		}
		assert.Equal(t, 1, accepted)
	})

	t.Run("ignores incomplete records", func(t *testing.T) {
		repo := &stubFeedbackRepo{}
		svc := NewFeedbackService(repo, nil)
		svc.RecordFeedback(context.Background(), FeedbackRecord{ActualCategoryID: "c", TransactionID: "t"})
		svc.RecordFeedback(context.Background(), FeedbackRecord{UserID: "u", TransactionID: "t"})
		svc.RecordFeedback(context.Background(), FeedbackRecord{UserID: "u", ActualCategoryID: "c"})
		svc.Wait()
		assert.Equal(t, 0, repo.savedCount())
	})

	t.Run("survives a cancelled request context", func(t *testing.T) {
		repo := &stubFeedbackRepo{}
		svc := NewFeedbackService(repo, nil)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		svc.RecordFeedback(ctx, FeedbackRecord{UserID: "u", ActualCategoryID: "c", TransactionID: "t"})
		svc.Wait()
		assert.Equal(t, 1, repo.savedCount())
	})

	t.Run("store errors are swallowed", func(t *testing.T) {
		repo := &stubFeedbackRepo{saveErr: errStore}
		svc := NewFeedbackService(repo, nil)
		assert.NotPanics(t, func() {
			svc.RecordFeedback(context.Background(), FeedbackRecord{UserID: "u", ActualCategoryID: "c", TransactionID: "t"})
			svc.Wait()
		})
		assert.Equal(t, 0, repo.savedCount())
	})

	t.Run("panics are contained", func(t *testing.T) {
		repo := &stubFeedbackRepo{panicOn: true}
		svc := NewFeedbackService(repo, nil)
		assert.NotPanics(t, func() {
			svc.RecordFeedback(context.Background(), FeedbackRecord{UserID: "u", ActualCategoryID: "c", TransactionID: "t"})
			svc.Wait()
		})
	})
}

func TestFeedbackService_FeedsPersonalization(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	user := testutil.CreateTestUser(t, db)
	food := testutil.CreateTestCategoryWithName(t, db, "Food", models.CategoryTypeExpense)
	dining := testutil.CreateTestCategoryWithName(t, db, "Dining", models.CategoryTypeExpense)
	testutil.CreateTestRule(t, db, "starbucks", models.TransactionTypeExpense, food.ID)

	feedback := NewFeedbackService(repositories.NewFeedbackRepository(db), nil)
	engine := newEngine(db, nil)
	input := SuggestionInput{Description: "Starbucks Reserve", TransactionType: models.TransactionTypeExpense, UserID: user.ID}

	for i := 0; i < PersonalizationThreshold; i++ {
		before, err := engine.SuggestCategory(context.Background(), input)
		require.NoError(t, err)
		require.NotNil(t, before)
		assert.Equal(t, food.ID, before.CategoryID, "correction %d", i)

		feedback.RecordFeedback(context.Background(), FeedbackRecord{
			UserID: user.ID, Description: "Starbucks Reserve", SuggestedCategoryID: &before.CategoryID,
			ActualCategoryID: dining.ID, TransactionID: uuid.New(),
		})
		feedback.Wait()
	}

	after, err := engine.SuggestCategory(context.Background(), input)
	require.NoError(t, err)
	require.NotNil(t, after)
	assert.Equal(t, dining.ID, after.CategoryID)
	assert.Equal(t, PersonalizedConfidence, after.Confidence)
}

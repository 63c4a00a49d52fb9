package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rdd81/smart-budget-app/internal/models"
	"github.com/rdd81/smart-budget-app/internal/pagination"
	"github.com/rdd81/smart-budget-app/internal/repositories"
	"github.com/rdd81/smart-budget-app/internal/testutil"
	"github.com/rdd81/smart-budget-app/internal/uuid"
)

func TestCategoryService(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewCategoryService(repositories.NewCategoryRepository(db))
	ctx := context.Background()

	t.Run("create trims input", func(t *testing.T) {
		category, err := svc.CreateCategory(ctx, "  Groceries ", models.CategoryTypeExpense, " weekly shop ")
		testutil.AssertNoError(t, err)
		assert.Equal(t, "Groceries", category.Name)
		assert.Equal(t, "weekly shop", category.Description)
		assert.NotEmpty(t, category.ID)
	})

	t.Run("duplicate names ignore case", func(t *testing.T) {
		_, err := svc.CreateCategory(ctx, "GROCERIES", models.CategoryTypeExpense, "")
		testutil.AssertAppError(t, err, "DUPLICATE_CATEGORY")
	})

	t.Run("validation", func(t *testing.T) {
		_, err := svc.CreateCategory(ctx, "  ", models.CategoryTypeExpense, "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
		_, err = svc.CreateCategory(ctx, "Gifts", models.CategoryType("transfer"), "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("list filters by type", func(t *testing.T) {
		_, err := svc.CreateCategory(ctx, "Salary", models.CategoryTypeIncome, "")
		require.NoError(t, err)

		income := models.CategoryTypeIncome
		page, err := svc.GetCategories(ctx, &income, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		require.Len(t, page.Data, 1)
		assert.Equal(t, "Salary", page.Data[0].Name)
		assert.Equal(t, int64(1), page.TotalItems)

		all, err := svc.GetCategories(ctx, nil, pagination.PageRequest{Page: 1, PageSize: 1})
		testutil.AssertNoError(t, err)
		assert.Len(t, all.Data, 1)
		assert.Equal(t, int64(2), all.TotalItems)
		assert.True(t, all.HasNext)
	})

	t.Run("get and delete", func(t *testing.T) {
		category, err := svc.CreateCategory(ctx, "Temporary", models.CategoryTypeExpense, "")
		require.NoError(t, err)

		found, err := svc.GetCategoryByID(ctx, category.ID)
		testutil.AssertNoError(t, err)
		assert.Equal(t, "Temporary", found.Name)

		testutil.AssertNoError(t, svc.DeleteCategory(ctx, category.ID))
		_, err = svc.GetCategoryByID(ctx, category.ID)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
		testutil.AssertAppError(t, svc.DeleteCategory(ctx, uuid.New()), "CATEGORY_NOT_FOUND")
	})

	t.Run("store failure", func(t *testing.T) {
		broken := NewCategoryService(&stubCategoryRepo{err: errStore})
		_, err := broken.GetCategoryByID(ctx, uuid.New())
		testutil.AssertAppError(t, err, "INTERNAL_ERROR")
	})
}

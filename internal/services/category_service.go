package services

import (
	"context"
	"strings"

	apperrors "github.com/rdd81/smart-budget-app/internal/errors"
	"github.com/rdd81/smart-budget-app/internal/models"
	"github.com/rdd81/smart-budget-app/internal/pagination"
	"github.com/rdd81/smart-budget-app/internal/repositories"
)

// categoryService handles category-related business logic.
type categoryService struct {
	categories repositories.CategoryRepositoryInterface
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(categories repositories.CategoryRepositoryInterface) CategoryServicer {
	return &categoryService{categories: categories}
}

// CreateCategory creates a new shared category. Names are unique ignoring case.
func (s *categoryService) CreateCategory(ctx context.Context, name string, categoryType models.CategoryType, description string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}
	if categoryType != models.CategoryTypeIncome && categoryType != models.CategoryTypeExpense {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category type must be income or expense")
	}

	existing, err := s.categories.FindByNameIgnoreCase(ctx, name)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if existing != nil {
		return nil, apperrors.ErrDuplicateCategory
	}

	category := &models.Category{
		Name:        name,
		Type:        categoryType,
		Description: strings.TrimSpace(description),
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return category, nil
}

// GetCategories retrieves a page of categories, optionally of one type.
func (s *categoryService) GetCategories(ctx context.Context, categoryType *models.CategoryType, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
	page.Defaults()

	categories, total, err := s.categories.List(ctx, categoryType, page)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(categories, page, total)
	return &result, nil
}

// GetCategoryByID retrieves a category by ID
func (s *categoryService) GetCategoryByID(ctx context.Context, categoryID string) (*models.Category, error) {
	category, err := s.categories.FindByID(ctx, categoryID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if category == nil {
		return nil, apperrors.ErrCategoryNotFound
	}
	return category, nil
}

// DeleteCategory soft-deletes a category. Existing transactions keep their
// category_id for historical records; rules pointing at it stop matching.
func (s *categoryService) DeleteCategory(ctx context.Context, categoryID string) error {
	category, err := s.GetCategoryByID(ctx, categoryID)
	if err != nil {
		return err
	}
	if err := s.categories.Delete(ctx, category); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

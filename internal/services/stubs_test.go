package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rdd81/smart-budget-app/internal/models"
	"github.com/rdd81/smart-budget-app/internal/pagination"
	"github.com/rdd81/smart-budget-app/internal/repositories"
)

var errStore = errors.New("store unavailable")

// stubRuleRepo serves a fixed rule list.
type stubRuleRepo struct {
	rules []models.CategorizationRule
	err   error
	calls int
}

func (s *stubRuleRepo) FindByTransactionType(_ context.Context, t models.TransactionType) ([]models.CategorizationRule, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	var out []models.CategorizationRule
	for _, r := range s.rules {
		if r.TransactionType == t {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *stubRuleRepo) FindByID(context.Context, string) (*models.CategorizationRule, error) {
	return nil, nil
}

func (s *stubRuleRepo) List(context.Context, *models.TransactionType, pagination.PageRequest) ([]models.CategorizationRule, int64, error) {
	return s.rules, int64(len(s.rules)), nil
}

func (s *stubRuleRepo) Create(context.Context, *models.CategorizationRule) error { return nil }

func (s *stubRuleRepo) Delete(context.Context, *models.CategorizationRule) error { return nil }

// stubCategoryRepo looks categories up in memory.
type stubCategoryRepo struct {
	mu         sync.Mutex
	categories []models.Category
	err        error
}

func (s *stubCategoryRepo) FindByID(_ context.Context, id string) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	for i := range s.categories {
		if s.categories[i].ID == id {
			c := s.categories[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (s *stubCategoryRepo) FindByNameIgnoreCase(_ context.Context, name string) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	for i := range s.categories {
		if strings.EqualFold(s.categories[i].Name, name) {
			c := s.categories[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (s *stubCategoryRepo) List(context.Context, *models.CategoryType, pagination.PageRequest) ([]models.Category, int64, error) {
	return s.categories, int64(len(s.categories)), nil
}

func (s *stubCategoryRepo) Create(context.Context, *models.Category) error { return nil }

func (s *stubCategoryRepo) Delete(context.Context, *models.Category) error { return nil }

// stubFeedbackRepo returns canned correction counts and captures saves.
type stubFeedbackRepo struct {
	mu      sync.Mutex
	counts  []repositories.CategoryCorrectionCount
	err     error
	saveErr error
	panicOn bool
	lookups int
	saved   []models.CategorizationFeedback
}

func (s *stubFeedbackRepo) FindTopCorrectedCategories(context.Context, string, string) ([]repositories.CategoryCorrectionCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups++
	return s.counts, s.err
}

func (s *stubFeedbackRepo) Save(_ context.Context, fb *models.CategorizationFeedback) error {
	if s.panicOn {
		panic("boom")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, *fb)
	return nil
}

func (s *stubFeedbackRepo) SummarizeTotals(context.Context, repositories.TimeRange) (repositories.FeedbackTotals, error) {
	return repositories.FeedbackTotals{}, s.err
}

func (s *stubFeedbackRepo) SummarizeByCategory(context.Context, repositories.TimeRange) ([]repositories.CategoryFeedbackSummary, error) {
	return nil, s.err
}

func (s *stubFeedbackRepo) savedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saved)
}

// stubEngine returns a fixed answer or runs fn.
type stubEngine struct {
	fn func(SuggestionInput) (*CategorySuggestion, error)
}

func (s *stubEngine) SuggestCategory(_ context.Context, input SuggestionInput) (*CategorySuggestion, error) {
	return s.fn(input)
}

// stubTransactionRepo feeds bulk jobs from memory.
type stubTransactionRepo struct {
	mu           sync.Mutex
	transactions []models.Transaction
	findErr      error
	saveErr      error
	saves        map[string]string
	block        chan struct{}
}

func (s *stubTransactionRepo) Create(context.Context, *models.Transaction) error { return nil }

func (s *stubTransactionRepo) FindByIDForUser(context.Context, string, string) (*models.Transaction, error) {
	return nil, nil
}

func (s *stubTransactionRepo) Update(context.Context, *models.Transaction) error { return nil }

func (s *stubTransactionRepo) Delete(context.Context, *models.Transaction) error { return nil }

func (s *stubTransactionRepo) List(context.Context, string, repositories.TransactionQuery, pagination.PageRequest) ([]models.Transaction, int64, error) {
	return nil, 0, nil
}

func (s *stubTransactionRepo) FindForBulk(context.Context, string, repositories.BulkQuery) ([]models.Transaction, error) {
	if s.block != nil {
		<-s.block
	}
	if s.findErr != nil {
		return nil, s.findErr
	}
	return append([]models.Transaction(nil), s.transactions...), nil
}

func (s *stubTransactionRepo) SaveCategory(_ context.Context, transactionID, categoryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	if s.saves == nil {
		s.saves = make(map[string]string)
	}
	s.saves[transactionID] = categoryID
	return nil
}

var (
	_ repositories.RuleRepositoryInterface        = (*stubRuleRepo)(nil)
	_ repositories.CategoryRepositoryInterface    = (*stubCategoryRepo)(nil)
	_ repositories.FeedbackRepositoryInterface    = (*stubFeedbackRepo)(nil)
	_ repositories.TransactionRepositoryInterface = (*stubTransactionRepo)(nil)
	_ CategorizationServicer                      = (*stubEngine)(nil)
)

package services

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rdd81/smart-budget-app/internal/cache"
	apperrors "github.com/rdd81/smart-budget-app/internal/errors"
	"github.com/rdd81/smart-budget-app/internal/logger"
	"github.com/rdd81/smart-budget-app/internal/metrics"
	"github.com/rdd81/smart-budget-app/internal/models"
	"github.com/rdd81/smart-budget-app/internal/repositories"
	"github.com/rdd81/smart-budget-app/internal/textmatch"
)

// Confidence assigned to each evidence source.
const (
	PersonalizedConfidence    = 0.95
	ExactMatchConfidence      = 0.9
	PartialMatchConfidence    = 0.6
	AmountHeuristicConfidence = 0.4

	// MinConfidenceThreshold is the floor below which no suggestion is made.
	// Every current source scores at least 0.4.
	MinConfidenceThreshold = 0.3

	// PersonalizationThreshold is the number of past corrections needed before
	// a user's own history overrides rules.
	PersonalizationThreshold = 3
)

var (
	largeAmountThreshold = decimal.NewFromInt(1000)
	smallAmountThreshold = decimal.NewFromInt(10)
)

// PersonalizationCache holds positive personalization lookups keyed by "userID:token".
type PersonalizationCache = cache.TTLCache[string, models.Category]

// candidate is one (category, confidence) pair proposed by an evidence source.
type candidate struct {
	category   models.Category
	confidence float64
	source     string
}

// categorizationService scores categories for a description.
type categorizationService struct {
	rules      repositories.RuleRepositoryInterface
	categories repositories.CategoryRepositoryInterface
	feedback   repositories.FeedbackRepositoryInterface
	cache      *PersonalizationCache
	metrics    metrics.Recorder
	log        *zap.SugaredLogger
}

// NewCategorizationService creates a new CategorizationServicer. personal may
// be nil to disable caching; recorder may be nil to disable metrics.
func NewCategorizationService(
	rules repositories.RuleRepositoryInterface,
	categories repositories.CategoryRepositoryInterface,
	feedback repositories.FeedbackRepositoryInterface,
	personal *PersonalizationCache,
	recorder metrics.Recorder,
) CategorizationServicer {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &categorizationService{
		rules:      rules,
		categories: categories,
		feedback:   feedback,
		cache:      personal,
		metrics:    recorder,
		log:        logger.Named("categorization"),
	}
}

// SuggestCategory returns the best category for input, or nil when no
// source produces a candidate. Store failures are returned as internal errors.
func (s *categorizationService) SuggestCategory(ctx context.Context, input SuggestionInput) (*CategorySuggestion, error) {
	if input.TransactionType == "" {
		s.metrics.SuggestionServed(metrics.SourceNone)
		return nil, nil
	}

	var best *candidate

	personalized, err := s.personalizedCandidate(ctx, input.UserID, input.Description)
	if err != nil {
		return nil, err
	}
	best = pickBetter(best, personalized)

	ruleCandidates, err := s.ruleCandidates(ctx, input.Description, input.TransactionType)
	if err != nil {
		return nil, err
	}
	for _, c := range ruleCandidates {
		best = pickBetter(best, c)
	}

	heuristic, err := s.amountHeuristic(ctx, input.Amount, input.TransactionType)
	if err != nil {
		return nil, err
	}
	best = pickBetter(best, heuristic)

	if best == nil || best.confidence < MinConfidenceThreshold {
		s.metrics.SuggestionServed(metrics.SourceNone)
		return nil, nil
	}

	s.metrics.SuggestionServed(best.source)
	return &CategorySuggestion{
		CategoryID:   best.category.ID,
		CategoryName: best.category.Name,
		Confidence:   best.confidence,
	}, nil
}

func (s *categorizationService) personalizedCandidate(ctx context.Context, userID, description string) (*candidate, error) {
	if userID == "" {
		return nil, nil
	}
	token := textmatch.LeadingToken(description)
	if token == "" {
		return nil, nil
	}

	key := userID + ":" + token
	if s.cache != nil {
		if category, ok := s.cache.Get(key); ok {
			s.metrics.PersonalizationCacheLookup(true)
			return &candidate{category: category, confidence: PersonalizedConfidence, source: metrics.SourcePersonalized}, nil
		}
		s.metrics.PersonalizationCacheLookup(false)
	}

	counts, err := s.feedback.FindTopCorrectedCategories(ctx, userID, token)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	// Only the most corrected category counts. A deleted top category is not
	// replaced by the runner-up.
	if len(counts) == 0 {
		return nil, nil
	}
	top := counts[0]
	if top.Category == nil || top.CorrectionCount < PersonalizationThreshold {
		return nil, nil
	}
	if s.cache != nil {
		s.cache.Set(key, *top.Category)
	}
	return &candidate{category: *top.Category, confidence: PersonalizedConfidence, source: metrics.SourcePersonalized}, nil
}

func (s *categorizationService) ruleCandidates(ctx context.Context, description string, transactionType models.TransactionType) ([]*candidate, error) {
	trimmed := strings.TrimSpace(description)
	if trimmed == "" {
		return nil, nil
	}

	rules, err := s.rules.FindByTransactionType(ctx, transactionType)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var result []*candidate
	for i := range rules {
		if c := matchRule(&rules[i], description, trimmed); c != nil {
			result = append(result, c)
		}
	}
	return result, nil
}

// matchRule scores one rule against the description. A whole-word hit beats
// a substring hit; a rule contributes at most one candidate.
func matchRule(rule *models.CategorizationRule, description, trimmed string) *candidate {
	if rule.Category == nil {
		return nil
	}
	keyword := strings.ToLower(strings.TrimSpace(rule.Keyword))
	if keyword == "" {
		return nil
	}

	switch {
	case textmatch.ContainsWholeWord(description, keyword):
		return &candidate{category: *rule.Category, confidence: ExactMatchConfidence, source: metrics.SourceRule}
	case textmatch.ContainsFold(trimmed, keyword):
		return &candidate{category: *rule.Category, confidence: PartialMatchConfidence, source: metrics.SourceRule}
	}
	return nil
}

// heuristicCategoryNames returns the category names to try, in order, for
// an amount. Mid-range amounts return nothing.
func heuristicCategoryNames(amount decimal.Decimal, transactionType models.TransactionType) []string {
	large := amount.GreaterThan(largeAmountThreshold)
	small := amount.LessThan(smallAmountThreshold)

	switch transactionType {
	case models.TransactionTypeExpense:
		if large {
			return []string{"Rent"}
		}
		if small {
			return []string{"Food", "Transport"}
		}
	case models.TransactionTypeIncome:
		if large {
			return []string{"Salary"}
		}
		if small {
			return []string{"Other", "Investments"}
		}
	}
	return nil
}

func (s *categorizationService) amountHeuristic(ctx context.Context, amount *decimal.Decimal, transactionType models.TransactionType) (*candidate, error) {
	if amount == nil {
		return nil, nil
	}
	for _, name := range heuristicCategoryNames(*amount, transactionType) {
		category, err := s.categories.FindByNameIgnoreCase(ctx, name)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if category != nil {
			return &candidate{category: *category, confidence: AmountHeuristicConfidence, source: metrics.SourceHeuristic}, nil
		}
	}
	return nil, nil
}

// pickBetter keeps the higher-confidence candidate. Equal confidences go to
// the category name that sorts first ignoring case, then to the lower
// category ID, so the result does not depend on evaluation order.
func pickBetter(current, next *candidate) *candidate {
	if next == nil {
		return current
	}
	if current == nil {
		return next
	}
	if next.confidence > current.confidence {
		return next
	}
	if next.confidence < current.confidence {
		return current
	}

	switch cmp := strings.Compare(strings.ToLower(current.category.Name), strings.ToLower(next.category.Name)); {
	case cmp < 0:
		return current
	case cmp > 0:
		return next
	}
	if current.category.ID <= next.category.ID {
		return current
	}
	return next
}

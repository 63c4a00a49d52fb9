package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rdd81/smart-budget-app/internal/jobs"
	"github.com/rdd81/smart-budget-app/internal/logger"
	"github.com/rdd81/smart-budget-app/internal/middleware"
	"github.com/rdd81/smart-budget-app/internal/models"
	"github.com/rdd81/smart-budget-app/internal/pagination"
	"github.com/rdd81/smart-budget-app/internal/services"
	"github.com/rdd81/smart-budget-app/internal/validator"
)

const testUserID = "01900000-0000-7000-8000-0000000000aa"

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// --- mock services ---

type auditEntry struct {
	UserID, Action, ResourceType, ResourceID string
}

type mockAuditService struct {
	mu      sync.Mutex
	entries []auditEntry
}

func (m *mockAuditService) Log(userID, action, resourceType, resourceID, _ string, _ map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, auditEntry{UserID: userID, Action: action, ResourceType: resourceType, ResourceID: resourceID})
}

func (m *mockAuditService) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e.Action)
	}
	return out
}

var _ services.AuditServicer = (*mockAuditService)(nil)

type mockEngine struct {
	suggestFn func(ctx context.Context, input services.SuggestionInput) (*services.CategorySuggestion, error)
}

func (m *mockEngine) SuggestCategory(ctx context.Context, input services.SuggestionInput) (*services.CategorySuggestion, error) {
	if m.suggestFn != nil {
		return m.suggestFn(ctx, input)
	}
	return nil, nil
}

type mockMetricsService struct {
	getMetricsFn func(ctx context.Context, startDate, endDate *time.Time) (*services.CategorizationMetrics, error)
}

func (m *mockMetricsService) GetMetrics(ctx context.Context, startDate, endDate *time.Time) (*services.CategorizationMetrics, error) {
	if m.getMetricsFn != nil {
		return m.getMetricsFn(ctx, startDate, endDate)
	}
	return &services.CategorizationMetrics{Breakdown: []services.CategoryBreakdown{}}, nil
}

type mockBulkService struct {
	startJobFn func(ctx context.Context, userID string, filter services.BulkFilter) (*jobs.BulkJob, error)
	getJobFn   func(ctx context.Context, userID, jobID string) (*jobs.BulkJob, error)
	listJobsFn func(ctx context.Context, userID string) ([]*jobs.BulkJob, error)
}

func (m *mockBulkService) StartJob(ctx context.Context, userID string, filter services.BulkFilter) (*jobs.BulkJob, error) {
	if m.startJobFn != nil {
		return m.startJobFn(ctx, userID, filter)
	}
	return &jobs.BulkJob{JobID: "01900000-0000-7000-8000-0000000000ff", UserID: userID, Status: jobs.JobStatusPending}, nil
}

func (m *mockBulkService) GetJob(ctx context.Context, userID, jobID string) (*jobs.BulkJob, error) {
	if m.getJobFn != nil {
		return m.getJobFn(ctx, userID, jobID)
	}
	return &jobs.BulkJob{JobID: jobID, UserID: userID, Status: jobs.JobStatusRunning}, nil
}

func (m *mockBulkService) ListJobs(ctx context.Context, userID string) ([]*jobs.BulkJob, error) {
	if m.listJobsFn != nil {
		return m.listJobsFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockBulkService) Wait() {}

type mockCategoryService struct {
	createCategoryFn  func(ctx context.Context, name string, categoryType models.CategoryType, description string) (*models.Category, error)
	getCategoriesFn   func(ctx context.Context, categoryType *models.CategoryType, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	getCategoryByIDFn func(ctx context.Context, categoryID string) (*models.Category, error)
	deleteCategoryFn  func(ctx context.Context, categoryID string) error
}

func (m *mockCategoryService) CreateCategory(ctx context.Context, name string, categoryType models.CategoryType, description string) (*models.Category, error) {
	if m.createCategoryFn != nil {
		return m.createCategoryFn(ctx, name, categoryType, description)
	}
	return &models.Category{}, nil
}

func (m *mockCategoryService) GetCategories(ctx context.Context, categoryType *models.CategoryType, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
	if m.getCategoriesFn != nil {
		return m.getCategoriesFn(ctx, categoryType, page)
	}
	page.Defaults()
	resp := pagination.NewPageResponse([]models.Category{}, page, 0)
	return &resp, nil
}

func (m *mockCategoryService) GetCategoryByID(ctx context.Context, categoryID string) (*models.Category, error) {
	if m.getCategoryByIDFn != nil {
		return m.getCategoryByIDFn(ctx, categoryID)
	}
	return &models.Category{}, nil
}

func (m *mockCategoryService) DeleteCategory(ctx context.Context, categoryID string) error {
	if m.deleteCategoryFn != nil {
		return m.deleteCategoryFn(ctx, categoryID)
	}
	return nil
}

type mockRuleService struct {
	createRuleFn func(ctx context.Context, keyword string, transactionType models.TransactionType, categoryID string) (*models.CategorizationRule, error)
	getRulesFn   func(ctx context.Context, transactionType *models.TransactionType, page pagination.PageRequest) (*pagination.PageResponse[models.CategorizationRule], error)
	deleteRuleFn func(ctx context.Context, ruleID string) error
}

func (m *mockRuleService) CreateRule(ctx context.Context, keyword string, transactionType models.TransactionType, categoryID string) (*models.CategorizationRule, error) {
	if m.createRuleFn != nil {
		return m.createRuleFn(ctx, keyword, transactionType, categoryID)
	}
	return &models.CategorizationRule{}, nil
}

func (m *mockRuleService) GetRules(ctx context.Context, transactionType *models.TransactionType, page pagination.PageRequest) (*pagination.PageResponse[models.CategorizationRule], error) {
	if m.getRulesFn != nil {
		return m.getRulesFn(ctx, transactionType, page)
	}
	page.Defaults()
	resp := pagination.NewPageResponse([]models.CategorizationRule{}, page, 0)
	return &resp, nil
}

func (m *mockRuleService) DeleteRule(ctx context.Context, ruleID string) error {
	if m.deleteRuleFn != nil {
		return m.deleteRuleFn(ctx, ruleID)
	}
	return nil
}

type mockTransactionService struct {
	createFn  func(ctx context.Context, userID string, input services.TransactionInput) (*models.Transaction, error)
	updateFn  func(ctx context.Context, userID, transactionID string, input services.TransactionInput) (*models.Transaction, error)
	listFn    func(ctx context.Context, userID string, page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	getByIDFn func(ctx context.Context, userID, transactionID string) (*models.Transaction, error)
	deleteFn  func(ctx context.Context, userID, transactionID string) error
}

func (m *mockTransactionService) CreateTransaction(ctx context.Context, userID string, input services.TransactionInput) (*models.Transaction, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, input)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) UpdateTransaction(ctx context.Context, userID, transactionID string, input services.TransactionInput) (*models.Transaction, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, userID, transactionID, input)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) GetUserTransactions(ctx context.Context, userID string, page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID, page, filter)
	}
	page.Defaults()
	resp := pagination.NewPageResponse([]models.Transaction{}, page, 0)
	return &resp, nil
}

func (m *mockTransactionService) GetTransactionByID(ctx context.Context, userID, transactionID string) (*models.Transaction, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, userID, transactionID)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) DeleteTransaction(ctx context.Context, userID, transactionID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, transactionID)
	}
	return nil
}

var (
	_ services.CategorizationServicer        = (*mockEngine)(nil)
	_ services.CategorizationMetricsServicer = (*mockMetricsService)(nil)
	_ services.BulkCategorizationServicer    = (*mockBulkService)(nil)
	_ services.CategoryServicer              = (*mockCategoryService)(nil)
	_ services.RuleServicer                  = (*mockRuleService)(nil)
	_ services.TransactionServicer           = (*mockTransactionService)(nil)
)

// --- test helpers ---

func injectUserID(uid string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, uid)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}

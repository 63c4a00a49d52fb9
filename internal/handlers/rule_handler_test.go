package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "github.com/rdd81/smart-budget-app/internal/errors"
	"github.com/rdd81/smart-budget-app/internal/models"
	"github.com/rdd81/smart-budget-app/internal/pagination"
)

const testRuleID = "01900000-0000-7000-8000-0000000000b1"

func setupRuleRouter(handler *RuleHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/categorization/rules", handler.CreateRule)
	auth.GET("/categorization/rules", handler.GetRules)
	auth.DELETE("/categorization/rules/:id", handler.DeleteRule)
	return r
}

func TestRuleHandler_CreateRule(t *testing.T) {
	t.Run("returns 201 and audits", func(t *testing.T) {
		ruleSvc := &mockRuleService{
			createRuleFn: func(_ context.Context, keyword string, tt models.TransactionType, categoryID string) (*models.CategorizationRule, error) {
				return &models.CategorizationRule{Base: models.Base{ID: testRuleID}, Keyword: keyword, TransactionType: tt, CategoryID: categoryID}, nil
			},
		}
		audit := &mockAuditService{}
		r := setupRuleRouter(NewRuleHandler(ruleSvc, audit))

		rec := doRequest(r, "POST", "/categorization/rules",
			`{"keyword":"uber","transaction_type":"expense","category_id":"`+testCategoryID+`"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		rule := parseJSON(t, rec)["rule"].(map[string]interface{})
		if rule["keyword"] != "uber" || rule["category_id"] != testCategoryID {
			t.Errorf("unexpected rule %v", rule)
		}
		if got := audit.actions(); len(got) != 1 || got[0] != "CREATE_RULE" {
			t.Errorf("expected CREATE_RULE audit, got %v", got)
		}
	})

	tests := []struct {
		name string
		body string
	}{
		{"missing keyword", `{"transaction_type":"expense","category_id":"` + testCategoryID + `"}`},
		{"invalid type", `{"keyword":"uber","transaction_type":"both","category_id":"` + testCategoryID + `"}`},
		{"invalid category id", `{"keyword":"uber","transaction_type":"expense","category_id":"7"}`},
	}
	for _, tt := range tests {
		t.Run("returns 400 on "+tt.name, func(t *testing.T) {
			r := setupRuleRouter(NewRuleHandler(&mockRuleService{}, &mockAuditService{}))

			rec := doRequest(r, "POST", "/categorization/rules", tt.body)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
		})
	}

	t.Run("surfaces type mismatch", func(t *testing.T) {
		ruleSvc := &mockRuleService{
			createRuleFn: func(context.Context, string, models.TransactionType, string) (*models.CategorizationRule, error) {
				return nil, apperrors.ErrRuleTypeMismatch
			},
		}
		r := setupRuleRouter(NewRuleHandler(ruleSvc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/categorization/rules",
			`{"keyword":"salary","transaction_type":"expense","category_id":"`+testCategoryID+`"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "RULE_TYPE_MISMATCH")
	})
}

func TestRuleHandler_GetRules(t *testing.T) {
	t.Run("filters by transaction type", func(t *testing.T) {
		var got *models.TransactionType
		ruleSvc := &mockRuleService{
			getRulesFn: func(_ context.Context, tt *models.TransactionType, page pagination.PageRequest) (*pagination.PageResponse[models.CategorizationRule], error) {
				got = tt
				resp := pagination.NewPageResponse([]models.CategorizationRule{{Keyword: "salary"}}, pagination.PageRequest{Page: 1, PageSize: 20}, 1)
				return &resp, nil
			},
		}
		r := setupRuleRouter(NewRuleHandler(ruleSvc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/categorization/rules?transaction_type=income", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if got == nil || *got != models.TransactionTypeIncome {
			t.Errorf("expected income filter, got %v", got)
		}
		data := parseJSON(t, rec)["data"].([]interface{})
		if len(data) != 1 {
			t.Errorf("expected 1 rule, got %d", len(data))
		}
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		r := setupRuleRouter(NewRuleHandler(&mockRuleService{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/categorization/rules?transaction_type=x", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestRuleHandler_DeleteRule(t *testing.T) {
	t.Run("deletes and audits", func(t *testing.T) {
		audit := &mockAuditService{}
		r := setupRuleRouter(NewRuleHandler(&mockRuleService{}, audit))

		rec := doRequest(r, "DELETE", "/categorization/rules/"+testRuleID, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if got := audit.actions(); len(got) != 1 || got[0] != "DELETE_RULE" {
			t.Errorf("expected DELETE_RULE audit, got %v", got)
		}
	})

	t.Run("returns 404 when missing", func(t *testing.T) {
		ruleSvc := &mockRuleService{deleteRuleFn: func(context.Context, string) error { return apperrors.ErrRuleNotFound }}
		r := setupRuleRouter(NewRuleHandler(ruleSvc, &mockAuditService{}))

		rec := doRequest(r, "DELETE", "/categorization/rules/"+testRuleID, "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "RULE_NOT_FOUND")
	})
}

package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rdd81/smart-budget-app/internal/models"
	"github.com/rdd81/smart-budget-app/internal/services"
)

func setupCategorizationRouter(handler *CategorizationHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/categorization/suggest", handler.SuggestCategory)
	auth.GET("/categorization/metrics", handler.GetMetrics)
	r.POST("/anonymous/suggest", handler.SuggestCategory)
	return r
}

func TestCategorizationHandler_SuggestCategory(t *testing.T) {
	t.Run("returns suggestion and passes caller context", func(t *testing.T) {
		var got services.SuggestionInput
		engine := &mockEngine{suggestFn: func(_ context.Context, input services.SuggestionInput) (*services.CategorySuggestion, error) {
			got = input
			return &services.CategorySuggestion{CategoryID: "c1", CategoryName: "Food", Confidence: 0.9}, nil
		}}
		r := setupCategorizationRouter(NewCategorizationHandler(engine, &mockMetricsService{}))

		rec := doRequest(r, "POST", "/categorization/suggest",
			`{"description":"Starbucks coffee","amount":"4.50","transaction_type":"expense"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.UserID != testUserID {
			t.Errorf("expected user %s, got %s", testUserID, got.UserID)
		}
		if got.TransactionType != models.TransactionTypeExpense {
			t.Errorf("expected expense, got %s", got.TransactionType)
		}
		if got.Amount == nil || got.Amount.String() != "4.5" {
			t.Errorf("expected amount 4.5, got %v", got.Amount)
		}
		suggestion := parseJSON(t, rec)["suggestion"].(map[string]interface{})
		if suggestion["category_name"] != "Food" || suggestion["confidence"] != 0.9 {
			t.Errorf("unexpected suggestion: %v", suggestion)
		}
	})

	t.Run("returns null when engine has no answer", func(t *testing.T) {
		r := setupCategorizationRouter(NewCategorizationHandler(&mockEngine{}, &mockMetricsService{}))

		rec := doRequest(r, "POST", "/categorization/suggest", `{"description":"zzz","transaction_type":"income"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		if v, ok := result["suggestion"]; !ok || v != nil {
			t.Errorf("expected explicit null suggestion, got %v", result)
		}
	})

	t.Run("rejects unknown transaction type", func(t *testing.T) {
		r := setupCategorizationRouter(NewCategorizationHandler(&mockEngine{}, &mockMetricsService{}))

		rec := doRequest(r, "POST", "/categorization/suggest", `{"description":"rent","transaction_type":"transfer"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 401 without user", func(t *testing.T) {
		r := setupCategorizationRouter(NewCategorizationHandler(&mockEngine{}, &mockMetricsService{}))

		rec := doRequest(r, "POST", "/anonymous/suggest", `{"description":"rent"}`)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("hides engine failures", func(t *testing.T) {
		engine := &mockEngine{suggestFn: func(context.Context, services.SuggestionInput) (*services.CategorySuggestion, error) {
			return nil, errors.New("connection refused")
		}}
		r := setupCategorizationRouter(NewCategorizationHandler(engine, &mockMetricsService{}))

		rec := doRequest(r, "POST", "/categorization/suggest", `{"description":"rent","transaction_type":"expense"}`)

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INTERNAL_ERROR")
	})
}

func TestCategorizationHandler_GetMetrics(t *testing.T) {
	t.Run("parses date window", func(t *testing.T) {
		var gotStart, gotEnd *time.Time
		metrics := &mockMetricsService{getMetricsFn: func(_ context.Context, start, end *time.Time) (*services.CategorizationMetrics, error) {
			gotStart, gotEnd = start, end
			return &services.CategorizationMetrics{TotalSuggestions: 4, AcceptedSuggestions: 3, RejectedSuggestions: 1, Accuracy: 0.75}, nil
		}}
		r := setupCategorizationRouter(NewCategorizationHandler(&mockEngine{}, metrics))

		rec := doRequest(r, "GET", "/categorization/metrics?start_date=2024-01-01&end_date=2024-01-31", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotStart == nil || gotStart.Format(time.DateOnly) != "2024-01-01" {
			t.Errorf("unexpected start %v", gotStart)
		}
		if gotEnd == nil || gotEnd.Format(time.DateOnly) != "2024-01-31" {
			t.Errorf("unexpected end %v", gotEnd)
		}
		if parseJSON(t, rec)["accuracy"] != 0.75 {
			t.Errorf("expected accuracy 0.75")
		}
	})

	t.Run("open window passes nil bounds", func(t *testing.T) {
		called := false
		metrics := &mockMetricsService{getMetricsFn: func(_ context.Context, start, end *time.Time) (*services.CategorizationMetrics, error) {
			called = true
			if start != nil || end != nil {
				t.Errorf("expected nil bounds, got %v %v", start, end)
			}
			return &services.CategorizationMetrics{}, nil
		}}
		r := setupCategorizationRouter(NewCategorizationHandler(&mockEngine{}, metrics))

		rec := doRequest(r, "GET", "/categorization/metrics", "")

		if rec.Code != http.StatusOK || !called {
			t.Fatalf("expected 200 and a service call, got %d", rec.Code)
		}
	})

	t.Run("rejects malformed date", func(t *testing.T) {
		r := setupCategorizationRouter(NewCategorizationHandler(&mockEngine{}, &mockMetricsService{}))

		rec := doRequest(r, "GET", "/categorization/metrics?start_date=01/02/2024", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})
}

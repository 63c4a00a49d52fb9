package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/rdd81/smart-budget-app/internal/models"
	"github.com/rdd81/smart-budget-app/internal/services"
)

// CategorizationHandler serves category suggestions and accuracy metrics.
type CategorizationHandler struct {
	engine  services.CategorizationServicer
	metrics services.CategorizationMetricsServicer
}

// NewCategorizationHandler creates a new CategorizationHandler.
func NewCategorizationHandler(engine services.CategorizationServicer, metrics services.CategorizationMetricsServicer) *CategorizationHandler {
	return &CategorizationHandler{engine: engine, metrics: metrics}
}

// SuggestCategoryRequest is the payload for a suggestion. TransactionType may
// be omitted, in which case no suggestion is made.
type SuggestCategoryRequest struct {
	Description     string           `json:"description" binding:"max=500"`
	Amount          *decimal.Decimal `json:"amount" swaggertype:"string"`
	TransactionType string           `json:"transaction_type" binding:"omitempty,transaction_type"`
}

// SuggestCategoryResponse wraps the suggestion; Suggestion is null when no
// category clears the confidence floor.
type SuggestCategoryResponse struct {
	Suggestion *services.CategorySuggestion `json:"suggestion"`
}

// SuggestCategory handles a category suggestion request
// @Summary     Suggest a category
// @Description Suggest the most likely category for a transaction description
// @Tags        categorization
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body SuggestCategoryRequest true "Transaction details"
// @Success     200 {object} SuggestCategoryResponse "Suggestion or null"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /categorization/suggest [post]
func (h *CategorizationHandler) SuggestCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SuggestCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	suggestion, err := h.engine.SuggestCategory(c.Request.Context(), services.SuggestionInput{
		Description:     req.Description,
		Amount:          req.Amount,
		TransactionType: models.TransactionType(req.TransactionType),
		UserID:          userID,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuggestCategoryResponse{Suggestion: suggestion})
}

// GetMetrics handles the suggestion accuracy report
// @Summary     Categorization metrics
// @Description Accepted and rejected suggestion counts, overall and per category
// @Tags        categorization
// @Produce     json
// @Security    BearerAuth
// @Param       start_date query string false "Start date (YYYY-MM-DD or RFC3339)"
// @Param       end_date   query string false "End date, inclusive (YYYY-MM-DD or RFC3339)"
// @Success     200 {object} services.CategorizationMetrics "Metrics"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /categorization/metrics [get]
func (h *CategorizationHandler) GetMetrics(c *gin.Context) {
	if _, err := getUserID(c); err != nil {
		respondWithError(c, err)
		return
	}

	startDate, err := parseDateQuery(c, "start_date")
	if err != nil {
		respondWithError(c, err)
		return
	}
	endDate, err := parseDateQuery(c, "end_date")
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.metrics.GetMetrics(c.Request.Context(), startDate, endDate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

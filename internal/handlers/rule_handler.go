package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/rdd81/smart-budget-app/internal/errors"
	"github.com/rdd81/smart-budget-app/internal/models"
	"github.com/rdd81/smart-budget-app/internal/pagination"
	"github.com/rdd81/smart-budget-app/internal/services"
)

// RuleHandler administers keyword categorization rules.
type RuleHandler struct {
	ruleService  services.RuleServicer
	auditService services.AuditServicer
}

// NewRuleHandler creates a new RuleHandler.
func NewRuleHandler(ruleService services.RuleServicer, auditService services.AuditServicer) *RuleHandler {
	return &RuleHandler{ruleService: ruleService, auditService: auditService}
}

// CreateRuleRequest represents the request payload for creating a rule.
type CreateRuleRequest struct {
	Keyword         string `json:"keyword" binding:"required,notblank,max=100"`
	TransactionType string `json:"transaction_type" binding:"required,transaction_type"`
	CategoryID      string `json:"category_id" binding:"required,uuid_string"`
}

// CreateRule handles the creation of a keyword rule
// @Summary     Create a rule
// @Description Map a keyword to a category for one transaction type (operator key required)
// @Tags        categorization
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       X-API-Key header string true "Operator API key"
// @Param       request body CreateRuleRequest true "Rule details"
// @Success     201 {object} models.CategorizationRule "Rule created"
// @Failure     400 {object} ErrorResponse "Invalid input or type mismatch"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Invalid operator key"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /categorization/rules [post]
func (h *RuleHandler) CreateRule(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	rule, err := h.ruleService.CreateRule(c.Request.Context(), req.Keyword, models.TransactionType(req.TransactionType), req.CategoryID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_RULE", "categorization_rule", rule.ID, c.ClientIP(),
		map[string]interface{}{"keyword": rule.Keyword, "transaction_type": rule.TransactionType, "category_id": rule.CategoryID})

	c.JSON(http.StatusCreated, gin.H{"rule": rule})
}

// GetRules handles listing rules
// @Summary     List rules
// @Description Paged list of keyword rules, optionally for one transaction type
// @Tags        categorization
// @Produce     json
// @Security    BearerAuth
// @Param       transaction_type query string false "Filter by transaction type (income/expense)"
// @Param       page             query int    false "Page number (default 1)"
// @Param       page_size        query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.CategorizationRule] "Paginated rules"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /categorization/rules [get]
func (h *RuleHandler) GetRules(c *gin.Context) {
	if _, err := getUserID(c); err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	var transactionType *models.TransactionType
	if v := c.Query("transaction_type"); v != "" {
		t := models.TransactionType(v)
		if !t.Valid() {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid transaction_type, must be income or expense"))
			return
		}
		transactionType = &t
	}

	result, err := h.ruleService.GetRules(c.Request.Context(), transactionType, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// DeleteRule handles deleting a rule
// @Summary     Delete a rule
// @Description Remove a keyword rule (operator key required)
// @Tags        categorization
// @Produce     json
// @Security    BearerAuth
// @Param       X-API-Key header string true "Operator API key"
// @Param       id path string true "Rule ID"
// @Success     200 {object} MessageResponse "Rule deleted"
// @Failure     400 {object} ErrorResponse "Invalid rule ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Invalid operator key"
// @Failure     404 {object} ErrorResponse "Rule not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /categorization/rules/{id} [delete]
func (h *RuleHandler) DeleteRule(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	ruleID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.ruleService.DeleteRule(c.Request.Context(), ruleID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_RULE", "categorization_rule", ruleID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, MessageResponse{Message: "Rule deleted successfully"})
}

package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/rdd81/smart-budget-app/internal/errors"
	"github.com/rdd81/smart-budget-app/internal/jobs"
	"github.com/rdd81/smart-budget-app/internal/models"
	"github.com/rdd81/smart-budget-app/internal/services"
)

// BulkCategorizationHandler starts and reports on bulk re-categorization jobs.
type BulkCategorizationHandler struct {
	bulkService services.BulkCategorizationServicer
}

// NewBulkCategorizationHandler creates a new BulkCategorizationHandler.
func NewBulkCategorizationHandler(bulkService services.BulkCategorizationServicer) *BulkCategorizationHandler {
	return &BulkCategorizationHandler{bulkService: bulkService}
}

// BulkCategorizeRequest selects the transactions to re-categorize. All
// fields are optional.
type BulkCategorizeRequest struct {
	DateFrom            *string  `json:"date_from"`
	DateTo              *string  `json:"date_to"`
	CurrentCategoryID   *string  `json:"current_category_id" binding:"omitempty,uuid_string"`
	TransactionType     *string  `json:"transaction_type" binding:"omitempty,transaction_type"`
	ConfidenceThreshold *float64 `json:"confidence_threshold" binding:"omitempty,gte=0,lte=1"`
}

// JobListResponse lists a user's retained jobs.
type JobListResponse struct {
	Jobs []*jobs.BulkJob `json:"jobs"`
}

// StartBulkCategorization handles the creation of a bulk job
// @Summary     Start bulk categorization
// @Description Re-categorize the caller's transactions in the background
// @Tags        bulk-categorization
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body BulkCategorizeRequest false "Selection filters"
// @Success     202 {object} jobs.BulkJob "Job accepted"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     429 {object} ErrorResponse "Rate limited"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/bulk-categorize [post]
func (h *BulkCategorizationHandler) StartBulkCategorization(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req BulkCategorizeRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, bindError(err))
			return
		}
	}

	filter, err := req.toFilter()
	if err != nil {
		respondWithError(c, err)
		return
	}

	job, err := h.bulkService.StartJob(c.Request.Context(), userID, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.Header("Location", c.FullPath()+"/"+job.JobID)
	c.JSON(http.StatusAccepted, job)
}

func (r BulkCategorizeRequest) toFilter() (services.BulkFilter, error) {
	filter := services.BulkFilter{
		CurrentCategoryID:   r.CurrentCategoryID,
		ConfidenceThreshold: r.ConfidenceThreshold,
	}

	parse := func(v *string, name string) (*time.Time, error) {
		if v == nil || *v == "" {
			return nil, nil
		}
		t, err := parseFlexibleTime(*v)
		if err != nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid "+name+" format, use RFC3339 or YYYY-MM-DD")
		}
		return &t, nil
	}

	var err error
	if filter.DateFrom, err = parse(r.DateFrom, "date_from"); err != nil {
		return filter, err
	}
	if filter.DateTo, err = parse(r.DateTo, "date_to"); err != nil {
		return filter, err
	}
	if filter.DateTo != nil && r.DateTo != nil && len(*r.DateTo) == len(time.DateOnly) {
		// A bare end date covers the whole day.
		end := filter.DateTo.AddDate(0, 0, 1).Add(-time.Nanosecond)
		filter.DateTo = &end
	}
	if r.TransactionType != nil {
		t := models.TransactionType(*r.TransactionType)
		filter.TransactionType = &t
	}
	return filter, nil
}

// GetBulkCategorizationJob handles job status polling
// @Summary     Get bulk job status
// @Description Current snapshot of a bulk categorization job owned by the caller
// @Tags        bulk-categorization
// @Produce     json
// @Security    BearerAuth
// @Param       jobId path string true "Job ID"
// @Success     200 {object} jobs.BulkJob "Job snapshot"
// @Failure     400 {object} ErrorResponse "Invalid job ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Job not found"
// @Router      /transactions/bulk-categorize/{jobId} [get]
func (h *BulkCategorizationHandler) GetBulkCategorizationJob(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	jobID, err := parsePathID(c, "jobId")
	if err != nil {
		// Unknown handles are indistinguishable from malformed ones.
		respondWithError(c, apperrors.ErrJobNotFound)
		return
	}

	job, err := h.bulkService.GetJob(c.Request.Context(), userID, jobID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, job)
}

// ListBulkCategorizationJobs handles listing the caller's jobs
// @Summary     List bulk jobs
// @Description Retained bulk categorization jobs of the caller, newest first
// @Tags        bulk-categorization
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} JobListResponse "Jobs"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/bulk-categorize [get]
func (h *BulkCategorizationHandler) ListBulkCategorizationJobs(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	list, err := h.bulkService.ListJobs(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if list == nil {
		list = []*jobs.BulkJob{}
	}

	c.JSON(http.StatusOK, JobListResponse{Jobs: list})
}

package services

import (
	"context"
	"time"

	apperrors "github.com/rdd81/smart-budget-app/internal/errors"
	"github.com/rdd81/smart-budget-app/internal/repositories"
)

// categorizationMetricsService reports how often suggestions were kept.
type categorizationMetricsService struct {
	feedback repositories.FeedbackRepositoryInterface
}

// NewCategorizationMetricsService creates a new CategorizationMetricsServicer.
func NewCategorizationMetricsService(feedback repositories.FeedbackRepositoryInterface) CategorizationMetricsServicer {
	return &categorizationMetricsService{feedback: feedback}
}

// GetMetrics summarizes feedback recorded between startDate and endDate.
// Dates are calendar days in UTC and endDate is inclusive.
func (s *categorizationMetricsService) GetMetrics(ctx context.Context, startDate, endDate *time.Time) (*CategorizationMetrics, error) {
	if startDate != nil && endDate != nil && startDate.After(*endDate) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "start_date must not be after end_date")
	}

	var window repositories.TimeRange
	if startDate != nil {
		from := startOfDayUTC(*startDate)
		window.From = &from
	}
	if endDate != nil {
		to := startOfDayUTC(*endDate).AddDate(0, 0, 1)
		window.To = &to
	}

	totals, err := s.feedback.SummarizeTotals(ctx, window)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	rows, err := s.feedback.SummarizeByCategory(ctx, window)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	breakdown := make([]CategoryBreakdown, 0, len(rows))
	for _, row := range rows {
		breakdown = append(breakdown, CategoryBreakdown{
			CategoryID:   row.CategoryID,
			CategoryName: row.CategoryName,
			Total:        row.Total,
			Accepted:     row.Accepted,
			Rejected:     row.Rejected,
			Accuracy:     ratio(row.Accepted, row.Total),
		})
	}

	return &CategorizationMetrics{
		TotalSuggestions:    totals.Total,
		AcceptedSuggestions: totals.Accepted,
		RejectedSuggestions: totals.Rejected,
		Accuracy:            ratio(totals.Accepted, totals.Total),
		Breakdown:           breakdown,
	}, nil
}

func startOfDayUTC(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ratio(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total)
}

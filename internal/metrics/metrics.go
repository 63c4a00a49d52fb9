// Package metrics exposes Prometheus instrumentation for the categorization
// engine and bulk job runner.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Suggestion sources reported on the suggestions counter.
const (
	SourcePersonalized = "personalized"
	SourceRule         = "rule"
	SourceHeuristic    = "heuristic"
	SourceNone         = "none"
)

// Recorder is the instrumentation surface used by the services.
type Recorder interface {
	SuggestionServed(source string)
	PersonalizationCacheLookup(hit bool)
	BulkJobFinished(status string, duration time.Duration)
	BulkTransactionOutcome(outcome string, n int)
	BulkJobsRunning(delta float64)
	FeedbackRecorded(ok bool)
}

// PrometheusMetrics implements Recorder with Prometheus collectors.
type PrometheusMetrics struct {
	suggestionsTotal   *prometheus.CounterVec
	cacheLookupsTotal  *prometheus.CounterVec
	bulkJobsTotal      *prometheus.CounterVec
	bulkJobDuration    prometheus.Histogram
	bulkTransactions   *prometheus.CounterVec
	bulkJobsRunning    prometheus.Gauge
	feedbackWriteTotal *prometheus.CounterVec
}

// NewPrometheusMetrics registers the collectors on reg. Pass
// prometheus.DefaultRegisterer in the server and a fresh registry in tests.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	factory := promauto.With(reg)
	return &PrometheusMetrics{
		suggestionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "categorization_suggestions_total",
				Help: "Category suggestions served, by winning source",
			},
			[]string{"source"},
		),
		cacheLookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "categorization_personalization_cache_lookups_total",
				Help: "Personalization cache lookups by result",
			},
			[]string{"result"},
		),
		bulkJobsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bulk_categorization_jobs_total",
				Help: "Bulk categorization jobs finished, by terminal status",
			},
			[]string{"status"},
		),
		bulkJobDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "bulk_categorization_job_duration_seconds",
				Help:    "Wall time of bulk categorization jobs",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 14),
			},
		),
		bulkTransactions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bulk_categorization_transactions_total",
				Help: "Transactions visited by bulk jobs, by outcome",
			},
			[]string{"outcome"},
		),
		bulkJobsRunning: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "bulk_categorization_jobs_running",
				Help: "Bulk categorization jobs currently executing",
			},
		),
		feedbackWriteTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "categorization_feedback_writes_total",
				Help: "Feedback rows written, by result",
			},
			[]string{"result"},
		),
	}
}

func (m *PrometheusMetrics) SuggestionServed(source string) {
	m.suggestionsTotal.WithLabelValues(source).Inc()
}

func (m *PrometheusMetrics) PersonalizationCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookupsTotal.WithLabelValues(result).Inc()
}

func (m *PrometheusMetrics) BulkJobFinished(status string, duration time.Duration) {
	m.bulkJobsTotal.WithLabelValues(status).Inc()
	m.bulkJobDuration.Observe(duration.Seconds())
}

func (m *PrometheusMetrics) BulkTransactionOutcome(outcome string, n int) {
	if n <= 0 {
		return
	}
	m.bulkTransactions.WithLabelValues(outcome).Add(float64(n))
}

func (m *PrometheusMetrics) BulkJobsRunning(delta float64) {
	m.bulkJobsRunning.Add(delta)
}

func (m *PrometheusMetrics) FeedbackRecorded(ok bool) {
	result := "error"
	if ok {
		result = "ok"
	}
	m.feedbackWriteTotal.WithLabelValues(result).Inc()
}

// Nop discards all observations.
type Nop struct{}

func (Nop) SuggestionServed(string)               {}
func (Nop) PersonalizationCacheLookup(bool)       {}
func (Nop) BulkJobFinished(string, time.Duration) {}
func (Nop) BulkTransactionOutcome(string, int)    {}
func (Nop) BulkJobsRunning(float64)               {}
func (Nop) FeedbackRecorded(bool)                 {}

var (
	_ Recorder = (*PrometheusMetrics)(nil)
	_ Recorder = Nop{}
)

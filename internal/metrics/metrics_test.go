package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func value(t *testing.T, c prometheus.Metric) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	switch {
	case m.Counter != nil:
		return m.Counter.GetValue()
	case m.Gauge != nil:
		return m.Gauge.GetValue()
	}
	t.Fatalf("unsupported metric type")
	return 0
}

func TestPrometheusMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheusMetrics(reg)

	m.SuggestionServed(SourceRule)
	m.SuggestionServed(SourceRule)
	m.SuggestionServed(SourceNone)
	m.PersonalizationCacheLookup(true)
	m.PersonalizationCacheLookup(false)
	m.BulkTransactionOutcome("updated", 3)
	m.BulkTransactionOutcome("skipped", 0)
	m.BulkJobsRunning(1)
	m.BulkJobFinished("COMPLETED", 250*time.Millisecond)
	m.BulkJobsRunning(-1)
	m.FeedbackRecorded(true)

	assert.Equal(t, 2.0, value(t, m.suggestionsTotal.WithLabelValues(SourceRule)))
	assert.Equal(t, 1.0, value(t, m.suggestionsTotal.WithLabelValues(SourceNone)))
	assert.Equal(t, 1.0, value(t, m.cacheLookupsTotal.WithLabelValues("hit")))
	assert.Equal(t, 3.0, value(t, m.bulkTransactions.WithLabelValues("updated")))
	assert.Equal(t, 0.0, value(t, m.bulkJobsRunning))
	assert.Equal(t, 1.0, value(t, m.bulkJobsTotal.WithLabelValues("COMPLETED")))
	assert.Equal(t, 1.0, value(t, m.feedbackWriteTotal.WithLabelValues("ok")))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNewPrometheusMetrics_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewPrometheusMetrics(prometheus.NewRegistry())
		NewPrometheusMetrics(prometheus.NewRegistry())
	})
}

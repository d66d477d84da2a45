package prometheus

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/complyhub/gst-sentinel/internal/infrastructure/monitoring/logging"
)

func newTestCollector(t *testing.T) MetricsCollector {
	t.Helper()
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "gstsentinel"}, logging.NewNopLogger())
	require.NoError(t, err)
	return c
}

func TestNewMetricsCollector_RequiresNamespace(t *testing.T) {
	_, err := NewMetricsCollector(CollectorConfig{}, logging.NewNopLogger())
	assert.Error(t, err)
}

func TestCollector_RegisterAndServe(t *testing.T) {
	c := newTestCollector(t)

	counter := c.RegisterCounter("assessments_total", "help", "status", "outcome")
	counter.WithLabelValues("good", "ok").Inc()
	counter.WithLabelValues("good", "ok").Add(2)

	gauge := c.RegisterGauge("batch_active_workers", "help")
	gauge.WithLabelValues().Set(8)

	hist := c.RegisterHistogram("assessment_duration_seconds", "help", nil)
	hist.WithLabelValues().Observe(0.042)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "gstsentinel_assessments_total")
	assert.Contains(t, string(body), "gstsentinel_batch_active_workers 8")
}

func TestCollector_DuplicateRegistrationReusesMetric(t *testing.T) {
	c := newTestCollector(t)

	first := c.RegisterCounter("dup_total", "help", "label")
	second := c.RegisterCounter("dup_total", "help", "label")

	first.WithLabelValues("a").Inc()
	second.WithLabelValues("a").Inc()

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `gstsentinel_dup_total{label="a"} 2`)
}

func TestNopMetrics(t *testing.T) {
	m := NewNopMetrics()
	assert.NotPanics(t, func() {
		m.AssessmentsTotal.WithLabelValues("good", "ok").Inc()
		m.BatchActiveWorkers.WithLabelValues().Set(1)
		m.AssessmentDuration.WithLabelValues().Observe(0.1)
	})
}

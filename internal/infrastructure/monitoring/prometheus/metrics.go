package prometheus

// AppMetrics holds every metric family the platform emits.
type AppMetrics struct {
	// HTTP layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// Assessment engine
	AssessmentsTotal    CounterVec // labels: status (good|warning|critical), outcome (ok|error)
	AssessmentDuration  HistogramVec
	ClampWarningsTotal  CounterVec
	RiskScoreLast       GaugeVec // labels: status; last observed score per band

	// Batch runs
	BatchRunsTotal      CounterVec // labels: result (completed|failed|retrying)
	BatchRunDuration    HistogramVec
	BatchClientsGauge   GaugeVec // labels: counter (processed|successful|failed)
	BatchActiveWorkers  GaugeVec

	// Infrastructure
	DBQueryDuration  HistogramVec
	CacheHitsTotal   CounterVec
	CacheMissesTotal CounterVec
	EventsPublished  CounterVec // labels: topic, outcome
}

var (
	// DefaultHTTPDurationBuckets suit interactive API latencies.
	DefaultHTTPDurationBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

	// DefaultBatchDurationBuckets suit runs over thousands of clients.
	DefaultBatchDurationBuckets = []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800}

	// DefaultDBDurationBuckets suit single-row queries and upserts.
	DefaultDBDurationBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5}
)

// NewAppMetrics registers every metric family against the collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	m.HTTPRequestsTotal = collector.RegisterCounter(
		"http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram(
		"http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge(
		"http_active_requests", "In-flight HTTP requests", "method")

	m.AssessmentsTotal = collector.RegisterCounter(
		"assessments_total", "Completed client risk assessments", "status", "outcome")
	m.AssessmentDuration = collector.RegisterHistogram(
		"assessment_duration_seconds", "End-to-end single-client assessment duration", nil)
	m.ClampWarningsTotal = collector.RegisterCounter(
		"assessment_clamp_warnings_total", "Out-of-range factor values clamped during assessment")
	m.RiskScoreLast = collector.RegisterGauge(
		"assessment_last_risk_score", "Risk score of the most recent assessment per status band", "status")

	m.BatchRunsTotal = collector.RegisterCounter(
		"batch_runs_total", "Batch assessment run outcomes", "result")
	m.BatchRunDuration = collector.RegisterHistogram(
		"batch_run_duration_seconds", "Batch assessment run duration", DefaultBatchDurationBuckets)
	m.BatchClientsGauge = collector.RegisterGauge(
		"batch_clients", "Client counters of the most recent batch run", "counter")
	m.BatchActiveWorkers = collector.RegisterGauge(
		"batch_active_workers", "Workers currently assessing clients")

	m.DBQueryDuration = collector.RegisterHistogram(
		"db_query_duration_seconds", "Database query duration", DefaultDBDurationBuckets, "query")
	m.CacheHitsTotal = collector.RegisterCounter(
		"cache_hits_total", "Cache hits", "cache")
	m.CacheMissesTotal = collector.RegisterCounter(
		"cache_misses_total", "Cache misses", "cache")
	m.EventsPublished = collector.RegisterCounter(
		"events_published_total", "Kafka events published", "topic", "outcome")

	return m
}

// NewNopMetrics returns metrics wired to a no-op collector, for tests.
func NewNopMetrics() *AppMetrics {
	return NewAppMetrics(NewNopCollector())
}

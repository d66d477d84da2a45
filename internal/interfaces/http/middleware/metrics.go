package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/complyhub/gst-sentinel/internal/infrastructure/monitoring/prometheus"
)

// MetricsMiddleware records request counts, latencies, and in-flight gauges.
type MetricsMiddleware struct {
	metrics *prometheus.AppMetrics
}

// NewMetricsMiddleware builds the instrumentation layer.
func NewMetricsMiddleware(metrics *prometheus.AppMetrics) *MetricsMiddleware {
	if metrics == nil {
		metrics = prometheus.NewNopMetrics()
	}
	return &MetricsMiddleware{metrics: metrics}
}

// Handler instruments each request.  The path label uses the chi route
// pattern, not the raw URL, so client IDs do not explode the cardinality.
func (m *MetricsMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.metrics.HTTPActiveRequests.WithLabelValues(r.Method).Inc()
		defer m.metrics.HTTPActiveRequests.WithLabelValues(r.Method).Dec()

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		pattern := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				pattern = p
			}
		}
		m.metrics.HTTPRequestsTotal.WithLabelValues(
			r.Method, pattern, strconv.Itoa(ww.Status())).Inc()
		m.metrics.HTTPRequestDuration.WithLabelValues(
			r.Method, pattern).Observe(time.Since(start).Seconds())
	})
}

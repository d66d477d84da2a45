package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/complyhub/gst-sentinel/internal/infrastructure/monitoring/logging"
	"github.com/complyhub/gst-sentinel/pkg/types/common"
)

// DependencyCheck probes one backing service.
type DependencyCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	checks  []DependencyCheck
	timeout time.Duration
	logger  logging.Logger
}

// NewHealthHandler wires the probes.  Readiness fails when any registered
// dependency check fails.
func NewHealthHandler(logger logging.Logger, checks ...DependencyCheck) *HealthHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &HealthHandler{checks: checks, timeout: 3 * time.Second, logger: logger}
}

// Liveness handles GET /healthz.  The process is alive if it can answer.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]common.HealthStatus{"status": common.HealthUp})
}

// Readiness handles GET /readyz and reports per-dependency health.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	overall := common.HealthUp
	components := make([]common.ComponentHealth, 0, len(h.checks))
	for _, check := range h.checks {
		start := time.Now()
		err := check.Check(ctx)
		component := common.ComponentHealth{
			Name:    check.Name,
			Status:  common.HealthUp,
			Latency: time.Since(start),
		}
		if err != nil {
			component.Status = common.HealthDown
			component.Message = err.Error()
			overall = common.HealthDown
			h.logger.Warn("readiness check failed",
				logging.String("dependency", check.Name), logging.Err(err))
		}
		components = append(components, component)
	}

	status := http.StatusOK
	if overall == common.HealthDown {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]interface{}{
		"status":     overall,
		"components": components,
	})
}

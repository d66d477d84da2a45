package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/complyhub/gst-sentinel/internal/application/assessment"
	"github.com/complyhub/gst-sentinel/internal/infrastructure/monitoring/logging"
	"github.com/complyhub/gst-sentinel/pkg/errors"
	"github.com/complyhub/gst-sentinel/pkg/types/common"
)

// RiskHandler serves risk records and triggers assessments.
type RiskHandler struct {
	service *assessment.Service
	batch   *assessment.BatchRunner
	logger  logging.Logger
}

// NewRiskHandler wires the handler.  batch may be nil when the API server
// runs without an embedded batch runner; POST /assessments/run then returns
// 501.
func NewRiskHandler(service *assessment.Service, batch *assessment.BatchRunner, logger logging.Logger) *RiskHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &RiskHandler{service: service, batch: batch, logger: logger}
}

// GetRisk handles GET /api/v1/clients/{clientId}/risk.
func (h *RiskHandler) GetRisk(w http.ResponseWriter, r *http.Request) {
	id := common.ID(chi.URLParam(r, "clientId"))
	if err := id.Validate(); err != nil {
		writeValidationError(w, r, "clientId must be a valid UUID")
		return
	}

	record, err := h.service.GetRisk(r.Context(), id)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, record)
}

// Assess handles POST /api/v1/clients/{clientId}/assess.
func (h *RiskHandler) Assess(w http.ResponseWriter, r *http.Request) {
	id := common.ID(chi.URLParam(r, "clientId"))
	if err := id.Validate(); err != nil {
		writeValidationError(w, r, "clientId must be a valid UUID")
		return
	}

	record, err := h.service.AssessClient(r.Context(), id, callerFrom(r))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, record)
}

// RunBatch handles POST /api/v1/assessments/run.  The run executes
// synchronously; large portfolios should enqueue a check request instead.
func (h *RiskHandler) RunBatch(w http.ResponseWriter, r *http.Request) {
	if h.batch == nil {
		writeAppError(w, r, errors.New(errors.ErrCodeNotImplemented,
			"batch assessments run on the worker; publish a check request instead"))
		return
	}

	job, err := h.batch.Run(r.Context(), callerFrom(r))
	if err != nil {
		if job != nil {
			// The run started but ended in failure; surface the job so the
			// caller can inspect the counters.
			writeData(w, r, http.StatusInternalServerError, job)
			return
		}
		writeAppError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, job)
}

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/complyhub/gst-sentinel/internal/domain/joblog"
	"github.com/complyhub/gst-sentinel/internal/infrastructure/monitoring/logging"
	"github.com/complyhub/gst-sentinel/pkg/types/common"
)

// JobHandler serves JobLog entries for operators.
type JobHandler struct {
	jobs   joblog.Repository
	logger logging.Logger
}

// NewJobHandler wires the handler.
func NewJobHandler(jobs joblog.Repository, logger logging.Logger) *JobHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &JobHandler{jobs: jobs, logger: logger}
}

// List handles GET /api/v1/jobs.  An optional ?status= filters by lifecycle
// state.
func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	p := parsePagination(r)
	status := joblog.Status(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		writeValidationError(w, r, "status must be one of queued, running, completed, failed, retrying")
		return
	}

	jobs, total, err := h.jobs.List(r.Context(), status, p)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, common.NewPageResponse(jobs, total, p))
}

// Get handles GET /api/v1/jobs/{jobId}.
func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := common.ID(chi.URLParam(r, "jobId"))
	if err := id.Validate(); err != nil {
		writeValidationError(w, r, "jobId must be a valid UUID")
		return
	}

	job, err := h.jobs.GetByID(r.Context(), id)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, job)
}

package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/complyhub/gst-sentinel/internal/application/registry"
	"github.com/complyhub/gst-sentinel/internal/domain/client"
	"github.com/complyhub/gst-sentinel/internal/domain/filing"
	"github.com/complyhub/gst-sentinel/internal/infrastructure/monitoring/logging"
	"github.com/complyhub/gst-sentinel/pkg/types/common"
)

// ClientHandler serves the client registry and filing endpoints.
type ClientHandler struct {
	registry *registry.Service
	logger   logging.Logger
}

// NewClientHandler wires the handler.
func NewClientHandler(registry *registry.Service, logger logging.Logger) *ClientHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &ClientHandler{registry: registry, logger: logger}
}

// RegisterClientRequest is the POST /clients body.
type RegisterClientRequest struct {
	GSTIN           string `json:"gstin"`
	LegalName       string `json:"legal_name"`
	TradeName       string `json:"trade_name,omitempty"`
	FilingFrequency string `json:"filing_frequency"`
}

// AddFilingRequest is the POST /clients/{clientId}/filings body.
type AddFilingRequest struct {
	ReturnType string `json:"return_type"`
	Period     string `json:"period"`
	DueDate    string `json:"due_date"` // RFC 3339 date, e.g. 2025-04-20
}

// Create handles POST /api/v1/clients.
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req RegisterClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, r, "invalid request body")
		return
	}
	if req.LegalName == "" {
		writeValidationError(w, r, "legal_name is required")
		return
	}

	c, err := h.registry.RegisterClient(r.Context(), registry.RegisterClientInput{
		GSTIN:           req.GSTIN,
		LegalName:       req.LegalName,
		TradeName:       req.TradeName,
		FilingFrequency: client.FilingFrequency(req.FilingFrequency),
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeData(w, r, http.StatusCreated, c)
}

// Get handles GET /api/v1/clients/{clientId}.
func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := common.ID(chi.URLParam(r, "clientId"))
	if err := id.Validate(); err != nil {
		writeValidationError(w, r, "clientId must be a valid UUID")
		return
	}

	c, err := h.registry.GetClient(r.Context(), id)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, c)
}

// List handles GET /api/v1/clients.
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	p := parsePagination(r)

	clients, total, err := h.registry.ListClients(r.Context(), p)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, common.NewPageResponse(clients, total, p))
}

// AddFiling handles POST /api/v1/clients/{clientId}/filings.
func (h *ClientHandler) AddFiling(w http.ResponseWriter, r *http.Request) {
	id := common.ID(chi.URLParam(r, "clientId"))
	if err := id.Validate(); err != nil {
		writeValidationError(w, r, "clientId must be a valid UUID")
		return
	}

	var req AddFilingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, r, "invalid request body")
		return
	}
	period, err := filing.ParsePeriod(req.Period)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	dueDate, err := time.Parse(time.DateOnly, req.DueDate)
	if err != nil {
		writeValidationError(w, r, "due_date must be formatted as YYYY-MM-DD")
		return
	}

	f, err := h.registry.AddFiling(r.Context(), registry.AddFilingInput{
		ClientID:   id,
		ReturnType: filing.ReturnType(req.ReturnType),
		Period:     period,
		DueDate:    dueDate,
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeData(w, r, http.StatusCreated, f)
}

// ListFilings handles GET /api/v1/clients/{clientId}/filings.
func (h *ClientHandler) ListFilings(w http.ResponseWriter, r *http.Request) {
	id := common.ID(chi.URLParam(r, "clientId"))
	if err := id.Validate(); err != nil {
		writeValidationError(w, r, "clientId must be a valid UUID")
		return
	}
	p := parsePagination(r)

	filings, total, err := h.registry.ListFilings(r.Context(), id, p)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, common.NewPageResponse(filings, total, p))
}

// Package handlers implements the REST endpoints of the API server.
package handlers

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/complyhub/gst-sentinel/pkg/errors"
	"github.com/complyhub/gst-sentinel/pkg/types/common"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// parsePagination reads page/page_size query parameters with bounds applied.
func parsePagination(r *http.Request) common.Pagination {
	p := common.Pagination{}
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			p.Page = n
		}
	}
	if v := r.URL.Query().Get("page_size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			p.PageSize = n
		}
	}
	return p.Normalize(defaultPageSize, maxPageSize)
}

// callerFrom identifies who triggered a write, for audit fields.  The token
// guard is not an identity layer, so the caller self-reports via header.
func callerFrom(r *http.Request) string {
	if by := r.Header.Get("X-Requested-By"); by != "" {
		return by
	}
	return "api"
}

// writeData wraps a payload in the standard success envelope.
func writeData(w http.ResponseWriter, r *http.Request, statusCode int, data interface{}) {
	resp := common.APIResponse[interface{}]{
		Success:   true,
		Data:      data,
		RequestID: chimw.GetReqID(r.Context()),
		Timestamp: time.Now().UTC(),
	}
	writeJSON(w, statusCode, resp)
}

// writeAppError renders an error with the status its code maps to.  Internal
// details are masked; the code and message of an AppError pass through.
func writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	status := errors.HTTPStatus(code)

	message := err.Error()
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		message = appErr.Message
	}
	if status == http.StatusInternalServerError {
		code = errors.ErrCodeInternal
		message = "internal server error"
	}

	resp := common.APIResponse[interface{}]{
		Success: false,
		Error: &common.ErrorDetail{
			Code:    code.String(),
			Message: message,
		},
		RequestID: chimw.GetReqID(r.Context()),
		Timestamp: time.Now().UTC(),
	}
	writeJSON(w, status, resp)
}

func writeValidationError(w http.ResponseWriter, r *http.Request, message string) {
	writeAppError(w, r, errors.New(errors.ErrCodeValidation, message))
}

func writeJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/complyhub/gst-sentinel/internal/infrastructure/monitoring/logging"
)

func authProbe(token string) http.Handler {
	m := NewAuthMiddleware(token, logging.NewNopLogger())
	return m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
}

func TestAuthMiddleware_NoTokenConfigured(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil)
	w := httptest.NewRecorder()

	authProbe("").ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil)
	w := httptest.NewRecorder()

	authProbe("sekrit").ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "COMMON_003")
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil)
	req.Header.Set("Authorization", "Bearer nope")
	w := httptest.NewRecorder()

	authProbe("sekrit").ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil)
	req.Header.Set("Authorization", "Bearer sekrit")
	w := httptest.NewRecorder()

	authProbe("sekrit").ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

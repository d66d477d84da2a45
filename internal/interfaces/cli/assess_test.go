package cli

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeAPIServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func envelope(data interface{}) map[string]interface{} {
	return map[string]interface{}{
		"success":   true,
		"data":      data,
		"timestamp": time.Now().UTC(),
	}
}

func TestAssessCommand_SingleClient(t *testing.T) {
	clientID := uuid.New().String()
	srv := fakeAPIServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/clients/"+clientID+"/assess", r.URL.Path)
		json.NewEncoder(w).Encode(envelope(map[string]interface{}{
			"client_id":         clientID,
			"risk_score":        42,
			"compliance_status": "warning",
			"recommended_actions": []string{
				"File the pending GSTR-3B return for 2025-03",
			},
		}))
	})

	out, err := runCommand(t, "assess", clientID, "--server", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "score=42")
	assert.Contains(t, out, "status=warning")
	assert.Contains(t, out, "File the pending GSTR-3B return")
}

func TestAssessCommand_JSONOutput(t *testing.T) {
	clientID := uuid.New().String()
	srv := fakeAPIServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(envelope(map[string]interface{}{
			"client_id":         clientID,
			"risk_score":        7,
			"compliance_status": "good",
		}))
	})

	out, err := runCommand(t, "assess", clientID, "--server", srv.URL, "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"risk_score": 7`)
	assert.Contains(t, out, `"compliance_status": "good"`)
}

func TestAssessCommand_All(t *testing.T) {
	srv := fakeAPIServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/assessments/run", r.URL.Path)
		json.NewEncoder(w).Encode(envelope(map[string]interface{}{
			"id":               uuid.New().String(),
			"status":           "completed",
			"processed_count":  25,
			"successful_count": 24,
			"failed_count":     1,
		}))
	})

	out, err := runCommand(t, "assess", "--all", "--server", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "completed")
	assert.Contains(t, out, "processed=25")
	assert.Contains(t, out, "failed=1")
}

func TestAssessCommand_ArgValidation(t *testing.T) {
	// Neither a client-id nor --all.
	_, err := runCommand(t, "assess", "--server", "http://localhost:1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one")

	// Both at once.
	_, err = runCommand(t, "assess", uuid.New().String(), "--all", "--server", "http://localhost:1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one")

	// Malformed ID rejected before any network call.
	_, err = runCommand(t, "assess", "not-a-uuid", "--server", "http://localhost:1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "valid UUID")
}

func TestAssessCommand_APIErrorSurfaces(t *testing.T) {
	clientID := uuid.New().String()
	srv := fakeAPIServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error":   map[string]string{"code": "CLI_004", "message": "client is suspended"},
		})
	})

	_, err := runCommand(t, "assess", clientID, "--server", srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client is suspended")
}

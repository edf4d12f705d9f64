package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enjojoy/fredagent/pkg/errors"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestOK(t *testing.T) {
	rec := httptest.NewRecorder()
	OK(rec, map[string]string{"status": "healthy"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	resp := decode(t, rec)
	assert.Nil(t, resp.Error)
	assert.NotNil(t, resp.Data)
}

func TestFailHelpers(t *testing.T) {
	tests := []struct {
		name   string
		write  func(w http.ResponseWriter)
		status int
		code   string
	}{
		{"bad request", func(w http.ResponseWriter) { BadRequest(w, "bad", "") }, http.StatusBadRequest, "BAD_REQUEST"},
		{"unauthorized", func(w http.ResponseWriter) { Unauthorized(w, "no key", "") }, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"not found", func(w http.ResponseWriter) { NotFound(w, "missing", "") }, http.StatusNotFound, "NOT_FOUND"},
		{"method not allowed", func(w http.ResponseWriter) { MethodNotAllowed(w, "PUT") }, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED"},
		{"rate limited", func(w http.ResponseWriter) { RateLimited(w, "slow down") }, http.StatusTooManyRequests, "RATE_LIMITED"},
		{"internal", func(w http.ResponseWriter) { InternalError(w, errors.New("boom")) }, http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"unavailable", func(w http.ResponseWriter) { ServiceUnavailable(w, "down") }, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.write(rec)

			assert.Equal(t, tt.status, rec.Code)
			resp := decode(t, rec)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.Nil(t, resp.Data)
		})
	}
}

func TestInternalErrorHidesDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	InternalError(rec, errors.New("secret database password leaked"))
	assert.NotContains(t, rec.Body.String(), "secret")
}

func TestErrorFromType(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", errors.NewNotFoundError("series", "NOPE"), http.StatusNotFound, "NOT_FOUND"},
		{"validation", errors.NewValidationError("text", "", "too short"), http.StatusBadRequest, "BAD_REQUEST"},
		{"bad upstream key", &errors.AuthenticationError{Service: "fred", Message: "bad key"}, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
		{"upstream rate limit", errors.NewAPIError("fred", 429, "too many"), http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
		{"upstream 500", errors.NewAPIError("fred", 500, "boom"), http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
		{"upstream 400", errors.NewAPIError("fred", 400, "bad filter"), http.StatusBadRequest, "BAD_REQUEST"},
		{"unknown", errors.New("mystery"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			ErrorFromType(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			resp := decode(t, rec)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/loan-tracker/pkg/logger"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestJSON_Envelope(t *testing.T) {
	rec := httptest.NewRecorder()

	Created(rec, map[string]string{"id": "abc"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, map[string]interface{}{"id": "abc"}, body["data"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestError_Envelope(t *testing.T) {
	tests := []struct {
		name   string
		write  func(http.ResponseWriter)
		status int
	}{
		{"bad request", func(w http.ResponseWriter) { BadRequest(w, "Invalid request", errors.New("bad")) }, http.StatusBadRequest},
		{"not found", func(w http.ResponseWriter) { NotFound(w, "Loan not found") }, http.StatusNotFound},
		{"conflict", func(w http.ResponseWriter) { Conflict(w, "Already paid", errors.New("dup")) }, http.StatusConflict},
		{"unprocessable", func(w http.ResponseWriter) { UnprocessableEntity(w, "Not approved", errors.New("pending")) }, http.StatusUnprocessableEntity},
		{"locked", func(w http.ResponseWriter) { Locked(w, "Busy", errors.New("locked")) }, http.StatusLocked},
		{"internal", func(w http.ResponseWriter) { InternalServerError(w, "Oops", errors.New("db")) }, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.write(rec)

			assert.Equal(t, tt.status, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, false, body["success"])
			assert.NotEmpty(t, body["message"])
		})
	}
}

func TestServiceUnavailable_CarriesData(t *testing.T) {
	rec := httptest.NewRecorder()

	ServiceUnavailable(rec, "Service not ready", map[string]string{"database": "failed"})

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, map[string]interface{}{"database": "failed"}, body["data"])
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	called := false
	handler := CORSMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/v1/loans", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, called)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PATCH")
}

func TestLoggingMiddleware_ReportsStatus(t *testing.T) {
	var gotStatus int
	var gotPath string
	observer := func(r *http.Request, statusCode int, duration time.Duration) {
		gotStatus = statusCode
		gotPath = r.URL.Path
		assert.GreaterOrEqual(t, duration, time.Duration(0))
	}

	handler := LoggingMiddleware(logger.NewTestLogger(t), observer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		NotFound(w, "missing")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/loans/x", nil))

	assert.Equal(t, http.StatusNotFound, gotStatus)
	assert.Equal(t, "/api/v1/loans/x", gotPath)
}

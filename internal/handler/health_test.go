package handler_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/loan-tracker/internal/handler"
	"github.com/segyhp/loan-tracker/pkg/logger"
)

func newHealthHandler(t *testing.T) (*handler.HealthHandler, sqlmock.Sqlmock, *miniredis.Miniredis) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { client.Close() })

	h := handler.NewHealthHandler(sqlx.NewDb(db, "postgres"), client, time.Second, logger.NewTestLogger(t))
	return h, mock, mr
}

func readyChecks(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()

	var body struct {
		Data handler.HealthStatus `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Data.Checks
}

func TestHealthHandler_Health(t *testing.T) {
	h, _, _ := newHealthHandler(t)

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthHandler_Ready(t *testing.T) {
	t.Run("all dependencies up", func(t *testing.T) {
		h, mock, _ := newHealthHandler(t)
		mock.ExpectPing()

		rec := httptest.NewRecorder()
		h.Ready(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		checks := readyChecks(t, rec)
		assert.Equal(t, "ok", checks["database"])
		assert.Equal(t, "ok", checks["redis"])
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database down", func(t *testing.T) {
		h, mock, _ := newHealthHandler(t)
		mock.ExpectPing().WillReturnError(errors.New("connection refused"))

		rec := httptest.NewRecorder()
		h.Ready(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		checks := readyChecks(t, rec)
		assert.Contains(t, checks["database"], "connection refused")
		assert.Equal(t, "ok", checks["redis"])
	})

	t.Run("redis down", func(t *testing.T) {
		h, mock, mr := newHealthHandler(t)
		mock.ExpectPing()
		mr.Close()

		rec := httptest.NewRecorder()
		h.Ready(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		checks := readyChecks(t, rec)
		assert.Equal(t, "ok", checks["database"])
		assert.Contains(t, checks["redis"], "failed")
	})
}

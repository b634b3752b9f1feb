package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type stubHealthChecker struct {
	err error
}

func (s *stubHealthChecker) HealthCheck(ctx context.Context) error {
	return s.err
}

func TestHealthHandler_HandleHealth(t *testing.T) {
	handler := NewHealthHandler(nil, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.HandleHealth(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestHealthHandler_HandleReadiness(t *testing.T) {
	t.Run("ready with in-memory store", func(t *testing.T) {
		handler := NewHealthHandler(nil, zap.NewNop())

		req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
		rec := httptest.NewRecorder()
		handler.HandleReadiness(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"audit_store":"healthy"`)
	})

	t.Run("ready when store is reachable", func(t *testing.T) {
		handler := NewHealthHandler(&stubHealthChecker{}, zap.NewNop())

		req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
		rec := httptest.NewRecorder()
		handler.HandleReadiness(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unready when store is down", func(t *testing.T) {
		handler := NewHealthHandler(&stubHealthChecker{err: assert.AnError}, zap.NewNop())

		req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
		rec := httptest.NewRecorder()
		handler.HandleReadiness(rec, req)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), `"audit_store":"unhealthy"`)
	})
}

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/opslane/riskplane/models"
	"github.com/opslane/riskplane/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func getHistory(handler *HistoryHandler, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	handler.HandleListHistory(rec, req)
	return rec
}

func sampleAuditEntry(id int64) *models.AuditEntry {
	return &models.AuditEntry{
		ID:        id,
		RequestID: uuid.New(),
		Event: models.Event{
			OrderID:       "ORD-1042",
			Supplier:      "Acme Logistics",
			CurrentStatus: "delayed",
		},
		RiskSignal: models.RiskSignal{Level: models.RiskHigh, Source: models.SourceGuardrail},
		Decision:   models.Decision{RiskLevel: models.RiskHigh, Action: models.ActionEscalate, Reason: "r"},
		ToolResult: models.ToolExecutionResult{ToolName: "notify_ops_team", Succeeded: true},
		Outcome:    models.OutcomeComplete,
		Timestamp:  time.Now(),
	}
}

func TestHistoryHandler_HandleListHistory(t *testing.T) {
	t.Run("defaults to limit 50", func(t *testing.T) {
		service := new(MockPipelineService)
		service.On("History", mock.Anything, models.AuditFilter{Limit: 50}).
			Return([]*models.AuditEntry{sampleAuditEntry(2), sampleAuditEntry(1)}, nil)

		handler := NewHistoryHandler(service, zap.NewNop())
		rec := getHistory(handler, "/api/v1/history")

		assert.Equal(t, http.StatusOK, rec.Code)

		var envelope struct {
			Data []*models.AuditEntry `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
		require.Len(t, envelope.Data, 2)
		assert.Equal(t, int64(2), envelope.Data[0].ID)
		service.AssertExpectations(t)
	})

	t.Run("passes filters through", func(t *testing.T) {
		service := new(MockPipelineService)
		service.On("History", mock.Anything, models.AuditFilter{
			OrderID:   "ORD-1042",
			RiskLevel: models.RiskHigh,
			Limit:     10,
			Offset:    5,
		}).Return([]*models.AuditEntry{}, nil)

		handler := NewHistoryHandler(service, zap.NewNop())
		rec := getHistory(handler, "/api/v1/history?order_id=ORD-1042&risk_level=HIGH&limit=10&offset=5")

		assert.Equal(t, http.StatusOK, rec.Code)
		service.AssertExpectations(t)
	})

	t.Run("empty result serializes as empty array", func(t *testing.T) {
		service := new(MockPipelineService)
		service.On("History", mock.Anything, mock.Anything).Return(nil, nil)

		handler := NewHistoryHandler(service, zap.NewNop())
		rec := getHistory(handler, "/api/v1/history")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"data":[]`)
	})

	t.Run("rejects invalid risk level", func(t *testing.T) {
		service := new(MockPipelineService)
		handler := NewHistoryHandler(service, zap.NewNop())

		rec := getHistory(handler, "/api/v1/history?risk_level=SEVERE")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		service.AssertNotCalled(t, "History", mock.Anything, mock.Anything)
	})

	t.Run("rejects out-of-range limit", func(t *testing.T) {
		service := new(MockPipelineService)
		handler := NewHistoryHandler(service, zap.NewNop())

		rec := getHistory(handler, "/api/v1/history?limit=5000")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects negative offset", func(t *testing.T) {
		service := new(MockPipelineService)
		handler := NewHistoryHandler(service, zap.NewNop())

		rec := getHistory(handler, "/api/v1/history?offset=-1")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("store failure maps to 503", func(t *testing.T) {
		service := new(MockPipelineService)
		service.On("History", mock.Anything, mock.Anything).
			Return(nil, services.WrapAudit("failed to query audit entries", assert.AnError))

		handler := NewHistoryHandler(service, zap.NewNop())
		rec := getHistory(handler, "/api/v1/history")

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

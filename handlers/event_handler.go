package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/opslane/riskplane/models"
	"github.com/opslane/riskplane/services/pipeline"
	"github.com/opslane/riskplane/utils"
	"go.uber.org/zap"
)

// EventPayload represents an inbound order status update
type EventPayload struct {
	OrderID          string `json:"order_id" validate:"required"`
	Supplier         string `json:"supplier" validate:"required"`
	ExpectedDelivery string `json:"expected_delivery" validate:"required"`
	CurrentStatus    string `json:"current_status" validate:"required"`
}

// EventResponse represents the pipeline verdict returned to the caller
type EventResponse struct {
	RequestID   string `json:"request_id"`
	RiskLevel   string `json:"risk_level"`
	Decision    string `json:"decision"`
	Reason      string `json:"reason"`
	ActionTaken string `json:"action_taken"`
	Timestamp   string `json:"timestamp"`
}

// PipelineService defines the pipeline operations the handler consumes
type PipelineService interface {
	ProcessEvent(ctx context.Context, req models.EventRequest) (*pipeline.Result, error)
	History(ctx context.Context, filter models.AuditFilter) ([]*models.AuditEntry, error)
}

// EventHandler handles event ingestion HTTP requests
type EventHandler struct {
	service PipelineService
	logger  *zap.Logger
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(service PipelineService, logger *zap.Logger) *EventHandler {
	return &EventHandler{
		service: service,
		logger:  logger,
	}
}

// HandleProcessEvent handles POST /api/v1/events
func (h *EventHandler) HandleProcessEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := uuid.New()

	var payload EventPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.logger.Warn("failed to parse event body",
			zap.String("request_id", requestID.String()),
			zap.Error(err))
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := utils.ValidateStruct(&payload); err != nil {
		h.logger.Warn("event validation failed",
			zap.String("request_id", requestID.String()),
			zap.Error(err))
		HandleValidationError(w, err, h.logger)
		return
	}

	expectedDelivery, err := time.Parse("2006-01-02", payload.ExpectedDelivery)
	if err != nil {
		_ = utils.WriteBadRequest(w, "expected_delivery must be a date in YYYY-MM-DD format", nil)
		return
	}

	req := models.EventRequest{
		RequestID: requestID,
		Event:     models.NewEvent(payload.OrderID, payload.Supplier, expectedDelivery, payload.CurrentStatus),
	}

	h.logger.Debug("processing event request",
		zap.String("request_id", requestID.String()),
		zap.String("order_id", payload.OrderID))

	result, err := h.service.ProcessEvent(ctx, req)
	if err != nil {
		h.logger.Error("failed to process event",
			zap.String("request_id", requestID.String()),
			zap.Error(err))
		HandleServiceError(w, err, h.logger)
		return
	}

	response := EventResponse{
		RequestID:   result.RequestID.String(),
		RiskLevel:   string(result.RiskLevel),
		Decision:    string(result.Decision),
		Reason:      result.Reason,
		ActionTaken: string(result.ActionTaken),
		Timestamp:   result.Timestamp.UTC().Format(time.RFC3339),
	}

	if err := utils.WriteOK(w, response); err != nil {
		h.logger.Error("failed to write response",
			zap.String("request_id", requestID.String()),
			zap.Error(err))
	}
}

package handlers

import (
	"net/http"
	"strconv"

	"github.com/opslane/riskplane/models"
	"github.com/opslane/riskplane/utils"
	"go.uber.org/zap"
)

const defaultHistoryLimit = 50

// HistoryHandler serves ordered, filtered audit history
type HistoryHandler struct {
	service PipelineService
	logger  *zap.Logger
}

// NewHistoryHandler creates a new HistoryHandler
func NewHistoryHandler(service PipelineService, logger *zap.Logger) *HistoryHandler {
	return &HistoryHandler{
		service: service,
		logger:  logger,
	}
}

// HandleListHistory handles GET /api/v1/history.
// Query params: order_id, risk_level, limit, offset. Entries come back
// most recent first.
func (h *HistoryHandler) HandleListHistory(w http.ResponseWriter, r *http.Request) {
	filter := models.AuditFilter{
		OrderID: r.URL.Query().Get("order_id"),
		Limit:   defaultHistoryLimit,
	}

	if level := r.URL.Query().Get("risk_level"); level != "" {
		riskLevel := models.RiskLevel(level)
		if !riskLevel.Valid() {
			_ = utils.WriteBadRequest(w, "risk_level must be one of LOW, MEDIUM, HIGH", nil)
			return
		}
		filter.RiskLevel = riskLevel
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 || limit > 500 {
			_ = utils.WriteBadRequest(w, "limit must be an integer between 1 and 500", nil)
			return
		}
		filter.Limit = limit
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil || offset < 0 {
			_ = utils.WriteBadRequest(w, "offset must be a non-negative integer", nil)
			return
		}
		filter.Offset = offset
	}

	entries, err := h.service.History(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to query history", zap.Error(err))
		HandleServiceError(w, err, h.logger)
		return
	}

	if entries == nil {
		entries = []*models.AuditEntry{}
	}
	if err := utils.WriteOK(w, entries); err != nil {
		h.logger.Error("failed to write history response", zap.Error(err))
	}
}

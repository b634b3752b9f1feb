package handlers

import (
	"net/http"

	"github.com/opslane/riskplane/services"
	"github.com/opslane/riskplane/utils"
	"go.uber.org/zap"
)

// HandleServiceError maps domain errors to HTTP responses
func HandleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if err == nil {
		return
	}

	details := services.GetErrorDetails(err)

	switch {
	case services.IsNotFoundError(err):
		if err := utils.WriteNotFound(w, err.Error()); err != nil {
			logger.Error("failed to write not found response", zap.Error(err))
		}

	case services.IsValidationError(err):
		if err := utils.WriteBadRequest(w, err.Error(), details); err != nil {
			logger.Error("failed to write bad request response", zap.Error(err))
		}

	case services.IsCancelledError(err):
		// 499 in nginx terms; Go's stdlib has no constant for it
		if err := utils.WriteJSON(w, 499, utils.ErrorResponse{
			Error:   "request_cancelled",
			Message: "request cancelled",
			Details: details,
		}); err != nil {
			logger.Error("failed to write cancellation response", zap.Error(err))
		}

	case services.IsAuditError(err):
		logger.Error("audit store failure", zap.Error(err))
		if err := utils.WriteJSON(w, http.StatusServiceUnavailable, utils.ErrorResponse{
			Error:   "audit_unavailable",
			Message: "decision could not be recorded",
			Details: details,
		}); err != nil {
			logger.Error("failed to write audit error response", zap.Error(err))
		}

	case services.IsExternalError(err):
		if err := utils.WriteJSON(w, http.StatusBadGateway, utils.ErrorResponse{
			Error:   "bad_gateway",
			Message: err.Error(),
			Details: details,
		}); err != nil {
			logger.Error("failed to write bad gateway response", zap.Error(err))
		}

	default:
		logger.Error("unhandled error type",
			zap.Error(err),
			zap.String("error_type", string(services.GetErrorType(err))))
		if err := utils.WriteInternalServerError(w, "An unexpected error occurred"); err != nil {
			logger.Error("failed to write internal error response", zap.Error(err))
		}
	}
}

// HandleValidationError handles validation errors from request parsing
func HandleValidationError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if utils.IsValidationError(err) {
		fields := utils.GetValidationFields(err)
		details := make(map[string]interface{})
		for k, v := range fields {
			details[k] = v
		}
		if err := utils.WriteBadRequest(w, "Validation failed", details); err != nil {
			logger.Error("failed to write validation error response", zap.Error(err))
		}
		return
	}

	if err := utils.WriteBadRequest(w, err.Error(), nil); err != nil {
		logger.Error("failed to write validation error response", zap.Error(err))
	}
}

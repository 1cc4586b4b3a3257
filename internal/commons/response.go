package commons

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	apperrors "repairflow/internal/errors"
)

type ErrorResponse struct {
	TraceID     string                       `json:"traceId"`
	Status      int                          `json:"status"`
	Error       string                       `json:"error"`
	Message     string                       `json:"message"`
	Details     []apperrors.ValidationDetail `json:"details,omitempty"`
	Instruction string                       `json:"instruction,omitempty"`
	Timestamp   time.Time                    `json:"timestamp"`
}

func WriteJSON(w http.ResponseWriter, status int, data interface{}, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}

// WriteError maps an application error onto its status code and error code.
// Anything unrecognised is logged and reported as a 500 without its message.
func WriteError(w http.ResponseWriter, r *http.Request, err error, logger *zap.Logger) {
	traceID := TraceID(r.Context())
	resp := ErrorResponse{
		TraceID:   traceID,
		Message:   err.Error(),
		Timestamp: time.Now().UTC(),
	}

	if ve, ok := apperrors.IsValidationError(err); ok {
		resp.Status, resp.Error = http.StatusBadRequest, "VALIDATION_ERROR"
		resp.Message = ve.Message
		resp.Details = ve.Details
	} else if _, ok := apperrors.IsNotFoundError(err); ok {
		resp.Status, resp.Error = http.StatusNotFound, "NOT_FOUND"
	} else if _, ok := apperrors.IsUnauthorizedError(err); ok {
		resp.Status, resp.Error = http.StatusUnauthorized, "UNAUTHORIZED"
	} else if ce, ok := apperrors.IsConfigurationError(err); ok {
		resp.Status, resp.Error = http.StatusInternalServerError, "CONFIGURATION_ERROR"
		resp.Instruction = ce.Instruction
		logger.Error("missing configuration", zap.String("traceId", traceID), zap.Error(err))
	} else if ue, ok := apperrors.IsUpstreamError(err); ok {
		resp.Status, resp.Error = http.StatusBadGateway, "UPSTREAM_ERROR"
		resp.Message = ue.Provider + ": " + ue.Message
		logger.Error("upstream failure", zap.String("traceId", traceID), zap.Error(err))
	} else {
		resp.Status, resp.Error = http.StatusInternalServerError, "INTERNAL_ERROR"
		resp.Message = "an unexpected error occurred"
		logger.Error("unexpected error", zap.String("traceId", traceID), zap.Error(err))
	}

	WriteJSON(w, resp.Status, resp, logger)
}

// DecodeBody reads a JSON request body, reporting a malformed one as a
// validation error on the "body" field.
func DecodeBody(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperrors.NewValidationError("invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
	}
	return nil
}

package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/yurfit/steam-scout/internal/middleware"
	"github.com/yurfit/steam-scout/pkg/errors"
	"github.com/yurfit/steam-scout/pkg/logger"
)

// apiResponse is the success envelope for every JSON endpoint.
type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// writeJSON writes a success envelope.
func writeJSON(w http.ResponseWriter, status int, data interface{}, logger *logger.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(apiResponse{Success: true, Data: data}); err != nil {
		logger.WithError(err).Error("Failed to encode response")
	}
}

// writeError writes err as the standard error envelope, converting unknown
// errors to a 500.
func writeError(w http.ResponseWriter, r *http.Request, err error, logger *logger.Logger) {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		appErr = errors.NewInternalError("Internal server error", err)
	}

	if appErr.StatusCode >= http.StatusInternalServerError {
		logger.WithError(appErr).Error("Request failed")
	} else {
		logger.WithError(appErr).Debug("Request rejected")
	}

	response := &errors.ErrorResponse{}
	response.Error.Type = appErr.Type
	response.Error.Message = appErr.Message
	response.Error.Details = appErr.Details
	response.Error.Timestamp = time.Now().UTC().Format(time.RFC3339)
	if requestID, ok := r.Context().Value(middleware.RequestIDContextKey).(string); ok {
		response.Error.RequestID = requestID
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode)

	if encodeErr := json.NewEncoder(w).Encode(response); encodeErr != nil {
		logger.WithError(encodeErr).Error("Failed to encode error response")
	}
}

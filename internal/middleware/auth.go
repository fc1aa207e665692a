package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/yurfit/steam-scout/internal/domain"
	"github.com/yurfit/steam-scout/internal/service"
	"github.com/yurfit/steam-scout/pkg/errors"
	"github.com/yurfit/steam-scout/pkg/logger"
)

// ContextKey represents keys used in request context
type ContextKey string

const (
	// UserContextKey is the key for user information in context
	UserContextKey ContextKey = "user"
	// RequestIDContextKey is the key for request ID in context
	RequestIDContextKey ContextKey = "request_id"
)

// UserFromContext extracts the authenticated user, if any.
func UserFromContext(ctx context.Context) (*domain.UserProfile, bool) {
	user, ok := ctx.Value(UserContextKey).(*domain.UserProfile)
	return user, ok
}

// Auth creates an authentication middleware verifying Clerk session tokens.
func Auth(authService service.AuthService, logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeErrorResponse(w, r, errors.NewAuthenticationError("Authorization header is required"), logger)
				return
			}

			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeErrorResponse(w, r, errors.NewAuthenticationError("Invalid authorization header format"), logger)
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")
			if token == "" {
				writeErrorResponse(w, r, errors.NewAuthenticationError("Token is required"), logger)
				return
			}

			ctx := r.Context()
			userProfile, err := authService.VerifySessionToken(ctx, token)
			if err != nil {
				logger.WithError(err).Debug("Session token validation failed")
				writeErrorResponse(w, r, errors.NewAuthenticationError("Invalid or expired token"), logger)
				return
			}

			ctx = context.WithValue(ctx, UserContextKey, userProfile)
			r = r.WithContext(ctx)

			logger.WithField("user_id", userProfile.Sub).Debug("User authenticated")

			next.ServeHTTP(w, r)
		})
	}
}

// RequestID creates a middleware that adds a unique request ID to each request
func RequestID(logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := generateRequestID()

			ctx := context.WithValue(r.Context(), RequestIDContextKey, requestID)
			r = r.WithContext(ctx)

			w.Header().Set("X-Request-ID", requestID)

			next.ServeHTTP(w, r)
		})
	}
}

// generateRequestID generates a simple request ID
func generateRequestID() string {
	return fmt.Sprintf("%d-%d", time.Now().Unix(), time.Now().Nanosecond())
}

// writeErrorResponse writes an AppError as the standard JSON envelope.
func writeErrorResponse(w http.ResponseWriter, r *http.Request, appErr *errors.AppError, logger *logger.Logger) {
	logger.WithError(appErr).Debug("Request rejected")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode)

	response := &errors.ErrorResponse{}
	response.Error.Type = appErr.Type
	response.Error.Message = appErr.Message
	response.Error.Details = appErr.Details
	response.Error.Timestamp = time.Now().UTC().Format(time.RFC3339)

	if requestID, ok := r.Context().Value(RequestIDContextKey).(string); ok {
		response.Error.RequestID = requestID
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.WithError(err).Error("Failed to encode error response")
	}
}

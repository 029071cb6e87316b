// Package respond provides utilities for sending HTTP responses in JSON format.
// It includes error handling with sanitization to prevent leaking sensitive information.
package respond

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"smart-summarizer/internal/domain/entity"
	"smart-summarizer/internal/observability/logging"
	"smart-summarizer/internal/observability/requestid"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// JSON writes a JSON response with the given status code and data.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			// Log the error but cannot send error response as headers already sent
			slog.Default().Error("failed to encode JSON response",
				slog.Int("status_code", code),
				slog.Any("error", err))
		}
	}
}

// SafeError sanitizes error messages before returning them to users.
// Errors whose message reads like input validation are returned as-is;
// anything else, and every 5xx, becomes "internal server error" with the
// masked details logged.
func SafeError(w http.ResponseWriter, code int, err error) {
	if err == nil {
		return
	}

	msg := err.Error()
	safeErrors := []string{
		"required",
		"invalid",
		"must be",
		"must not",
		"cannot be",
		"too large",
		"rate limit",
	}

	isSafe := false
	lowerMsg := strings.ToLower(msg)
	for _, safe := range safeErrors {
		if strings.Contains(lowerMsg, safe) {
			isSafe = true
			break
		}
	}
	if code >= 500 {
		isSafe = false
	}

	if isSafe {
		JSON(w, code, ErrorBody{Error: msg})
		return
	}
	slog.Default().Error("internal server error",
		slog.String("status", http.StatusText(code)),
		slog.Int("code", code),
		slog.String("error", SanitizeError(err)))
	JSON(w, code, ErrorBody{Error: "internal server error"})
}

// AppError is an error type that carries a user-facing message.
type AppError struct {
	UserMsg string // Message to display to users
	Err     error  // Internal error (logged for debugging)
	Code    int    // HTTP status code
}

// Error returns the error message, implementing the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.UserMsg
}

// Unwrap returns the underlying error, implementing the errors.Unwrap interface.
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError with the given parameters.
func NewAppError(code int, userMsg string, err error) *AppError {
	return &AppError{Code: code, UserMsg: userMsg, Err: err}
}

// FromError classifies a pipeline error into a status code and a message that
// is safe to show:
//
//	invalid argument      400
//	body too large        413
//	extraction failure    422
//	inference failure     502
//	deadline exceeded     504
//	anything else         500
func FromError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var (
		validationErr *entity.ValidationError
		extractionErr *entity.ExtractionError
		maxBytesErr   *http.MaxBytesError
	)
	switch {
	case errors.As(err, &maxBytesErr):
		return NewAppError(http.StatusRequestEntityTooLarge,
			fmt.Sprintf("request body must not exceed %d bytes", maxBytesErr.Limit), err)
	case errors.As(err, &validationErr):
		return NewAppError(http.StatusBadRequest, validationErr.Message, err)
	case errors.Is(err, entity.ErrInvalidArgument):
		return NewAppError(http.StatusBadRequest, "invalid argument", err)
	case errors.As(err, &extractionErr):
		return NewAppError(http.StatusUnprocessableEntity, SanitizeError(extractionErr), err)
	case errors.Is(err, context.DeadlineExceeded):
		return NewAppError(http.StatusGatewayTimeout, "summarization timed out", err)
	case errors.Is(err, entity.ErrInference):
		return NewAppError(http.StatusBadGateway, "summarization backend failed", err)
	default:
		return NewAppError(http.StatusInternalServerError, "internal server error", err)
	}
}

// Failure writes the response for err as classified by FromError, tagged with
// the request id. Server-side failures are logged with secrets masked through
// the request-scoped logger, which already carries the request id.
func Failure(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}
	appErr := FromError(err)
	reqID := requestid.FromContext(r.Context())

	if appErr.Code >= 500 && appErr.Err != nil {
		logging.ForRequest(r.Context()).Error("request failed",
			slog.Int("code", appErr.Code),
			slog.String("user_message", appErr.UserMsg),
			slog.String("error", SanitizeError(appErr.Err)))
	}
	JSON(w, appErr.Code, ErrorBody{Error: appErr.UserMsg, RequestID: reqID})
}

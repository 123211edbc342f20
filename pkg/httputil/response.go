package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/AsimRauf/jewellery-store-sub002/pkg/errors"
	"github.com/AsimRauf/jewellery-store-sub002/pkg/logger"
	"github.com/AsimRauf/jewellery-store-sub002/pkg/validator"
)

// Response is the JSON envelope used by the admin catalog endpoints.
type Response struct {
	Data  any            `json:"data,omitempty"`
	Error *ErrorResponse `json:"error,omitempty"`
}

// ErrorResponse represents an error in the envelope format.
type ErrorResponse struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// MessageResponse is the flat error body returned by public read endpoints.
type MessageResponse struct {
	Error string `json:"error"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes an enveloped error response. AppErrors keep their code
// and message; anything else is logged and reported as an internal error.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	status, code, message := classify(err)
	if status == http.StatusInternalServerError {
		logInternal(r, err, fallback)
	}

	WriteJSON(w, status, Response{
		Error: &ErrorResponse{
			Code:      code,
			Message:   message,
			RequestID: logger.CorrelationIDFromContext(r.Context()),
		},
	})
}

// WriteMessage writes a flat {"error": message} body. Internal errors are
// logged and their cause is replaced with a generic message.
func WriteMessage(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		WriteJSON(w, http.StatusBadRequest, MessageResponse{Error: valErr.Error()})
		return
	}

	status, _, message := classify(err)
	if status == http.StatusInternalServerError {
		logInternal(r, err, fallback)
	}
	WriteJSON(w, status, MessageResponse{Error: message})
}

// WriteValidationError writes an enveloped validation error with field-level
// messages.
func WriteValidationError(w http.ResponseWriter, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		WriteJSON(w, http.StatusBadRequest, Response{
			Error: &ErrorResponse{
				Code:    "VALIDATION_ERROR",
				Message: "request validation failed",
				Fields:  valErr.Fields(),
			},
		})
		return
	}

	WriteJSON(w, http.StatusBadRequest, Response{
		Error: &ErrorResponse{Code: "INVALID_INPUT", Message: err.Error()},
	})
}

func classify(err error) (status int, code, message string) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Status == http.StatusInternalServerError {
			return appErr.Status, appErr.Code, "Internal server error"
		}
		return appErr.Status, appErr.Code, appErr.Message
	}

	switch status = apperrors.HTTPStatus(err); status {
	case http.StatusNotFound:
		return status, "NOT_FOUND", "resource not found"
	case http.StatusBadRequest:
		return status, "INVALID_INPUT", err.Error()
	case http.StatusServiceUnavailable:
		return status, "SERVICE_UNAVAILABLE", "service unavailable"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error"
	}
}

// logInternal prefers the request-scoped logger set by the RequestLogger
// middleware over the fallback.
func logInternal(r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() && fallback != nil {
		l = fallback
	}
	l.ErrorContext(r.Context(), "internal error",
		slog.String("error", err.Error()),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)
}

package httpapi

import (
	"errors"
	"net/http"

	"github.com/nyxwell/transmute/internal/storage"
	"github.com/nyxwell/transmute/pkg/transmute"
)

// APIError is the uniform error envelope returned by every endpoint.
type APIError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
	HTTPStatus int            `json:"-"`
}

func (e *APIError) Error() string { return e.Message }

// NewAPIError builds an APIError with no structured details.
func NewAPIError(code, message string, httpStatus int) *APIError {
	return &APIError{Code: code, Message: message, HTTPStatus: httpStatus}
}

var (
	ErrBadRequest       = NewAPIError("BAD_REQUEST", "invalid request", http.StatusBadRequest)
	ErrUnauthorized     = NewAPIError("UNAUTHORIZED", "authentication required", http.StatusUnauthorized)
	ErrValidationFailed = NewAPIError("VALIDATION_FAILED", "validation failed", http.StatusBadRequest)
	ErrInternal         = NewAPIError("INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
	ErrNoRoute          = NewAPIError("NO_ROUTE", "no chain connects the requested categories", http.StatusUnprocessableEntity)
)

// TranslateError maps a domain error into the APIError that describes it to
// a caller, defaulting to ErrInternal for anything unrecognized.
func TranslateError(err error) *APIError {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var execFailed *transmute.ExecutionFailedError
	if errors.As(err, &execFailed) {
		return NewAPIError("EXECUTION_FAILED", err.Error(), http.StatusBadGateway)
	}

	switch {
	case errors.Is(err, transmute.ErrNoStartingOrTerminatingEdge), errors.Is(err, transmute.ErrNoChain):
		return NewAPIError("NO_ROUTE", err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, storage.ErrAPIKeyNotFound):
		return NewAPIError("INVALID_API_KEY", "invalid or revoked API key", http.StatusUnauthorized)
	case errors.Is(err, storage.ErrUnknownFunction):
		return NewAPIError("UNKNOWN_FUNCTION", err.Error(), http.StatusInternalServerError)
	default:
		return NewAPIError("INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
	}
}

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kevin07696/payment-gateway/internal/domain"
)

// errorBody is the JSON error envelope returned by every endpoint
type errorBody struct {
	Error struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Details map[string]interface{} `json:"details,omitempty"`
	} `json:"error"`
}

// WriteJSON writes a JSON response with the given status
func WriteJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteError maps a domain error onto an HTTP status and the error envelope
func WriteError(w http.ResponseWriter, err error) {
	var body errorBody
	body.Error.Code = string(domain.GetErrorCode(err))
	body.Error.Message = err.Error()

	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		body.Error.Message = domainErr.Message
		if len(domainErr.Details) > 0 {
			body.Error.Details = domainErr.Details
		}
	}

	WriteJSON(w, statusFor(err), body)
}

func statusFor(err error) int {
	switch {
	case domain.IsValidationError(err):
		return http.StatusBadRequest
	case domain.IsNotFoundError(err):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrIdempotencyConflict):
		return http.StatusConflict
	case domain.IsInvariantViolation(err):
		return http.StatusConflict
	case domain.IsDependencyError(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

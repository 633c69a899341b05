package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/klartext/klartext/internal/core/domain"
	"github.com/klartext/klartext/internal/logger"
)

// Stable machine-readable error codes.
const (
	codeValidation          = "VALIDATION_ERROR"
	codeProviderTimeout     = "PROVIDER_TIMEOUT"
	codeProviderUnavailable = "PROVIDER_UNAVAILABLE"
	codeVerificationFailed  = "VERIFICATION_FAILED"
	codeRateLimited         = "RATE_LIMITED"
	codeInternal            = "INTERNAL_ERROR"
)

// errorBody is the envelope for all error responses.
type errorBody struct {
	Error errorDetail `json:"error"`
}

// errorDetail carries the code and a human-readable message.
type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: message}})
}

// writeDomainError maps pipeline errors onto HTTP statuses and codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrEmptyInput),
		errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInputTooLarge):
		writeError(w, http.StatusBadRequest, codeValidation, err.Error())
	case errors.Is(err, domain.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, codeRateLimited, "request quota exceeded")
	case errors.Is(err, domain.ErrVerificationFailed):
		writeError(w, http.StatusUnprocessableEntity, codeVerificationFailed, "output failed fidelity checks")
	default:
		if kind, ok := domain.ProviderErrorKindOf(err); ok {
			switch kind {
			case domain.ProviderTimeout:
				writeError(w, http.StatusGatewayTimeout, codeProviderTimeout, "inference provider timed out")
			default:
				writeError(w, http.StatusBadGateway, codeProviderUnavailable, "inference provider unavailable")
			}
			return
		}
		logger.Error("Simplify request failed: %v", err)
		writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
	}
}

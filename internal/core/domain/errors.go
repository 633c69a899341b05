package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrEmptyInput indicates the submitted text was empty after trimming.
	ErrEmptyInput = errors.New("empty input")

	// ErrInvalidInput indicates malformed input (unknown language or level).
	ErrInvalidInput = errors.New("invalid input")

	// ErrInputTooLarge indicates the input exceeds the per-request size ceiling.
	ErrInputTooLarge = errors.New("input too large")

	// ErrCacheMiss indicates no cache entry exists for a fingerprint.
	ErrCacheMiss = errors.New("cache miss")

	// ErrVerificationFailed indicates the fidelity checks rejected an output.
	ErrVerificationFailed = errors.New("verification failed")

	// ErrRateLimited indicates the caller exceeded the request quota.
	// It is surfaced immediately and never retried internally.
	ErrRateLimited = errors.New("rate limited")

	// ErrTTSUnavailable indicates the text-to-speech provider is not configured.
	ErrTTSUnavailable = errors.New("tts provider unavailable")
)

// ProviderErrorKind classifies an inference provider failure.
// The fallback controller branches on the kind, never on error text.
type ProviderErrorKind string

// Provider failure kinds.
const (
	// ProviderTimeout means the per-call deadline elapsed.
	ProviderTimeout ProviderErrorKind = "timeout"

	// ProviderUnavailable means the provider could not be reached.
	ProviderUnavailable ProviderErrorKind = "unavailable"

	// ProviderRejected means the provider refused the request
	// (quota, malformed prompt, content policy).
	ProviderRejected ProviderErrorKind = "rejected"
)

// ProviderError is a classified inference provider failure.
type ProviderError struct {
	// Provider is the name of the failing provider.
	Provider string

	// Kind classifies the failure.
	Kind ProviderErrorKind

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: provider %s", e.Provider, e.Kind)
	}
	return fmt.Sprintf("%s: provider %s: %v", e.Provider, e.Kind, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError builds a classified provider failure.
func NewProviderError(provider string, kind ProviderErrorKind, err error) *ProviderError {
	return &ProviderError{Provider: provider, Kind: kind, Err: err}
}

// ProviderErrorKindOf extracts the failure kind from an error chain.
// Returns false if the error is not a provider failure.
func ProviderErrorKindOf(err error) (ProviderErrorKind, bool) {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind, true
	}
	return "", false
}

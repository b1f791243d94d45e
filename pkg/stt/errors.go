package stt

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	// ErrAPIKeyRequired indicates no credentials were provided.
	ErrAPIKeyRequired = errors.New("stt: API key required")

	// ErrInvalidConfig indicates the configuration failed validation.
	ErrInvalidConfig = errors.New("stt: invalid configuration")

	// ErrEmptyAudio indicates the clip had no samples to transcribe.
	ErrEmptyAudio = errors.New("stt: empty audio")

	// ErrProviderClosed indicates use after Close.
	ErrProviderClosed = errors.New("stt: provider closed")

	// ErrNoProviders indicates a chain with no configured providers.
	ErrNoProviders = errors.New("stt: no providers configured")
)

// APIError represents an error returned by a provider's API.
type APIError struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Message is the error message from the API.
	Message string

	// Code is the provider-specific error code, if any.
	Code string

	// Provider identifies which provider returned the error.
	Provider string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("stt [%s]: API error %d (%s): %s", e.Provider, e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("stt [%s]: API error %d: %s", e.Provider, e.StatusCode, e.Message)
}

// IsRateLimited returns true if the error is a rate limit error.
func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == 429
}

// IsUnauthorized returns true if the error is an authentication error.
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == 401
}

// IsForbidden returns true if access is denied.
func (e *APIError) IsForbidden() bool {
	return e.StatusCode == 403
}

// IsNotFound returns true if the resource was not found (HTTP 404).
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == 404
}

// IsServerError returns true for 5xx server errors.
func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}

// IsRetryable returns true if the request can be retried.
func (e *APIError) IsRetryable() bool {
	return e.IsRateLimited() || e.IsServerError()
}

// ProviderError wraps an error with provider context.
type ProviderError struct {
	// Provider identifies the provider.
	Provider string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	return fmt.Sprintf("stt [%s]: %v", e.Provider, e.Err)
}

// Unwrap returns the underlying error.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// WrapError wraps an error with provider context.
func WrapError(provider string, err error) error {
	if err == nil {
		return nil
	}
	return &ProviderError{Provider: provider, Err: err}
}

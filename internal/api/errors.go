package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrMissingAuctionID is returned before any network call when an auction id
// is required but empty.
var ErrMissingAuctionID = errors.New("auction id is required")

// Error is a structured failure response from the backend.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.Status)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.Status, e.Message)
}

// UserMessage returns the backend's message verbatim when present, otherwise
// a generic fallback suitable for display.
func (e *Error) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return "Something went wrong. Please try again."
}

// IsUnauthorized reports whether the error is an authorization failure (401).
// Callers must treat it as session termination, never silently retry.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// IsDomainError reports whether the error is a domain validation failure: a
// non-401 client error carrying a backend message. Domain errors render
// inline and never cause a redirect.
func IsDomainError(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status >= 400 && apiErr.Status < 500 &&
		apiErr.Status != http.StatusUnauthorized && apiErr.Message != ""
}

// TransportError wraps a failure where no backend response was obtained
// (network unreachable, timeout, truncated body). Transport failures are
// generic and retryable; they never carry a backend message.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransport reports whether the error is a transport-level failure.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

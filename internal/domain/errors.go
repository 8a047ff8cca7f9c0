package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for domain operations
var (
	// ErrNotFound indicates the requested catalog entry or list does not exist
	ErrNotFound = errors.New("not found")

	// ErrServerOffline indicates the remote API is unreachable
	ErrServerOffline = errors.New("remote API is unreachable")

	// ErrUnauthorized indicates the credential is missing or invalid
	ErrUnauthorized = errors.New("not signed in")

	// ErrMutationInFlight indicates a list already has an outstanding mutation
	ErrMutationInFlight = errors.New("list has a pending change")

	// ErrListNotFound indicates no list has the given slug
	ErrListNotFound = errors.New("list not found")

	// ErrInvalidName indicates an empty or unusable list name
	ErrInvalidName = errors.New("list name cannot be empty")

	// ErrInvalidID indicates a missing or non-positive catalog id
	ErrInvalidID = errors.New("invalid catalog id")
)

// ErrorKind classifies failures for propagation decisions
type ErrorKind int

const (
	// KindUpstream is a failed remote call, shown inline to the user
	KindUpstream ErrorKind = iota
	// KindNotFound is an invalid or missing id, answered with a redirect
	KindNotFound
)

// APIError is the value every collaborator failure is converted into
type APIError struct {
	Status  int
	Message string
	Kind    ErrorKind
	Err     error
}

func (e *APIError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
	}
	return e.Message
}

func (e *APIError) Unwrap() error { return e.Err }

// NotFound reports whether the error should be handled as a redirect
func (e *APIError) NotFound() bool {
	return e.Kind == KindNotFound
}

// NewAPIError builds an APIError from an HTTP status and message
func NewAPIError(status int, message string) *APIError {
	kind := KindUpstream
	var cause error
	switch status {
	case http.StatusNotFound:
		kind = KindNotFound
		cause = ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		cause = ErrUnauthorized
	}
	if message == "" {
		message = http.StatusText(status)
	}
	return &APIError{Status: status, Message: message, Kind: kind, Err: cause}
}

// AsAPIError converts any error into an *APIError, preserving one if present
func AsAPIError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	kind := KindUpstream
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidID) {
		kind = KindNotFound
	}
	return &APIError{Message: err.Error(), Kind: kind, Err: err}
}

// IsNotFound reports whether err represents a missing or invalid id
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	return AsAPIError(err).NotFound()
}

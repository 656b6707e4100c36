package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a Pokedex error code.
type ErrorCode string

const (
	ErrInvalidRequest      ErrorCode = "INVALID_REQUEST"      // 400
	ErrNotFound            ErrorCode = "NOT_FOUND"            // 404
	ErrNoFetch             ErrorCode = "NO_FETCH"             // 409
	ErrUpstreamUnavailable ErrorCode = "UPSTREAM_UNAVAILABLE" // 502
	ErrUpstreamStatus      ErrorCode = "UPSTREAM_STATUS"      // 502
	ErrUpstreamDecode      ErrorCode = "UPSTREAM_DECODE"      // 502
	ErrInternal            ErrorCode = "INTERNAL"             // 500
)

// PokedexError represents a structured error with code, status, and details.
// Status is the status this process reports; the upstream HTTP status, when
// there is one, lives in Details["upstream_status"].
type PokedexError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *PokedexError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *PokedexError {
	return &PokedexError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for a resource the catalog API does not know.
func NewNotFound(resource, identifier string) *PokedexError {
	return &PokedexError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("%s not found: %s", resource, identifier),
		Details: map[string]any{"resource": resource, "identifier": identifier, "upstream_status": 404},
	}
}

// NewNoFetch creates a 409 error for a retry issued before any fetch.
func NewNoFetch() *PokedexError {
	return &PokedexError{
		Code:    ErrNoFetch,
		Status:  409,
		Message: "nothing to retry: no page has been requested yet",
	}
}

// NewUpstreamUnavailable creates a 502 error for network or transport failures.
func NewUpstreamUnavailable(what string, err error) *PokedexError {
	return &PokedexError{
		Code:    ErrUpstreamUnavailable,
		Status:  502,
		Message: fmt.Sprintf("failed to fetch %s: %v", what, err),
	}
}

// NewUpstreamStatus creates a 502 error for a non-success upstream response.
func NewUpstreamStatus(what string, status int) *PokedexError {
	return &PokedexError{
		Code:    ErrUpstreamStatus,
		Status:  502,
		Message: fmt.Sprintf("failed to fetch %s: %d", what, status),
		Details: map[string]any{"upstream_status": status},
	}
}

// NewUpstreamDecode creates a 502 error for an upstream body that is not valid JSON.
func NewUpstreamDecode(what string, err error) *PokedexError {
	return &PokedexError{
		Code:    ErrUpstreamDecode,
		Status:  502,
		Message: fmt.Sprintf("failed to decode %s: %v", what, err),
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *PokedexError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &PokedexError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a PokedexError with the given code.
func Is(err error, code ErrorCode) bool {
	var pErr *PokedexError
	if stderrors.As(err, &pErr) {
		return pErr.Code == code
	}
	return false
}

// UpstreamStatus returns the HTTP status reported by the catalog API, if any.
func UpstreamStatus(err error) (int, bool) {
	var pErr *PokedexError
	if !stderrors.As(err, &pErr) || pErr.Details == nil {
		return 0, false
	}
	status, ok := pErr.Details["upstream_status"].(int)
	return status, ok
}

// Message returns the single user-facing message for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var pErr *PokedexError
	if stderrors.As(err, &pErr) {
		return pErr.Message
	}
	return err.Error()
}

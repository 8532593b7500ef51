package shared

import "strings"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Stream was modified by another process")
	ErrStreamNotFound      = NewDomainError("STREAM_NOT_FOUND", "Event stream does not exist")
	ErrUnhandledEvent      = NewDomainError("UNHANDLED_EVENT", "No projection handler registered for event")
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrAccountLocked       = NewDomainError("ACCOUNT_LOCKED", "Account is temporarily locked")
)

// ValidationError reports every invariant an aggregate violates. It is
// raised before any store interaction; a failed validation appends nothing.
type ValidationError struct {
	Violations []string `json:"violations"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Violations, ", ")
}

// NewValidationError creates a validation error from the violated invariants
func NewValidationError(violations ...string) *ValidationError {
	return &ValidationError{Violations: violations}
}

// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidID       = errors.New("invalid ID")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrInvalidFormat   = errors.New("invalid format")

	// State errors
	ErrInvalidState    = errors.New("invalid state")
	ErrStateTransition = errors.New("invalid state transition")

	// Authorization errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Concurrency errors
	ErrConflict       = errors.New("conflict")
	ErrOptimisticLock = errors.New("optimistic lock failure")
	ErrSlotTaken      = errors.New("slot already taken")

	// Configuration errors
	ErrConfiguration = errors.New("configuration error")

	// External service errors
	ErrExternalService    = errors.New("external service error")
	ErrServiceUnavailable = errors.New("service unavailable")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "matching", "availability", "session"
	Op      string // Operation that failed, e.g., "Score", "Transition"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is reports whether the error matches the target kind.
func (e *DomainError) Is(target error) bool {
	return errors.Is(e.Kind, target) || (e.Err != nil && errors.Is(e.Err, target))
}

// NewDomainError creates a new DomainError without an underlying error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError creates a new DomainError wrapping an underlying error.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) || errors.Is(err, ErrValueOutOfRange) ||
		errors.Is(err, ErrInvalidFormat) || errors.Is(err, ErrInvalidID)
}

// IsAuthorization reports whether err is an authorization error.
func IsAuthorization(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrForbidden)
}

// IsState reports whether err is a state error.
func IsState(err error) bool {
	return errors.Is(err, ErrInvalidState) || errors.Is(err, ErrStateTransition)
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict reports whether err is a concurrency conflict error.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) || errors.Is(err, ErrOptimisticLock) ||
		errors.Is(err, ErrSlotTaken)
}

// ErrorKind returns a stable string tag for the error kind, suitable for
// API responses and structured logs.
func ErrorKind(err error) string {
	switch {
	case IsValidation(err):
		return "validation"
	case IsAuthorization(err):
		return "authorization"
	case IsState(err):
		return "state"
	case IsNotFound(err):
		return "not_found"
	case IsConflict(err):
		return "conflict"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	default:
		return "internal"
	}
}

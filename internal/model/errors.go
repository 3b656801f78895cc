package model

import (
	"errors"
	"fmt"
	"strings"
)

// Error categories. Every externally visible failure carries exactly one so
// callers can decide retry behaviour without string matching.
const (
	CategoryValidation    = "validation"
	CategoryTransport     = "transport"
	CategoryAuth          = "auth"
	CategoryRejection     = "rejection"
	CategoryStateConflict = "state_conflict"
	CategoryNotFound      = "not_found"
)

// Categorized is implemented by every error in the taxonomy.
type Categorized interface {
	error
	Category() string
}

// ValidationFailedError blocks a submission on field validation errors. It is
// never retried automatically; the itemized result is returned verbatim.
type ValidationFailedError struct {
	Result ValidationResult
}

func (e *ValidationFailedError) Error() string {
	errs := e.Result.Errors()
	fields := make([]string, 0, len(errs))
	for _, i := range errs {
		fields = append(fields, i.Field)
	}
	return fmt.Sprintf("validation failed on %d field(s): %s", len(errs), strings.Join(fields, ", "))
}

// Category returns CategoryValidation.
func (e *ValidationFailedError) Category() string { return CategoryValidation }

// NewValidationFailedError creates a validation failure from a result.
func NewValidationFailedError(result ValidationResult) *ValidationFailedError {
	return &ValidationFailedError{Result: result}
}

// TransportError is a timeout, connectivity failure or 5xx response that
// occurred before a provider decision. It is safely retryable.
type TransportError struct {
	Op         string
	StatusCode int
	Attempts   int
	Cause      error
}

func (e *TransportError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("transport failure in %s after %d attempt(s): status %d", e.Op, e.Attempts, e.StatusCode)
	}
	return fmt.Sprintf("transport failure in %s after %d attempt(s): %v", e.Op, e.Attempts, e.Cause)
}

func (e *TransportError) Unwrap() error { return e.Cause }

// Category returns CategoryTransport.
func (e *TransportError) Category() string { return CategoryTransport }

// NewTransportError creates a transport error for an operation.
func NewTransportError(op string, statusCode, attempts int, cause error) *TransportError {
	return &TransportError{Op: op, StatusCode: statusCode, Attempts: attempts, Cause: cause}
}

// AuthError is a credential or token failure (401 after one forced refresh,
// or a rejected token request). Surfaced distinctly so the caller can prompt
// for credential reconfiguration.
type AuthError struct {
	Op      string
	Message string
	Cause   error
}

func (e *AuthError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("authentication failed in %s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("authentication failed in %s: %v", e.Op, e.Cause)
}

func (e *AuthError) Unwrap() error { return e.Cause }

// Category returns CategoryAuth.
func (e *AuthError) Category() string { return CategoryAuth }

// NewAuthError creates an authentication error for an operation.
func NewAuthError(op, message string, cause error) *AuthError {
	return &AuthError{Op: op, Message: message, Cause: cause}
}

// RejectionError is a business-level provider decision (document rejected at
// submission, or found INVALID on reconciliation). Reasons are preserved
// verbatim from the provider response. Never retried automatically.
type RejectionError struct {
	Code    string
	Message string
}

func (e *RejectionError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("provider rejected document [%s]: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("provider rejected document: %s", e.Message)
}

// Category returns CategoryRejection.
func (e *RejectionError) Category() string { return CategoryRejection }

// NewRejectionError creates a provider rejection error.
func NewRejectionError(code, message string) *RejectionError {
	return &RejectionError{Code: code, Message: message}
}

// StateConflictError reports an operation attempted from an invalid source
// state. It fails fast and leaves the record untouched.
type StateConflictError struct {
	Op      string
	Current Status
	Allowed []Status
}

func (e *StateConflictError) Error() string {
	allowed := make([]string, 0, len(e.Allowed))
	for _, s := range e.Allowed {
		allowed = append(allowed, string(s))
	}
	return fmt.Sprintf("%s not allowed from status %s (requires %s)", e.Op, e.Current, strings.Join(allowed, " or "))
}

// Category returns CategoryStateConflict.
func (e *StateConflictError) Category() string { return CategoryStateConflict }

// NewStateConflictError creates a state conflict error.
func NewStateConflictError(op string, current Status, allowed ...Status) *StateConflictError {
	return &StateConflictError{Op: op, Current: current, Allowed: allowed}
}

// NotFoundError reports a missing record.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// Category returns CategoryNotFound.
func (e *NotFoundError) Category() string { return CategoryNotFound }

// NewNotFoundError creates a not-found error.
func NewNotFoundError(kind, id string) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

// CategoryOf walks the error chain and returns the category of the first
// taxonomy error found, or empty if err is outside the taxonomy.
func CategoryOf(err error) string {
	var c Categorized
	if errors.As(err, &c) {
		return c.Category()
	}
	return ""
}

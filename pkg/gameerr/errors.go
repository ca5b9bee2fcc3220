// Package gameerr provides the coded error type returned by the quest engine.
package gameerr

import "fmt"

// Code is a machine-readable error code.
type Code string

const (
	CodeNotFound     Code = "NOT_FOUND"
	CodeValidation   Code = "VALIDATION_FAILED"
	CodeBusinessRule Code = "BUSINESS_RULE_VIOLATION"
	CodeInternal     Code = "INTERNAL_ERROR"
)

// Sentinels for errors.Is; matching is by code only.
var (
	ErrNotFound     = &Error{Code: CodeNotFound}
	ErrValidation   = &Error{Code: CodeValidation}
	ErrBusinessRule = &Error{Code: CodeBusinessRule}
	ErrInternal     = &Error{Code: CodeInternal}
)

// Error is the engine's domain error with structured metadata.
type Error struct {
	Code     Code              // Machine-readable error code
	Message  string            // Internal message (for logs)
	Metadata map[string]string // Additional context, e.g. entity and id
	Cause    error             // Wrapped underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// NotFound reports a missing entity (session, item, named inventory entry).
func NotFound(entity string, id any) *Error {
	return &Error{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found: %v", entity, id),
		Metadata: map[string]string{
			"entity": entity,
			"id":     fmt.Sprint(id),
		},
	}
}

// Validation reports input that is well-formed but inconsistent, such as an
// item that belongs to a different session.
func Validation(message string) *Error {
	return &Error{
		Code:    CodeValidation,
		Message: message,
	}
}

// BusinessRule is reserved for rule breaches that cannot be expressed as
// narrative. No engine operation raises it today.
func BusinessRule(message string) *Error {
	return &Error{
		Code:    CodeBusinessRule,
		Message: message,
	}
}

// Internal wraps an unexpected failure, typically from storage.
func Internal(message string, cause error) *Error {
	return &Error{
		Code:    CodeInternal,
		Message: message,
		Cause:   cause,
	}
}

package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches domain errors by code and message so wrapped sentinels compare equal.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation     = "VALIDATION_ERROR"
	ErrCodeInternalError  = "INTERNAL_ERROR"
	ErrCodeUpstream       = "UPSTREAM_ERROR"
	ErrCodeMalformedModel = "MALFORMED_MODEL_OUTPUT"
)

// MaxQuestionLength is the longest question accepted, in characters.
const MaxQuestionLength = 1000

// Validation errors
var (
	ErrQuestionRequired = NewDomainError(ErrCodeValidation, "question is required")
	ErrQuestionTooLong  = NewDomainError(ErrCodeValidation, fmt.Sprintf("question must be at most %d characters", MaxQuestionLength))
)

// Model errors
var (
	ErrModelUnavailable = NewDomainError(ErrCodeUpstream, "model call failed")
	ErrMalformedOutput  = NewDomainError(ErrCodeMalformedModel, "model output could not be parsed")
	ErrInternalFailure  = NewDomainError(ErrCodeInternalError, "internal failure")
)

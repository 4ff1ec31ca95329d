package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	CodeInternal     ErrorCode = "INTERNAL_ERROR"
	CodeValidation   ErrorCode = "VALIDATION_ERROR"
	CodeNotFound     ErrorCode = "NOT_FOUND"
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
	CodeForbidden    ErrorCode = "FORBIDDEN"
	CodeConflict     ErrorCode = "CONFLICT"

	// Field validation
	CodeMissingField  ErrorCode = "MISSING_FIELD"
	CodeInvalidFormat ErrorCode = "INVALID_FORMAT"
	CodeOutOfRange    ErrorCode = "OUT_OF_RANGE"

	// Upstream LLM gateway
	CodeRateLimited    ErrorCode = "RATE_LIMITED"
	CodeQuotaExhausted ErrorCode = "QUOTA_EXHAUSTED"
	CodeNetwork        ErrorCode = "NETWORK_ERROR"
	CodeParse          ErrorCode = "PARSE_ERROR"
	CodeEmptyResult    ErrorCode = "EMPTY_RESULT"
)

// ConflictReason narrows a CONFLICT error down to the rule that was violated.
type ConflictReason string

const (
	ReasonAttemptBlocked   ConflictReason = "ATTEMPT_BLOCKED"
	ReasonAlreadyMember    ConflictReason = "ALREADY_MEMBER"
	ReasonTimeExpired      ConflictReason = "TIME_EXPIRED"
	ReasonAttemptCompleted ConflictReason = "ATTEMPT_COMPLETED"
)

const contextKeyReason = "reason"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Context map[string]interface{} `json:"context,omitempty"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
		Context: e.Context,
	})
}

// WithContext attaches a key/value pair that is surfaced as response details.
func (e *DomainError) WithContext(key string, value interface{}) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// IsCode reports whether err (or anything it wraps) is a DomainError with code.
func IsCode(err error, code ErrorCode) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// ConflictReasonOf extracts the reason of a CONFLICT error, or "" otherwise.
func ConflictReasonOf(err error) ConflictReason {
	var de *DomainError
	if !errors.As(err, &de) || de.Code != CodeConflict {
		return ""
	}
	if r, ok := de.Context[contextKeyReason].(ConflictReason); ok {
		return r
	}
	return ""
}

// Helper functions for common errors
func NewNotFoundError(message string) *DomainError {
	return NewError(CodeNotFound, message, nil)
}

func NewInternalError(message string, cause error) *DomainError {
	return NewError(CodeInternal, message, cause)
}

func NewUnauthorizedError(message string) *DomainError {
	return NewError(CodeUnauthorized, message, nil)
}

func NewForbiddenError(message string) *DomainError {
	return NewError(CodeForbidden, message, nil)
}

func NewConflictError(reason ConflictReason, message string) *DomainError {
	return NewError(CodeConflict, message, nil).WithContext(contextKeyReason, reason)
}

func NewValidationError(message string) *DomainError {
	return NewError(CodeValidation, message, nil)
}

func NewRateLimitedError(cause error) *DomainError {
	return NewError(CodeRateLimited, "Rate limit exceeded. Please try again later.", cause)
}

func NewQuotaExhaustedError(cause error) *DomainError {
	return NewError(CodeQuotaExhausted, "AI credits exhausted. Please add credits to continue.", cause)
}

func NewNetworkError(cause error) *DomainError {
	return NewError(CodeNetwork, "Quiz generation service is unavailable", cause)
}

func NewParseError(message string, cause error) *DomainError {
	return NewError(CodeParse, message, cause)
}

func NewEmptyResultError() *DomainError {
	return NewError(CodeEmptyResult, "No questions generated", nil)
}

// ValidationError describes a single invalid request field.
type ValidationError struct {
	Field   string      `json:"field"`
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every field problem of one request.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

func NewMissingFieldError(field string) ValidationError {
	return ValidationError{
		Field:   field,
		Code:    CodeMissingField,
		Message: fmt.Sprintf("%s is required", field),
	}
}

func NewInvalidFormatError(field string, value interface{}) ValidationError {
	return ValidationError{
		Field:   field,
		Code:    CodeInvalidFormat,
		Message: fmt.Sprintf("%s has an invalid format", field),
		Value:   value,
	}
}

func NewOutOfRangeError(field string, value interface{}, min, max int) ValidationError {
	return ValidationError{
		Field:   field,
		Code:    CodeOutOfRange,
		Message: fmt.Sprintf("%s must be between %d and %d", field, min, max),
		Value:   value,
	}
}

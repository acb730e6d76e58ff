package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound = errors.New("resource not found")

	ErrInvalidArgument = errors.New("invalid argument")

	ErrValidation = errors.New("validation failed")

	ErrDatabase = errors.New("database error")

	ErrInternalServer = errors.New("internal server error")

	ErrForbidden = errors.New("forbidden")

	ErrConflict = errors.New("resource conflict")

	ErrUnauthorized = errors.New("unauthorized")
)

const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeInvalidArgument    = "INVALID_ARGUMENT"
	CodeConflict           = "CONFLICT"
	CodeDatabase           = "DB_ERROR"
	CodeInternal           = "INTERNAL_ERROR"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeCreditCodeNotFound = "CREDIT_CODE_NOT_FOUND"
	CodeForbidden          = "USER_ACCESS_FORBIDDEN"
	CodeInvalidDate        = "INVALID_DATE"
	CodeUnauthorized       = "UNAUTHORIZED"
)

type ValidationError struct {
	Field   string
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

func NewValidationError(field, message string) error {
	return &ValidationErrors{Violations: []*ValidationError{{Field: field, Message: message}}}
}

// ValidationErrors carries every field violation found in one input.
type ValidationErrors struct {
	Violations []*ValidationError
}

func (e *ValidationErrors) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		if v.Field != "" {
			parts = append(parts, v.Field+": "+v.Message)
		} else {
			parts = append(parts, v.Message)
		}
	}
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(parts, "; "))
}

func (e *ValidationErrors) Unwrap() error {
	return ErrValidation
}

func (e *ValidationErrors) Add(field, message string) {
	e.Violations = append(e.Violations, &ValidationError{Field: field, Message: message})
}

func (e *ValidationErrors) HasViolations() bool {
	return len(e.Violations) > 0
}

// OrNil returns nil when no violation was recorded.
func (e *ValidationErrors) OrNil() error {
	if e == nil || !e.HasViolations() {
		return nil
	}
	return e
}

type AppError struct {
	Code    string
	Message string
	Details []string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func WrapDatabaseError(cause error, message string) error {
	return &AppError{
		Code:    CodeDatabase,
		Message: message,
		Cause:   fmt.Errorf("%w: %w", ErrDatabase, cause),
	}
}

func NewConflictError(message string, details ...string) error {
	return &AppError{
		Code:    CodeConflict,
		Message: message,
		Details: details,
		Cause:   ErrConflict,
	}
}

package core

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrAmountOutOfRange = errors.New("amount out of range")
	ErrPersonNotFound   = fmt.Errorf("person %w", ErrNotFound)
	ErrCategoryNotFound = fmt.Errorf("category %w", ErrNotFound)
)

// Rejection codes carried by ValidationError.
const (
	CodeInvalidName         = "invalid_name"
	CodeInvalidAge          = "invalid_age"
	CodeInvalidDescription  = "invalid_description"
	CodeInvalidPurpose      = "invalid_purpose"
	CodeInvalidValue        = "invalid_value"
	CodeInvalidType         = "invalid_type"
	CodePersonNotFound      = "person_not_found"
	CodeCategoryNotFound    = "category_not_found"
	CodeCategoryIncomeOnly  = "category_income_only"
	CodeCategoryExpenseOnly = "category_expense_only"
	CodeMinorIncome         = "minor_income_forbidden"
	CodeMalformedBody       = "malformed_body"
	CodeRequired            = "required"
)

// ValidationError is an expected rejection of caller input. It never
// indicates a system fault.
type ValidationError struct {
	Field   string
	Code    string
	Message string

	kind error
}

// NewValidationError returns a rejection that unwraps to ErrInvalidInput.
func NewValidationError(field, code, message string) *ValidationError {
	return &ValidationError{Field: field, Code: code, Message: message, kind: ErrInvalidInput}
}

// NewReferenceError returns a rejection for a referenced entity that does not
// exist; it unwraps to the matching not-found sentinel.
func NewReferenceError(field, code, message string, kind error) *ValidationError {
	return &ValidationError{Field: field, Code: code, Message: message, kind: kind}
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.kind
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

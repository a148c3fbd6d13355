package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError is returned when input is malformed before any mutation is
// attempted. Fields lists the offending field names for the API response.
type ValidationError struct {
	Msg    string
	Fields []string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func NewValidationError(msg string, fields ...string) error {
	return &ValidationError{Msg: msg, Fields: fields}
}

func IsValidationError(err error) bool {
	var validationError *ValidationError
	return errors.As(err, &validationError)
}

func ValidationFields(err error) []string {
	var validationError *ValidationError
	if errors.As(err, &validationError) {
		return validationError.Fields
	}
	return nil
}

func NewIndexedValidationError(index int, msg string) error {
	return &ValidationError{Msg: fmt.Sprintf("Validation error at transaction %d: %s", index, msg)}
}

// ValidationErrors collects per-row failures from bulk operations.
type ValidationErrors struct {
	Errors []error
}

func (ve *ValidationErrors) Error() string {
	errorMessages := make([]string, len(ve.Errors))
	for i, err := range ve.Errors {
		errorMessages[i] = err.Error()
	}
	return fmt.Sprintf("multiple validation errors: %s", strings.Join(errorMessages, "; "))
}

func (ve *ValidationErrors) Add(err error) {
	ve.Errors = append(ve.Errors, err)
}

func IsValidationErrors(err error) bool {
	var validationErrors *ValidationErrors
	return errors.As(err, &validationErrors)
}

// NotFoundError covers both "record absent" and "record not owned by the
// caller" so the API cannot be used to probe other users' data.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string {
	return e.Msg
}

func NewNotFoundError(msg string) error {
	return &NotFoundError{Msg: msg}
}

func IsNotFoundError(err error) bool {
	var notFoundError *NotFoundError
	return errors.As(err, &notFoundError)
}

var ErrTransactionNotFound = NewNotFoundError("Transaction not found")

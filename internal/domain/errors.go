package domain

import (
	"errors"
	"fmt"
)

// Common domain errors that can occur during simulation operations.
var (
	// ErrInvalidArgument indicates that an operation received an argument
	// outside its accepted domain: an unknown distribution kind, a negative
	// dimension, a non-positive size or standard deviation, or a threshold
	// outside [0, 1].
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUndefinedResult indicates that a quantity has no defined value for
	// the given input, such as the column means of a matrix with no rows.
	ErrUndefinedResult = errors.New("undefined result")
)

// ArgumentError represents a rejected argument.
// It records which argument was rejected and the offending value.
type ArgumentError struct {
	// Argument names the rejected argument (e.g. "agents", "sd").
	Argument string

	// Value is the rejected value, formatted for display.
	Value any

	// Reason describes the constraint the value violated.
	Reason string

	// Err is the underlying sentinel, normally ErrInvalidArgument.
	Err error
}

// Error implements the error interface for ArgumentError.
func (e *ArgumentError) Error() string {
	return fmt.Sprintf("%v: %s=%v: %s", e.Err, e.Argument, e.Value, e.Reason)
}

// Unwrap returns the underlying error, supporting errors.Is checks against
// ErrInvalidArgument.
func (e *ArgumentError) Unwrap() error { return e.Err }

// NewArgumentError creates an ArgumentError wrapping ErrInvalidArgument.
func NewArgumentError(argument string, value any, reason string) *ArgumentError {
	return &ArgumentError{
		Argument: argument,
		Value:    value,
		Reason:   reason,
		Err:      ErrInvalidArgument,
	}
}

// ValidationError represents an error that occurred during validation.
// It can contain multiple validation failures.
type ValidationError struct {
	// Entity is the name of the entity that failed validation.
	Entity string

	// Errors contains the list of validation error messages.
	Errors []string
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation error for %s: %s", e.Entity, e.Errors[0])
	}
	return fmt.Sprintf("validation errors for %s: %v", e.Entity, e.Errors)
}

// Unwrap reports every ValidationError as an invalid argument.
func (e *ValidationError) Unwrap() error { return ErrInvalidArgument }

// AddError adds a new error message to the validation error.
func (e *ValidationError) AddError(msg string) { e.Errors = append(e.Errors, msg) }

// HasErrors returns true if there are any validation errors.
func (e *ValidationError) HasErrors() bool { return len(e.Errors) > 0 }

// NewValidationError creates a new ValidationError for the given entity.
func NewValidationError(entity string) *ValidationError {
	return &ValidationError{
		Entity: entity,
		Errors: make([]string, 0),
	}
}

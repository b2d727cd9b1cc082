package errs

import (
	"fmt"
	"strings"
)

// Sentinel errors used for classification with errors.Is.
var (
	// ErrObjectNotFound indicates a referenced object does not exist.
	ErrObjectNotFound = fmt.Errorf("object not found")

	// ErrValueIsInvalid indicates a value failed validation.
	ErrValueIsInvalid = fmt.Errorf("value is invalid")

	// ErrValueIsOutOfRange indicates a value is outside its allowed bounds.
	ErrValueIsOutOfRange = fmt.Errorf("value is out of range")

	// ErrValueIsRequired indicates a required value is missing.
	ErrValueIsRequired = fmt.Errorf("value is required")
)

// sanitize collapses newlines so error messages stay single-line in logs.
func sanitize(s string) string {
	return strings.ReplaceAll(s, "\n", " ")
}

// ObjectNotFoundError is returned when an object cannot be found by its
// identifier. ParamName describes which reference failed to resolve.
type ObjectNotFoundError struct {
	ParamName string
	ID        any
	Cause     error
}

// NewObjectNotFoundError creates an ObjectNotFoundError without an underlying cause.
func NewObjectNotFoundError(paramName string, id any) *ObjectNotFoundError {
	return &ObjectNotFoundError{
		ParamName: paramName,
		ID:        id,
	}
}

// NewObjectNotFoundErrorWithCause creates an ObjectNotFoundError wrapping an
// underlying cause such as a database error.
func NewObjectNotFoundErrorWithCause(paramName string, id any, cause error) *ObjectNotFoundError {
	return &ObjectNotFoundError{
		ParamName: paramName,
		ID:        id,
		Cause:     cause,
	}
}

func (e *ObjectNotFoundError) Error() string {
	if e.Cause != nil {
		return sanitize(fmt.Sprintf("%s: param is: %s, ID is: %s (cause: %s)",
			ErrObjectNotFound, e.ParamName, e.ID, e.Cause))
	}
	return sanitize(fmt.Sprintf("%s: %s", ErrObjectNotFound, e.ID))
}

func (e *ObjectNotFoundError) Unwrap() error {
	return ErrObjectNotFound
}

// ValueIsInvalidError is returned when a value fails a validation rule.
type ValueIsInvalidError struct {
	ParamName string
	Cause     error
}

// NewValueIsInvalidError creates a ValueIsInvalidError without an underlying cause.
func NewValueIsInvalidError(paramName string) *ValueIsInvalidError {
	return &ValueIsInvalidError{
		ParamName: paramName,
	}
}

// NewValueIsInvalidErrorWithCause creates a ValueIsInvalidError wrapping the
// validation failure that caused it.
func NewValueIsInvalidErrorWithCause(paramName string, cause error) *ValueIsInvalidError {
	return &ValueIsInvalidError{
		ParamName: paramName,
		Cause:     cause,
	}
}

func (e *ValueIsInvalidError) Error() string {
	if e.Cause != nil {
		return sanitize(fmt.Sprintf("%s: %s (cause: %s)", ErrValueIsInvalid, e.ParamName, e.Cause))
	}
	return sanitize(fmt.Sprintf("%s: %s", ErrValueIsInvalid, e.ParamName))
}

func (e *ValueIsInvalidError) Unwrap() error {
	return ErrValueIsInvalid
}

// ValueIsOutOfRangeError is returned when a value falls outside the
// inclusive [Min, Max] bounds for its parameter.
type ValueIsOutOfRangeError struct {
	ParamName string
	Value     any
	Min       any
	Max       any
	Cause     error
}

// NewValueIsOutOfRangeError creates a ValueIsOutOfRangeError without an underlying cause.
func NewValueIsOutOfRangeError(paramName string, value, minValue, maxValue any) *ValueIsOutOfRangeError {
	return &ValueIsOutOfRangeError{
		ParamName: paramName,
		Value:     value,
		Min:       minValue,
		Max:       maxValue,
	}
}

// NewValueIsOutOfRangeErrorWithCause creates a ValueIsOutOfRangeError wrapping
// an underlying cause.
func NewValueIsOutOfRangeErrorWithCause(paramName string, value, minValue, maxValue any, cause error) *ValueIsOutOfRangeError {
	return &ValueIsOutOfRangeError{
		ParamName: paramName,
		Value:     value,
		Min:       minValue,
		Max:       maxValue,
		Cause:     cause,
	}
}

func (e *ValueIsOutOfRangeError) Error() string {
	if e.Cause != nil {
		return sanitize(fmt.Sprintf("%s: %v is %s, min value is %v, max value is %v (cause: %s)",
			ErrValueIsInvalid, e.Value, e.ParamName, e.Min, e.Max, e.Cause))
	}
	return sanitize(fmt.Sprintf("%s: %v is %s, min value is %v, max value is %v",
		ErrValueIsInvalid, e.Value, e.ParamName, e.Min, e.Max))
}

func (e *ValueIsOutOfRangeError) Unwrap() error {
	return ErrValueIsOutOfRange
}

// ValueIsRequiredError is returned when a required value is absent.
type ValueIsRequiredError struct {
	ParamName string
	Cause     error
}

// NewValueIsRequiredError creates a ValueIsRequiredError without an underlying cause.
func NewValueIsRequiredError(paramName string) *ValueIsRequiredError {
	return &ValueIsRequiredError{
		ParamName: paramName,
	}
}

// NewValueIsRequiredErrorWithCause creates a ValueIsRequiredError wrapping an
// underlying cause.
func NewValueIsRequiredErrorWithCause(paramName string, cause error) *ValueIsRequiredError {
	return &ValueIsRequiredError{
		ParamName: paramName,
		Cause:     cause,
	}
}

func (e *ValueIsRequiredError) Error() string {
	if e.Cause != nil {
		return sanitize(fmt.Sprintf("%s: %s (cause: %s)", ErrValueIsRequired, e.ParamName, e.Cause))
	}
	return sanitize(fmt.Sprintf("%s: %s", ErrValueIsRequired, e.ParamName))
}

func (e *ValueIsRequiredError) Unwrap() error {
	return ErrValueIsRequired
}

package order

import (
	"errors"
	"fmt"
)

// Sentinel errors used for classification with errors.Is.
var (
	// ErrIllegalTransition indicates a requested status change that the
	// lifecycle state machine does not permit.
	ErrIllegalTransition = errors.New("illegal status transition")

	// ErrIllegalStatus indicates a status value outside the lifecycle.
	ErrIllegalStatus = errors.New("illegal status")
)

// IllegalTransitionError reports a rejected status change. It carries both
// the current and the requested status so callers can report precisely why
// the change was refused.
type IllegalTransitionError struct {
	From Status
	To   Status
}

// NewIllegalTransitionError creates an IllegalTransitionError for the given pair.
func NewIllegalTransitionError(from, to Status) *IllegalTransitionError {
	return &IllegalTransitionError{
		From: from,
		To:   to,
	}
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("%s: %s -> %s", ErrIllegalTransition, e.From, e.To)
}

func (e *IllegalTransitionError) Unwrap() error {
	return ErrIllegalTransition
}

// IllegalStatusError reports a status value that is not part of the lifecycle.
type IllegalStatusError struct {
	Value string
}

// NewIllegalStatusError creates an IllegalStatusError for the given raw value.
func NewIllegalStatusError(value string) *IllegalStatusError {
	return &IllegalStatusError{Value: value}
}

func (e *IllegalStatusError) Error() string {
	return fmt.Sprintf("%s: %s", ErrIllegalStatus, e.Value)
}

func (e *IllegalStatusError) Unwrap() error {
	return ErrIllegalStatus
}

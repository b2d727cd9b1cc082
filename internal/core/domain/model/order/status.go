package order

import (
	"fmt"
)

// Status represents the lifecycle state of an order.
// It implements a state machine with defined transitions to ensure orders
// move forward through the kitchen workflow and never regress.
//
// State transitions:
//
//	received ──> preparing ──> ready ──> served ──> completed
//
// Each status has exactly one legal successor; re-requesting the current
// status or any backward move is rejected. Status is a value object that
// validates state transitions and provides string representations for
// persistence and the wire format.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Received is the initial status when an order is placed.
	// Orders in this status are waiting for the kitchen to pick them up.
	Received

	// Preparing indicates the kitchen has started working on the order.
	Preparing

	// Ready indicates the kitchen has finished and the order is waiting
	// for waitstaff to bring it to the table.
	Ready

	// Served indicates the order has been delivered to the table.
	Served

	// Completed indicates the order is closed out.
	// This is a final state with no further transitions allowed.
	Completed
)

// getStatusStrings returns a map of Status values to their wire representations.
// All statuses are included for string conversion.
func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:   "unknown",
		Received:  "received",
		Preparing: "preparing",
		Ready:     "ready",
		Served:    "served",
		Completed: "completed",
	}
}

// getValidStatusStrings returns a map of only valid Status values.
// Only valid statuses are included to support validation and parsing.
func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		Received:  "received",
		Preparing: "preparing",
		Ready:     "ready",
		Served:    "served",
		Completed: "completed",
	}
}

// getStatusSuccessors returns the only legal transition for each status.
// Completed is absent because it is terminal.
func getStatusSuccessors() map[Status]Status {
	//nolint:exhaustive // Completed has no successor
	return map[Status]Status{
		Received:  Preparing,
		Preparing: Ready,
		Ready:     Served,
		Served:    Completed,
	}
}

// StatusFromString parses a wire-format status name ("received", "preparing",
// "ready", "served", "completed"). Returns an IllegalStatusError for any
// other input, including "unknown".
func StatusFromString(s string) (Status, error) {
	for status, name := range getValidStatusStrings() {
		if name == s {
			return status, nil
		}
	}
	return Unknown, NewIllegalStatusError(s)
}

// Validate checks if the Status value is valid.
//
// Valid statuses are: Received, Preparing, Ready, Served, Completed.
// Unknown (0) and any other values are invalid.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return NewIllegalStatusError(fmt.Sprintf("%d", s))
	}
	return nil
}

// String returns the wire-format name of the status.
// Returns "unknown" for invalid status values. Implements fmt.Stringer and
// is safe to call on any Status value.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsTerminal reports whether the status permits no further transitions.
func (s Status) IsTerminal() bool {
	return s == Completed
}

// ValidateTransition checks whether the order may move from this status to
// requested. It must be called with the persisted current status read under
// the same transaction that writes the new one, never with a client-supplied
// or cached status.
//
// Returns:
//   - nil when requested is the single legal successor of this status
//   - *IllegalTransitionError for every other pair, including s -> s
//
// Example:
//
//	if err := current.ValidateTransition(order.Ready); err != nil {
//	    // current was not Preparing
//	}
func (s Status) ValidateTransition(requested Status) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if err := requested.Validate(); err != nil {
		return err
	}

	if next, ok := getStatusSuccessors()[s]; !ok || next != requested {
		return NewIllegalTransitionError(s, requested)
	}

	return nil
}

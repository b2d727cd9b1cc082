package kernel

import (
	"fmt"

	"tableside/internal/pkg/errs"

	"github.com/google/uuid"
)

// ErrUUIDIsNotConstructed indicates that a UUID was not initialized through one
// of the constructor functions. It is returned when validating a zero-value UUID.
var ErrUUIDIsNotConstructed = errs.NewValueIsRequiredError(
	"UUID must be created via NewUUID, UUIDFromString, or UUIDFromBytes")

// UUID is a value object identifying entities such as orders and customers.
// It wraps github.com/google/uuid to keep the identifier immutable and
// validated. The zero value is invalid; use one of the constructors.
//
// Example:
//
//	orderID := kernel.NewUUID()
//	customerID, err := kernel.UUIDFromString("550e8400-e29b-41d4-a716-446655440000")
type UUID struct {
	id uuid.UUID
}

// NewUUID generates a new random UUID (version 4).
// This is the primary way to create identifiers for new orders.
func NewUUID() UUID {
	return UUID{
		id: uuid.New(),
	}
}

// UUIDFromString parses a UUID from its string representation, accepting the
// standard formats understood by github.com/google/uuid. It is used when
// reconstructing identifiers from persistence or request paths.
func UUIDFromString(s string) (UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return UUID{}, fmt.Errorf("invalid UUID format: %w", err)
	}
	return UUID{id: id}, nil
}

// UUIDFromBytes creates a UUID from a 16-byte slice, as stored in the database.
func UUIDFromBytes(b []byte) (UUID, error) {
	id, err := uuid.FromBytes(b)
	if err != nil {
		return UUID{}, fmt.Errorf("invalid UUID format: %w", err)
	}
	newID := UUID{id: id}
	if err = newID.Validate(); err != nil {
		return UUID{}, err
	}

	return newID, nil
}

// String returns the canonical "xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx" form.
func (u UUID) String() string {
	return u.id.String()
}

// Bytes returns the underlying uuid.UUID value for persistence mapping.
// For a raw byte slice use id.Bytes()[:].
func (u UUID) Bytes() uuid.UUID {
	return u.id
}

// IsEqual reports whether two UUIDs represent the same value.
func (u UUID) IsEqual(other UUID) bool {
	return u.id == other.id
}

// Validate checks that the UUID was constructed through a constructor.
// Returns ErrUUIDIsNotConstructed for the nil UUID.
func (u UUID) Validate() error {
	if u.id == uuid.Nil {
		return ErrUUIDIsNotConstructed
	}
	return nil
}

package kernel

import (
	"strconv"

	"tableside/internal/pkg/errs"
	"tableside/internal/pkg/guard"
)

const (
	// TableNumberMin is the lowest table number a QR code can be printed for.
	TableNumberMin = 1
	// TableNumberMax bounds the table numbers accepted by the service.
	TableNumberMax = 999
)

// ErrTableNumberIsNotConstructed is returned when attempting to use an
// improperly initialized TableNumber. Table numbers must be created via the
// NewTableNumber constructor to ensure validity.
var ErrTableNumberIsNotConstructed = errs.NewValueIsRequiredError(
	"table number must be created via NewTableNumber constructor")

// TableNumber identifies the physical table an order belongs to. It is an
// immutable value object; the number is fixed at order creation and drives
// the per-table notification audience.
//
// The zero value is invalid and fails validation - use NewTableNumber.
//
// Example:
//
//	table, err := kernel.NewTableNumber(7)
//	if err != nil {
//	    // Handle validation error
//	}
//	fmt.Println(table) // Output: 7
type TableNumber struct { //nolint:recvcheck //using for validation
	value int
	guard guard.ConstructorGuard
}

// NewTableNumber creates a TableNumber from a raw integer.
// The number must be within [TableNumberMin..TableNumberMax] inclusive.
func NewTableNumber(value int) (TableNumber, error) {
	tn := TableNumber{
		guard: guard.NewConstructorGuard(),
	}

	if err := tn.setValue(value); err != nil {
		return TableNumber{}, err
	}

	return tn, nil
}

// Validate checks if the TableNumber was properly constructed using the constructor.
// The zero value fails this validation.
func (t TableNumber) Validate() error {
	return t.guard.Validate(ErrTableNumberIsNotConstructed)
}

// Value returns the raw table number.
func (t TableNumber) Value() int {
	return t.value
}

// String returns the decimal representation of the table number.
func (t TableNumber) String() string {
	return strconv.Itoa(t.value)
}

// IsEqual reports whether two table numbers refer to the same table.
func (t TableNumber) IsEqual(other TableNumber) bool {
	return t.value == other.value
}

func (t *TableNumber) setValue(value int) error {
	if value < TableNumberMin || value > TableNumberMax {
		return errs.NewValueIsOutOfRangeError("tableNumber", value, TableNumberMin, TableNumberMax)
	}

	t.value = value
	return nil
}

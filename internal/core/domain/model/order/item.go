package order

import (
	"fmt"

	"tableside/internal/pkg/errs"
	"tableside/internal/pkg/guard"
)

// ErrItemIsNotConstructed is returned when an Item was not created through
// the NewItem constructor.
var ErrItemIsNotConstructed = errs.NewValueIsRequiredError(
	"item must be created via NewItem constructor")

// Item is one line of an order: a menu item name, its unit price, and how
// many the table asked for. Items are fixed at order creation; there are no
// item-level edits afterwards.
//
// Item is an immutable value object. The zero value is invalid - use NewItem.
type Item struct { //nolint:recvcheck //using for validation
	name     string
	price    float64
	quantity int

	guard guard.ConstructorGuard
}

// NewItem creates an order line with validation.
// Name must be non-empty, price non-negative, and quantity positive.
func NewItem(name string, price float64, quantity int) (Item, error) {
	item := Item{
		guard: guard.NewConstructorGuard(),
	}

	if err := item.setName(name); err != nil {
		return Item{}, err
	}
	if err := item.setPrice(price); err != nil {
		return Item{}, err
	}
	if err := item.setQuantity(quantity); err != nil {
		return Item{}, err
	}

	return item, nil
}

// Validate ensures the Item was created through NewItem.
func (i Item) Validate() error {
	return i.guard.Validate(ErrItemIsNotConstructed)
}

// Name returns the menu item name.
func (i Item) Name() string {
	return i.name
}

// Price returns the unit price.
func (i Item) Price() float64 {
	return i.price
}

// Quantity returns how many units were ordered.
func (i Item) Quantity() int {
	return i.quantity
}

func (i *Item) setName(name string) error {
	if name == "" {
		return errs.NewValueIsRequiredError("item name")
	}
	i.name = name
	return nil
}

func (i *Item) setPrice(price float64) error {
	if price < 0 {
		return errs.NewValueIsInvalidErrorWithCause("item price",
			fmt.Errorf("%v is negative", price))
	}
	i.price = price
	return nil
}

func (i *Item) setQuantity(quantity int) error {
	if quantity <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("item quantity",
			fmt.Errorf("%d is not greater than 0", quantity))
	}
	i.quantity = quantity
	return nil
}

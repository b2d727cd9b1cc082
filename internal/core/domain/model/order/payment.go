package order

import (
	"fmt"

	"tableside/internal/pkg/guard"
)

// PaymentMethod is how the table intends to settle the order.
type PaymentMethod string

const (
	// PaymentCash means the order is settled at the table.
	PaymentCash PaymentMethod = "cash"
	// PaymentOnline means the order was paid through the payment gateway.
	PaymentOnline PaymentMethod = "online"
)

// ErrPaymentIsNotConstructed is returned when a Payment was not created
// through the NewPayment constructor.
var ErrPaymentIsNotConstructed = fmt.Errorf("payment must be created via NewPayment constructor")

// PaymentMethodFromString parses a wire-format payment method.
func PaymentMethodFromString(s string) (PaymentMethod, error) {
	switch PaymentMethod(s) {
	case PaymentCash, PaymentOnline:
		return PaymentMethod(s), nil
	default:
		return "", fmt.Errorf("invalid payment method: %q", s)
	}
}

// Payment captures the settlement terms chosen when the order was placed.
// The method is fixed at creation; the paid flag is settled by the payment
// surface outside the order lifecycle.
type Payment struct { //nolint:recvcheck //using for validation
	method PaymentMethod
	paid   bool

	guard guard.ConstructorGuard
}

// NewPayment creates a Payment with the given method and settlement state.
func NewPayment(method PaymentMethod, paid bool) (Payment, error) {
	if _, err := PaymentMethodFromString(string(method)); err != nil {
		return Payment{}, err
	}

	return Payment{
		method: method,
		paid:   paid,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the Payment was created through NewPayment.
func (p Payment) Validate() error {
	return p.guard.Validate(ErrPaymentIsNotConstructed)
}

// Method returns the payment method.
func (p Payment) Method() PaymentMethod {
	return p.method
}

// Paid reports whether the order has been settled.
func (p Payment) Paid() bool {
	return p.paid
}

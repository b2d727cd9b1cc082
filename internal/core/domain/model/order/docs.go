// Package order provides domain entities and business logic for order
// management in the tableside ordering system. It implements the Order
// aggregate root with lifecycle management and state transitions.
//
// The package includes:
//   - Order: The aggregate root that manages order identity, items, and lifecycle
//   - Status: A state machine that enforces valid order status transitions
//   - Item: An immutable order line (name, price, quantity)
//   - Payment: The settlement terms chosen when the order was placed
//
// Key business rules:
//   - Orders must have a valid identifier, table number, and at least one item
//   - Order status follows a strict forward-only workflow:
//     received -> preparing -> ready -> served -> completed
//   - No transition may skip a step, repeat a status, or move backward
//   - Items and table number never change after placement
//
// The package follows Domain-Driven Design principles, providing rich domain
// behavior, encapsulation, and validation to ensure business rules are enforced.
package order

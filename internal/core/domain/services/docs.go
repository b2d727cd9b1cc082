// Package services contains domain services for the tableside ordering system.
//
// Domain services implement business logic that does not naturally belong to
// a single aggregate. The package currently provides:
//   - EventRouter: computes which audience channels must be notified about an
//     order mutation, and the full-snapshot payload each receives
//   - Channel naming helpers that deterministically derive per-table channel
//     names from table numbers
//
// Services are pure and stateless: they perform no I/O, so routing decisions
// can be tested exhaustively without any transport or storage in place.
package services

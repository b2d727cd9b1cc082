// Package guard provides a defensive programming pattern that ensures value
// objects, entities, and commands are only created through their designated
// constructor functions. Embedding a ConstructorGuard in a struct makes
// zero-value instances detectable at validation time.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate when no specific error
// is supplied for an unconstructed object.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard tracks whether its enclosing object was created through a
// constructor. The zero value reports the object as not constructed.
type ConstructorGuard struct {
	isConstructed bool
}

// NewConstructorGuard creates a guard that marks an object as properly
// constructed. Call this in the constructor of the enclosing type.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate reports whether the enclosing object was properly constructed.
// Returns nil for constructed objects. For zero-value objects it returns
// notConstructedErr, or ErrDefaultConstructorGuard when notConstructedErr is nil.
func (g ConstructorGuard) Validate(notConstructedErr error) error {
	if g.isConstructed {
		return nil
	}

	if notConstructedErr == nil {
		return ErrDefaultConstructorGuard
	}

	return notConstructedErr
}

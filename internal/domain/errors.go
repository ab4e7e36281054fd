package domain

import "errors"

var (
	// ErrNotFound is returned when a product, cart line or other referenced
	// entity does not exist (or is inactive, for products being added).
	ErrNotFound = errors.New("not found")

	// ErrInvalidQuantity is returned for a non-positive quantity, or one that
	// would push a line past MaxLineQuantity.
	ErrInvalidQuantity = errors.New("quantity must be between 1 and 2147483647")

	// ErrNoOwningIdentity means a cart was requested for an identity that has
	// neither a user nor a session. It indicates broken request wiring.
	ErrNoOwningIdentity = errors.New("identity has neither user nor session")

	ErrCurrencyMismatch = errors.New("currency mismatch")

	ErrUnauthenticated = errors.New("authentication required")
)

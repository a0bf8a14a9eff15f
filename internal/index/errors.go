package index

import "errors"

var (
	// ErrInvariant marks a bucket that violates the index invariants.
	ErrInvariant = errors.New("index invariant violated")
	// ErrMalformed marks a persisted bucket that cannot be loaded.
	ErrMalformed = errors.New("malformed index entry")
)

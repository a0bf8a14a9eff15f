package storage

import "errors"

var (
	// ErrUnknownBackend is returned by OpenStore for an unsupported backend name.
	ErrUnknownBackend = errors.New("unknown storage backend")
	// ErrCorrupt wraps decode failures of a stored snapshot.
	ErrCorrupt = errors.New("stored index is corrupt")
)

package bucket

import "errors"

// ErrInvalidKey is returned when a bucket key string cannot be parsed.
var ErrInvalidKey = errors.New("invalid bucket key")

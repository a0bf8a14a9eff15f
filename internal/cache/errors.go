package cache

import "errors"

// ErrNotConnected is returned when the publisher has no live client.
var ErrNotConnected = errors.New("redis client not initialized")

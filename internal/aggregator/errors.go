package aggregator

import "errors"

// ErrNoIndex is returned by Update when there is no index to merge into.
var ErrNoIndex = errors.New("no index found: run rebuild first")

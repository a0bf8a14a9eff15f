package nbastats

import "errors"

var (
	// ErrStatus is returned for a non-retryable HTTP status.
	ErrStatus = errors.New("unexpected status")
	// ErrRetriesExhausted is returned when every attempt failed.
	ErrRetriesExhausted = errors.New("retries exhausted")
	// ErrNoResultSet is returned when the response carries no game log result set.
	ErrNoResultSet = errors.New("no result set in response")
)

package parser

import "errors"

var (
	// ErrNoHeader is returned for an empty input stream.
	ErrNoHeader = errors.New("input has no header row")
	// ErrMissingColumn is returned when a required column is absent.
	ErrMissingColumn = errors.New("missing required column")
)

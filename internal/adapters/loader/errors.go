package loader

import "errors"

// Sentinel kinds for loader errors.
var (
	// ErrNoInput means the configured input does not exist or holds no rows.
	ErrNoInput = errors.New("no input")
	// ErrMissingColumn means a required column has none of its accepted names.
	ErrMissingColumn = errors.New("missing required column")
	// ErrMalformedField marks a value that could not be parsed and was
	// replaced by its default. It is reported, never returned from Load.
	ErrMalformedField = errors.New("malformed field")
)

// ErrUnknownLayout means the configured input layout is not supported.
var ErrUnknownLayout = errors.New("unknown input layout")

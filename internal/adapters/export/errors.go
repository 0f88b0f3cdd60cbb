package export

import "errors"

// Sentinel kinds for export errors.
var (
	// ErrWriteOutput wraps failures creating or writing an output file.
	ErrWriteOutput = errors.New("write output")
	// ErrSink wraps failures of the relational sink.
	ErrSink = errors.New("rating sink")
	// ErrUnsupportedDriver means the sink driver is neither sqlite nor postgres.
	ErrUnsupportedDriver = errors.New("unsupported sink driver")
)

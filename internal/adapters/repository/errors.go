package repository

import "errors"

// Sentinel kinds for rating store errors.
var (
	ErrNotFound     = errors.New("entity not found")
	ErrInvalidLimit = errors.New("invalid snapshot limit")
)

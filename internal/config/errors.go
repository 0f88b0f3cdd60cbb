package config

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrInvalidConfig wraps every validation failure.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrLoadConfig wraps file, env and decoding failures.
	ErrLoadConfig = errors.New("load config failed")
)

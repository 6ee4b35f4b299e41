package config

import "errors"

var (
	// ErrParsingConfig wraps caarlos0/env parse failures, including missing required variables.
	ErrParsingConfig = errors.New("config: cannot parse environment")
	ErrNilPointer    = errors.New("config: nil target")
)

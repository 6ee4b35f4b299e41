package httpserver

import "errors"

var (
	ErrStart          = errors.New("httpserver: start failed")
	ErrShutdown       = errors.New("httpserver: graceful shutdown failed") // includes in-flight requests cut off by the deadline
	ErrAlreadyRunning = errors.New("httpserver: already running")
)

package chat

import "errors"

var (
	ErrMissingCredentials = errors.New("chat: api key and secret are required")
	ErrTokenSigning       = errors.New("chat: failed to sign token")
	ErrRequestFailed      = errors.New("chat: request failed")
	ErrUnexpectedStatus   = errors.New("chat: unexpected response status")
	ErrInvalidUser        = errors.New("chat: user id is required")
)

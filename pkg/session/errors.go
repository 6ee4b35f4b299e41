package session

import "errors"

var (
	// ErrSessionNotFound indicates no session exists for the token.
	ErrSessionNotFound = errors.New("session.not_found")

	// ErrSessionExpired indicates the session existed but its lifetime ran out.
	ErrSessionExpired = errors.New("session.expired")

	// ErrInvalidSession is returned by stores for malformed input.
	ErrInvalidSession = errors.New("session.invalid")

	// ErrTokenGeneration indicates the random source failed.
	ErrTokenGeneration = errors.New("session.token_generation_failed")

	// ErrStorage wraps failures of the underlying store.
	ErrStorage = errors.New("session.storage_failure")
)

// IsNone reports whether err means "no valid session" rather than a failure.
func IsNone(err error) bool {
	return errors.Is(err, ErrSessionNotFound) || errors.Is(err, ErrSessionExpired)
}

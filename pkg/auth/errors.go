package auth

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrStorageFailure     = errors.New("storage failure")
	ErrInvalidUser        = errors.New("invalid user")
)

// Conflicts. The specific errors wrap ErrConflict.
var (
	ErrConflict       = errors.New("conflict")
	ErrUsernameTaken  = fmt.Errorf("%w: username already taken", ErrConflict)
	ErrEmailTaken     = fmt.Errorf("%w: email already registered", ErrConflict)
	ErrProviderLinked = fmt.Errorf("%w: provider account already linked", ErrConflict)
)

// Federation errors
var (
	ErrFederationStateMismatch  = errors.New("oauth state mismatch")
	ErrFederationExchangeFailed = errors.New("oauth code exchange failed")
	ErrInvalidProfile           = errors.New("provider profile has no subject")
	ErrRegistrationFailed       = errors.New("downstream identity registration failed")
)

// ErrResolverMissing is returned by CurrentIdentity when Resolver.Middleware
// did not run for the request.
var ErrResolverMissing = errors.New("identity resolver not installed")

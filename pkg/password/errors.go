package password

import "errors"

var (
	ErrInvalidHash          = errors.New("password.invalid_hash")
	ErrUnsupportedAlgorithm = errors.New("password.unsupported_algorithm")
	ErrIncompatibleVersion  = errors.New("password.incompatible_version")
	ErrSaltGeneration       = errors.New("password.salt_generation_failed")
)

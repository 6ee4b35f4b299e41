package cookie

import "errors"

var (
	ErrNoSecret         = errors.New("cookie: at least one signing secret is required")
	ErrSecretTooShort   = errors.New("cookie: signing secret too short")
	ErrInvalidSignature = errors.New("cookie: signature mismatch")
	ErrCookieNotFound   = errors.New("cookie: not present")
	ErrInvalidFormat    = errors.New("cookie: malformed signed value")
)

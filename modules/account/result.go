package account

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/identity/handler"
	"github.com/dmitrymomot/identity/pkg/auth"
	"github.com/dmitrymomot/identity/pkg/validator"
)

// Result is the outcome of an authentication flow: a redirect or an error.
// Exactly one of RedirectURL and Err is set.
type Result struct {
	RedirectURL string
	Err         error
}

func Redirect(url string) Result { return Result{RedirectURL: url} }

func Fail(err error) Result { return Result{Err: err} }

// Response converts r for the HTTP boundary. Cookies are attached only to
// a redirect.
func (r Result) Response(cookies ...*http.Cookie) handler.Response {
	if r.Err != nil {
		return handler.Error(boundaryError(r.Err))
	}
	return handler.Redirect(r.RedirectURL, cookies...)
}

// Client-facing errors. Their messages never carry storage or provider
// detail; the wrapped cause is only logged.
var (
	errInvalidCredentials = handler.NewHTTPError(http.StatusUnauthorized, "invalid_credentials").WithMessage("Invalid username or password")
	errUsernameTaken      = handler.NewHTTPError(http.StatusConflict, "username_taken").WithMessage("This username is already taken")
	errEmailTaken         = handler.NewHTTPError(http.StatusConflict, "email_taken").WithMessage("This email is already registered")
	errStateMismatch      = handler.NewHTTPError(http.StatusBadRequest, "oauth_state_mismatch").WithMessage("Sign-in request expired or was tampered with")
	errExchangeFailed     = handler.NewHTTPError(http.StatusBadRequest, "oauth_exchange_failed").WithMessage("Sign-in with the provider failed")
	errSignInFailed       = handler.NewHTTPError(http.StatusInternalServerError, "sign_in_failed").WithMessage("Sign-in failed, please try again")
)

// boundaryError attaches the client-facing HTTPError to err.
func boundaryError(err error) error {
	switch {
	case validator.IsValidationError(err):
		return err
	case errors.Is(err, auth.ErrInvalidCredentials):
		return errors.Join(errInvalidCredentials, err)
	case errors.Is(err, auth.ErrUsernameTaken):
		return errors.Join(errUsernameTaken, err)
	case errors.Is(err, auth.ErrEmailTaken):
		return errors.Join(errEmailTaken, err)
	case errors.Is(err, auth.ErrFederationStateMismatch):
		return errors.Join(errStateMismatch, err)
	case errors.Is(err, auth.ErrFederationExchangeFailed):
		return errors.Join(errExchangeFailed, err)
	default:
		return errors.Join(errSignInFailed, err)
	}
}

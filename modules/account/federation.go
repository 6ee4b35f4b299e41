package account

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/identity/handler"
	"github.com/dmitrymomot/identity/pkg/auth"
	"github.com/dmitrymomot/identity/pkg/logger"
)

func (s *Service) beginFederation(ctx handler.Context, _ struct{}) handler.Response {
	pending, err := s.deps.Federation.Begin()
	if err != nil {
		return handler.Error(errors.Join(handler.ErrInternalServerError, err))
	}

	w := ctx.ResponseWriter()
	opts := s.flowCookieOptions(ctx)
	s.deps.Cookies.SetSigned(w, stateCookie, pending.State, opts...)
	s.deps.Cookies.SetSigned(w, verifierCookie, pending.CodeVerifier, opts...)

	return handler.Redirect(pending.URL)
}

// completeFederation handles the provider callback. The flow cookies are
// dropped whatever the outcome; a session cookie is set only on success.
func (s *Service) completeFederation(ctx handler.Context, _ struct{}) handler.Response {
	r := ctx.Request()
	q := r.URL.Query()

	cb := auth.Callback{
		Code:           q.Get("code"),
		State:          q.Get("state"),
		StoredState:    s.readFlowCookie(r, stateCookie),
		StoredVerifier: s.readFlowCookie(r, verifierCookie),
	}

	w := ctx.ResponseWriter()
	opts := s.flowCookieOptions(ctx)
	s.deps.Cookies.Delete(w, stateCookie, opts...)
	s.deps.Cookies.Delete(w, verifierCookie, opts...)

	if errMsg := q.Get("error"); errMsg != "" {
		s.logger.InfoContext(ctx, "provider returned an error", logger.Event("federation.denied"), slog.String("provider_error", errMsg))
	}

	res, err := s.deps.Federation.Complete(ctx, cb)
	if err != nil {
		return Fail(err).Response()
	}
	return Redirect(s.cfg.HomeURL).Response(s.deps.Sessions.SessionCookie(res.Token))
}

// readFlowCookie treats a missing or tampered cookie as absent.
func (s *Service) readFlowCookie(r *http.Request, name string) string {
	v, err := s.deps.Cookies.GetSigned(r, name)
	if err != nil {
		return ""
	}
	return v
}

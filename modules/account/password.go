package account

import (
	"errors"

	"github.com/dmitrymomot/identity/handler"
	"github.com/dmitrymomot/identity/pkg/auth"
	"github.com/dmitrymomot/identity/pkg/logger"
)

type LoginRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

func (s *Service) signup(ctx handler.Context, req auth.RegisterInput) handler.Response {
	res, err := s.deps.Passwords.Register(ctx, req)
	if err != nil {
		return Fail(err).Response()
	}
	return Redirect(s.cfg.HomeURL).Response(s.deps.Sessions.SessionCookie(res.Token))
}

func (s *Service) login(ctx handler.Context, req LoginRequest) handler.Response {
	res, err := s.deps.Passwords.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		return Fail(err).Response()
	}
	return Redirect(s.cfg.HomeURL).Response(s.deps.Sessions.SessionCookie(res.Token))
}

func (s *Service) logout(ctx handler.Context, _ struct{}) handler.Response {
	token, _ := s.deps.Sessions.Token(ctx.Request())
	if err := s.deps.Sessions.Invalidate(ctx, token); err != nil {
		s.logger.ErrorContext(ctx, "failed to invalidate session", logger.Error(err))
		return handler.Error(errors.Join(handler.ErrInternalServerError, err))
	}
	return Redirect(s.cfg.LoginURL).Response(s.deps.Sessions.BlankCookie())
}

// logoutAll ends every session of the signed-in user, on every device.
func (s *Service) logoutAll(ctx handler.Context, _ struct{}) handler.Response {
	id, err := auth.CurrentIdentity(ctx)
	if err != nil {
		return handler.Error(errors.Join(handler.ErrInternalServerError, err))
	}
	if err := s.deps.Sessions.InvalidateUser(ctx, id.User.ID); err != nil {
		s.logger.ErrorContext(ctx, "failed to invalidate user sessions", logger.UserID(id.User.ID), logger.Error(err))
		return handler.Error(errors.Join(handler.ErrInternalServerError, err))
	}
	return Redirect(s.cfg.LoginURL).Response(s.deps.Sessions.BlankCookie())
}

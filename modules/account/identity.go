package account

import (
	"errors"
	"time"

	"github.com/dmitrymomot/identity/handler"
	"github.com/dmitrymomot/identity/pkg/auth"
)

type MeResponse struct {
	User             *auth.User `json:"user"`
	SessionExpiresAt time.Time  `json:"sessionExpiresAt"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

func (s *Service) me(ctx handler.Context, _ struct{}) handler.Response {
	id, err := auth.CurrentIdentity(ctx)
	if err != nil {
		return handler.Error(errors.Join(handler.ErrInternalServerError, err))
	}
	return handler.JSON(MeResponse{User: id.User, SessionExpiresAt: id.Session.ExpiresAt})
}

func (s *Service) chatToken(ctx handler.Context, _ struct{}) handler.Response {
	id, err := auth.CurrentIdentity(ctx)
	if err != nil {
		return handler.Error(errors.Join(handler.ErrInternalServerError, err))
	}

	token, err := s.deps.Tokens.UserToken(id.User.ID.String())
	if err != nil {
		return handler.Error(errors.Join(handler.ErrInternalServerError, err))
	}
	return handler.JSON(TokenResponse{Token: token})
}

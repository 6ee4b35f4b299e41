package auth

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/dmitrymomot/identity/pkg/session"
)

// SessionCreator starts sessions after successful authentication.
type SessionCreator interface {
	Create(ctx context.Context, userID uuid.UUID) (string, *session.Session, error)
}

// Sessions is the part of *session.Manager the resolver and the HTTP
// boundary depend on.
type Sessions interface {
	SessionCreator
	Validate(ctx context.Context, token string) (*session.Session, error)
	Invalidate(ctx context.Context, token string) error
	InvalidateUser(ctx context.Context, userID uuid.UUID) error
	Token(r *http.Request) (string, bool)
	Issue(w http.ResponseWriter, token string)
	Clear(w http.ResponseWriter)
	SessionCookie(token string) *http.Cookie
	BlankCookie() *http.Cookie
}

var _ Sessions = (*session.Manager)(nil)

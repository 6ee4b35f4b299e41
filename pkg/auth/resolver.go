package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/dmitrymomot/identity/handler"
	"github.com/dmitrymomot/identity/pkg/logger"
	"github.com/dmitrymomot/identity/pkg/session"
)

// Resolver maps a request's session cookie to an Identity. Install
// Middleware once and read the identity with CurrentIdentity; the lookup
// happens at most once per request.
type Resolver struct {
	users        UserStore
	sessions     Sessions
	logger       *slog.Logger
	errorHandler handler.ErrorHandler
}

type ResolverOption func(*Resolver)

func WithResolverLogger(l *slog.Logger) ResolverOption {
	return func(r *Resolver) { r.logger = l }
}

// WithResolverErrorHandler sets how RequireAuth writes its 401 and 500
// responses. Defaults to handler.NewErrorHandler with the resolver logger.
func WithResolverErrorHandler(h handler.ErrorHandler) ResolverOption {
	return func(r *Resolver) { r.errorHandler = h }
}

func NewResolver(users UserStore, sessions Sessions, opts ...ResolverOption) *Resolver {
	r := &Resolver{users: users, sessions: sessions, logger: logger.Discard()}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With(logger.Component("resolver"))
	if r.errorHandler == nil {
		r.errorHandler = handler.NewErrorHandler(r.logger)
	}
	return r
}

// Resolve validates the session cookie of req. It reissues the cookie when
// the session was extended and blanks it when the session is gone. Without a
// cookie the response is left untouched. The returned identity is never nil;
// it is anonymous when err is not nil.
func (rs *Resolver) Resolve(w http.ResponseWriter, req *http.Request) (*Identity, error) {
	ctx := req.Context()

	token, ok := rs.sessions.Token(req)
	if !ok {
		return &Identity{}, nil
	}

	sess, err := rs.sessions.Validate(ctx, token)
	switch {
	case session.IsNone(err):
		rs.sessions.Clear(w)
		return &Identity{}, nil
	case err != nil:
		return &Identity{}, errors.Join(ErrStorageFailure, err)
	}

	user, err := rs.users.GetUserByID(ctx, sess.UserID)
	switch {
	case errors.Is(err, ErrUserNotFound):
		if err := rs.sessions.Invalidate(ctx, token); err != nil {
			rs.logger.WarnContext(ctx, "failed to drop orphaned session", logger.UserID(sess.UserID), logger.Error(err))
		}
		rs.sessions.Clear(w)
		return &Identity{}, nil
	case err != nil:
		return &Identity{}, errors.Join(ErrStorageFailure, err)
	}

	if sess.Fresh {
		rs.sessions.Issue(w, token)
	}
	return &Identity{User: user, Session: sess}, nil
}

type resolverKey struct{}

type resolution struct {
	resolver *Resolver
	w        http.ResponseWriter
	r        *http.Request

	once     sync.Once
	identity *Identity
	err      error
}

func (c *resolution) get() (*Identity, error) {
	c.once.Do(func() {
		c.identity, c.err = c.resolver.Resolve(c.w, c.r)
	})
	return c.identity, c.err
}

// Middleware threads a lazily evaluated identity through the request
// context.
func (rs *Resolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cell := &resolution{resolver: rs, w: w, r: r}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), resolverKey{}, cell)))
	})
}

// CurrentIdentity resolves the identity of the request that ctx belongs to.
// Repeated calls return the same result.
func CurrentIdentity(ctx context.Context) (*Identity, error) {
	cell, ok := ctx.Value(resolverKey{}).(*resolution)
	if !ok {
		return &Identity{}, ErrResolverMissing
	}
	return cell.get()
}

// RequireAuth rejects anonymous requests with 401.
func (rs *Resolver) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := CurrentIdentity(r.Context())
		if err != nil {
			rs.errorHandler(handler.NewContext(w, r), errors.Join(handler.ErrInternalServerError, err))
			return
		}
		if !id.Authenticated() {
			rs.errorHandler(handler.NewContext(w, r), handler.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

package account

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/identity/handler"
	"github.com/dmitrymomot/identity/pkg/auth"
	"github.com/dmitrymomot/identity/pkg/binder"
	"github.com/dmitrymomot/identity/pkg/clientip"
	"github.com/dmitrymomot/identity/pkg/cookie"
	"github.com/dmitrymomot/identity/pkg/environment"
	"github.com/dmitrymomot/identity/pkg/logger"
	"github.com/dmitrymomot/identity/pkg/ratelimiter"
)

// Federation cookie names.
const (
	stateCookie    = "state"
	verifierCookie = "code_verifier"
)

// TokenIssuer mints chat tokens for a signed-in user. *chat.Client
// implements it.
type TokenIssuer interface {
	UserToken(userID string) (string, error)
}

// Deps are the services behind the account endpoints. Federation and
// Tokens are optional; their routes are not mounted when nil. SignInLimiter
// throttles signup and login per client address when set; the address comes
// from clientip.Middleware.
type Deps struct {
	Passwords     *auth.PasswordService
	Federation    *auth.FederationService
	Resolver      *auth.Resolver
	Sessions      auth.Sessions
	Cookies       *cookie.Manager
	Tokens        TokenIssuer
	SignInLimiter ratelimiter.Limiter
}

type Service struct {
	cfg          Config
	deps         Deps
	logger       *slog.Logger
	errorHandler handler.ErrorHandler
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func WithErrorHandler(h handler.ErrorHandler) Option {
	return func(s *Service) { s.errorHandler = h }
}

// New panics when a required dependency is missing.
func New(cfg Config, deps Deps, opts ...Option) *Service {
	if deps.Passwords == nil || deps.Resolver == nil || deps.Sessions == nil || deps.Cookies == nil {
		panic("account: Passwords, Resolver, Sessions and Cookies are required")
	}

	s := &Service{cfg: cfg.withDefaults(), deps: deps, logger: logger.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logger.Component("account"))
	if s.errorHandler == nil {
		s.errorHandler = handler.NewErrorHandler(s.logger)
	}
	return s
}

// Handle returns the account routes with the identity resolver installed.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()
	r.Use(s.deps.Resolver.Middleware)

	r.Group(func(r chi.Router) {
		if s.deps.SignInLimiter != nil {
			r.Use(ratelimiter.Middleware(s.deps.SignInLimiter, signInKey,
				ratelimiter.WithLogger(s.logger),
				ratelimiter.WithDeniedHandler(s.throttled),
				ratelimiter.WithFailOpen(s.cfg.SignInLimitFailOpen),
			))
		}
		r.Post("/signup", wrap(s, s.signup, binder.Auto()))
		r.Post("/login", wrap(s, s.login, binder.Auto()))
	})
	r.With(s.deps.Resolver.RequireAuth).Post("/logout", wrap(s, s.logout))
	r.With(s.deps.Resolver.RequireAuth).Post("/logout/all", wrap(s, s.logoutAll))

	if s.deps.Federation != nil {
		r.Get("/login/"+s.deps.Federation.ProviderID(), wrap(s, s.beginFederation))
		r.Get(s.cfg.CallbackPath, wrap(s, s.completeFederation))
	}

	r.With(s.deps.Resolver.RequireAuth).Get("/api/me", wrap(s, s.me))
	if s.deps.Tokens != nil {
		r.With(s.deps.Resolver.RequireAuth).Get("/api/get-token", wrap(s, s.chatToken))
	}

	return r
}

func wrap[R any](s *Service, h handler.HandlerFunc[R], binders ...binder.Func) http.HandlerFunc {
	opts := []handler.WrapOption[R]{handler.WithErrorHandler[R](s.errorHandler)}
	for _, b := range binders {
		opts = append(opts, handler.WithBinder[R](b))
	}
	return handler.Wrap(h, opts...)
}

func signInKey(r *http.Request) string {
	ip := clientip.FromContext(r.Context())
	if ip == "" {
		return ""
	}
	return "signin:" + ip
}

func (s *Service) throttled(w http.ResponseWriter, r *http.Request, retryAfter time.Duration) {
	s.logger.WarnContext(r.Context(), "sign-in throttled",
		logger.Event("signin_throttled"),
		slog.String("ip", clientip.FromContext(r.Context())),
		logger.Duration(retryAfter),
	)
	s.errorHandler(handler.NewContext(w, r), handler.ErrTooManyRequests)
}

// flowCookieOptions scopes the federation cookies to the callback. They are
// always Secure in production.
func (s *Service) flowCookieOptions(ctx context.Context) []cookie.Option {
	return []cookie.Option{
		cookie.WithPath(s.cfg.CallbackPath),
		cookie.WithMaxAge(int(s.cfg.FlowCookieTTL.Seconds())),
		cookie.WithHTTPOnly(true),
		cookie.WithSecure(s.cfg.SecureCookies || environment.IsProduction(ctx)),
		cookie.WithSameSite(http.SameSiteLaxMode),
	}
}

package ratelimiter

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrymomot/identity/pkg/logger"
)

// KeyFunc extracts a rate limit key from the request. An empty key skips
// limiting for that request.
type KeyFunc func(r *http.Request) string

type middlewareConfig struct {
	denied   func(w http.ResponseWriter, r *http.Request, retryAfter time.Duration)
	log      *slog.Logger
	failOpen bool
}

type MiddlewareOption func(*middlewareConfig)

// WithDeniedHandler replaces the plain 429 response. Rate limit headers are
// already set when it runs.
func WithDeniedHandler(fn func(w http.ResponseWriter, r *http.Request, retryAfter time.Duration)) MiddlewareOption {
	return func(c *middlewareConfig) { c.denied = fn }
}

// WithFailOpen lets requests through when the store errors.
func WithFailOpen(open bool) MiddlewareOption {
	return func(c *middlewareConfig) { c.failOpen = open }
}

func WithLogger(l *slog.Logger) MiddlewareOption {
	return func(c *middlewareConfig) { c.log = l }
}

// Middleware rejects requests whose key has run out of tokens.
func Middleware(l Limiter, keyFunc KeyFunc, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := middlewareConfig{
		denied: func(w http.ResponseWriter, _ *http.Request, _ time.Duration) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		},
		log: logger.Discard(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	clock := time.Now
	if c, ok := l.(interface{ Now() time.Time }); ok {
		clock = c.Now
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFunc(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			result, err := l.Allow(r.Context(), key)
			if err != nil {
				cfg.log.ErrorContext(r.Context(), "rate limit check failed",
					logger.Component("ratelimiter"),
					logger.Error(err),
				)
				if cfg.failOpen {
					next.ServeHTTP(w, r)
					return
				}
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(0, result.Remaining)))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

			if !result.Allowed() {
				retryAfter := result.RetryAfter(clock())
				if secs := int((retryAfter + time.Second - 1) / time.Second); secs > 0 {
					w.Header().Set("Retry-After", strconv.Itoa(secs))
				}
				cfg.denied(w, r, retryAfter)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

package ratelimiter_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/identity/pkg/ratelimiter"
)

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (*ratelimiter.Result, error) {
	return nil, errors.New("store down")
}

func staticKey(*http.Request) string { return "k" }

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	t.Run("limits per key and sets headers", func(t *testing.T) {
		clock := newClock()
		b, err := ratelimiter.NewBucket(ratelimiter.NewMemoryStore(), testConfig, ratelimiter.WithClock(clock.Now))
		require.NoError(t, err)

		keyFn := func(r *http.Request) string { return r.Header.Get("X-Key") }
		h := ratelimiter.Middleware(b, keyFn)(okHandler())

		do := func(key string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodPost, "/login", nil)
			req.Header.Set("X-Key", key)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			return rec
		}

		for range testConfig.Capacity {
			rec := do("a")
			assert.Equal(t, http.StatusNoContent, rec.Code)
			assert.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
		}

		rec := do("a")
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
		assert.Equal(t, "60", rec.Header().Get("Retry-After"))

		assert.Equal(t, http.StatusNoContent, do("b").Code)

		// Empty key bypasses the limiter.
		assert.Equal(t, http.StatusNoContent, do("").Code)

		clock.Advance(time.Minute)
		assert.Equal(t, http.StatusNoContent, do("a").Code)
	})

	t.Run("custom denied handler", func(t *testing.T) {
		b, err := ratelimiter.NewBucket(ratelimiter.NewMemoryStore(), ratelimiter.Config{
			Capacity: 1, RefillRate: 1, RefillInterval: time.Hour,
		})
		require.NoError(t, err)

		var gotRetry time.Duration
		h := ratelimiter.Middleware(b, staticKey,
			ratelimiter.WithDeniedHandler(func(w http.ResponseWriter, _ *http.Request, retryAfter time.Duration) {
				gotRetry = retryAfter
				w.WriteHeader(http.StatusTeapot)
			}),
		)(okHandler())

		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusTeapot, rec.Code)
		assert.Positive(t, gotRetry)
	})

	t.Run("store failure closes by default", func(t *testing.T) {
		rec := httptest.NewRecorder()
		ratelimiter.Middleware(failingLimiter{}, staticKey)(okHandler()).
			ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("store failure can fail open", func(t *testing.T) {
		rec := httptest.NewRecorder()
		ratelimiter.Middleware(failingLimiter{}, staticKey, ratelimiter.WithFailOpen(true))(okHandler()).
			ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}

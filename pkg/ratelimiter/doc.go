// Package ratelimiter implements token bucket throttling with in-memory and
// Redis-backed stores.
//
// A Bucket answers "may this key spend one more token?" and reports how long
// a denied caller should wait:
//
//	store := ratelimiter.NewMemoryStore()
//	limiter, err := ratelimiter.NewBucket(store, ratelimiter.Config{
//		Capacity:       10,
//		RefillRate:     1,
//		RefillInterval: time.Minute,
//	})
//
//	r.With(ratelimiter.Middleware(limiter, keyFunc)).Post("/login", login)
//
// Denied requests receive 429 with Retry-After and X-RateLimit-* headers,
// unless WithDeniedHandler replaces the response.
package ratelimiter

package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/identity/pkg/cookie"
	"github.com/dmitrymomot/identity/pkg/password"
	"github.com/dmitrymomot/identity/pkg/session"
)

// fastHasher keeps argon2 cheap in tests; verification reads the parameters
// from the hash so production hashes still verify.
func fastHasher() *password.Hasher {
	return password.New(password.WithParams(password.Params{
		Memory:      64,
		Iterations:  1,
		Parallelism: 1,
		KeyLength:   32,
		SaltLength:  16,
	}))
}

func newSessions(t *testing.T, store session.Store, opts ...session.Option) *session.Manager {
	t.Helper()

	cookies, err := cookie.New([]string{"test-secret-key-that-is-long-enough"})
	require.NoError(t, err)

	base := []session.Option{
		session.WithCookieManager(cookies),
		session.WithStore(store),
		session.WithConfig(session.Config{
			CookieName: "auth_session",
			Lifetime:   30 * 24 * time.Hour,
		}),
	}
	return session.New(append(base, opts...)...)
}

package auth_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/identity/handler"
	"github.com/dmitrymomot/identity/pkg/auth"
	"github.com/dmitrymomot/identity/pkg/session"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type resolverFixture struct {
	users    *auth.MemoryUserStore
	store    *session.MemoryStore
	sessions *session.Manager
	resolver *auth.Resolver
	clock    *testClock
	user     *auth.User
}

func setupResolver(t *testing.T) *resolverFixture {
	t.Helper()

	f := &resolverFixture{
		users: auth.NewMemoryUserStore(),
		store: session.NewMemoryStore(),
		clock: &testClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)},
		user:  &auth.User{ID: uuid.New(), Username: "alice", DisplayName: "alice", PasswordHash: "x"},
	}
	require.NoError(t, f.users.CreateUser(context.Background(), f.user))
	f.sessions = newSessions(t, f.store, session.WithClock(f.clock.Now))
	f.resolver = auth.NewResolver(f.users, f.sessions)
	return f
}

func (f *resolverFixture) login(t *testing.T) string {
	t.Helper()
	token, _, err := f.sessions.Create(context.Background(), f.user.ID)
	require.NoError(t, err)
	return token
}

func (f *resolverFixture) request(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.AddCookie(f.sessions.SessionCookie(token))
	}
	return req
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == "auth_session" {
			return c
		}
	}
	return nil
}

func TestResolver_Resolve(t *testing.T) {
	t.Parallel()

	t.Run("no cookie is anonymous and leaves the response alone", func(t *testing.T) {
		t.Parallel()
		f := setupResolver(t)
		rec := httptest.NewRecorder()

		id, err := f.resolver.Resolve(rec, f.request(""))
		require.NoError(t, err)
		assert.False(t, id.Authenticated())
		assert.Empty(t, rec.Header().Values("Set-Cookie"))
	})

	t.Run("valid session", func(t *testing.T) {
		t.Parallel()
		f := setupResolver(t)
		token := f.login(t)
		rec := httptest.NewRecorder()

		id, err := f.resolver.Resolve(rec, f.request(token))
		require.NoError(t, err)
		require.True(t, id.Authenticated())
		assert.Equal(t, f.user.ID, id.User.ID)
		assert.False(t, id.Session.Fresh)
		assert.Nil(t, sessionCookie(rec))
	})

	t.Run("extended session reissues the cookie", func(t *testing.T) {
		t.Parallel()
		f := setupResolver(t)
		token := f.login(t)
		f.clock.Advance(20 * 24 * time.Hour)
		rec := httptest.NewRecorder()

		id, err := f.resolver.Resolve(rec, f.request(token))
		require.NoError(t, err)
		require.True(t, id.Authenticated())
		assert.True(t, id.Session.Fresh)
		assert.Equal(t, f.clock.Now().Add(30*24*time.Hour), id.Session.ExpiresAt)

		c := sessionCookie(rec)
		require.NotNil(t, c)
		assert.Equal(t, token, c.Value)
		assert.Zero(t, c.MaxAge)
		assert.True(t, c.HttpOnly)
	})

	t.Run("unknown token blanks the cookie", func(t *testing.T) {
		t.Parallel()
		f := setupResolver(t)
		rec := httptest.NewRecorder()

		id, err := f.resolver.Resolve(rec, f.request("not-a-session"))
		require.NoError(t, err)
		assert.False(t, id.Authenticated())

		c := sessionCookie(rec)
		require.NotNil(t, c)
		assert.Empty(t, c.Value)
		assert.Less(t, c.MaxAge, 0)
	})

	t.Run("expired session blanks the cookie", func(t *testing.T) {
		t.Parallel()
		f := setupResolver(t)
		token := f.login(t)
		f.clock.Advance(31 * 24 * time.Hour)
		rec := httptest.NewRecorder()

		id, err := f.resolver.Resolve(rec, f.request(token))
		require.NoError(t, err)
		assert.False(t, id.Authenticated())
		require.NotNil(t, sessionCookie(rec))
		assert.Equal(t, 0, f.store.Len())
	})

	t.Run("session of a deleted user is dropped", func(t *testing.T) {
		t.Parallel()
		f := setupResolver(t)
		token, _, err := f.sessions.Create(context.Background(), uuid.New())
		require.NoError(t, err)
		rec := httptest.NewRecorder()

		id, err := f.resolver.Resolve(rec, f.request(token))
		require.NoError(t, err)
		assert.False(t, id.Authenticated())
		assert.Equal(t, 0, f.store.Len())
		require.NotNil(t, sessionCookie(rec))
	})

	t.Run("user store failure", func(t *testing.T) {
		t.Parallel()
		f := setupResolver(t)
		token := f.login(t)

		users := &MockUserStore{}
		users.On("GetUserByID", mock.Anything, f.user.ID).Return(nil, errors.New("connection reset"))
		resolver := auth.NewResolver(users, f.sessions)
		rec := httptest.NewRecorder()

		id, err := resolver.Resolve(rec, f.request(token))
		assert.ErrorIs(t, err, auth.ErrStorageFailure)
		require.NotNil(t, id)
		assert.False(t, id.Authenticated())
		assert.Nil(t, sessionCookie(rec))
	})
}

func TestResolver_Middleware(t *testing.T) {
	t.Parallel()

	t.Run("resolves once per request", func(t *testing.T) {
		t.Parallel()
		f := setupResolver(t)
		token := f.login(t)

		users := &MockUserStore{}
		users.On("GetUserByID", mock.Anything, f.user.ID).Return(f.user, nil)
		resolver := auth.NewResolver(users, f.sessions)

		var first, second *auth.Identity
		h := resolver.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var err error
			first, err = auth.CurrentIdentity(r.Context())
			require.NoError(t, err)
			second, err = auth.CurrentIdentity(r.Context())
			require.NoError(t, err)
		}))

		h.ServeHTTP(httptest.NewRecorder(), f.request(token))
		assert.Same(t, first, second)
		assert.True(t, first.Authenticated())
		users.AssertNumberOfCalls(t, "GetUserByID", 1)
	})

	t.Run("requests do not share results", func(t *testing.T) {
		t.Parallel()
		f := setupResolver(t)
		token := f.login(t)

		var seen []bool
		h := f.resolver.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := auth.CurrentIdentity(r.Context())
			require.NoError(t, err)
			seen = append(seen, id.Authenticated())
		}))

		h.ServeHTTP(httptest.NewRecorder(), f.request(token))
		h.ServeHTTP(httptest.NewRecorder(), f.request(""))
		assert.Equal(t, []bool{true, false}, seen)
	})

	t.Run("without middleware", func(t *testing.T) {
		t.Parallel()
		id, err := auth.CurrentIdentity(context.Background())
		assert.ErrorIs(t, err, auth.ErrResolverMissing)
		assert.False(t, id.Authenticated())
	})
}

func TestResolver_RequireAuth(t *testing.T) {
	t.Parallel()
	f := setupResolver(t)
	token := f.login(t)

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	h := f.resolver.Middleware(f.resolver.RequireAuth(ok))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, f.request(token))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, f.request(""))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	var body handler.ErrorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "unauthorized", body.Error.Code)

	rec = httptest.NewRecorder()
	f.resolver.RequireAuth(ok).ServeHTTP(rec, f.request(token))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body = handler.ErrorBody{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "internal_server_error", body.Error.Code)
}

func TestResolver_RequireAuthCustomErrorHandler(t *testing.T) {
	t.Parallel()
	f := setupResolver(t)

	var got error
	rs := auth.NewResolver(auth.NewMemoryUserStore(), newSessions(t, session.NewMemoryStore()),
		auth.WithResolverErrorHandler(func(ctx handler.Context, err error) {
			got = err
			ctx.ResponseWriter().WriteHeader(http.StatusTeapot)
		}),
	)
	h := rs.Middleware(rs.RequireAuth(http.NotFoundHandler()))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, f.request(""))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.ErrorIs(t, got, handler.ErrUnauthorized)
}

package cookie_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/identity/pkg/cookie"
)

const (
	secret    = "this-is-a-very-long-secret-key-32-chars-long"
	oldSecret = "this-is-old-very-long-secret-key-32-chars-ok"
)

func roundTrip(w *httptest.ResponseRecorder) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		secrets []string
		wantErr error
	}{
		{"no secrets", nil, cookie.ErrNoSecret},
		{"empty secrets", []string{"", ""}, cookie.ErrNoSecret},
		{"secret too short", []string{"short"}, cookie.ErrSecretTooShort},
		{"valid secret", []string{secret}, nil},
		{"rotation", []string{secret, oldSecret}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := cookie.New(tt.secrets)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestManager_Cookie(t *testing.T) {
	t.Parallel()

	m, err := cookie.New([]string{secret}, cookie.WithSecure(true))
	require.NoError(t, err)

	t.Run("applies defaults", func(t *testing.T) {
		t.Parallel()

		c := m.Cookie("auth_session", "token")
		assert.Equal(t, "/", c.Path)
		assert.True(t, c.HttpOnly)
		assert.True(t, c.Secure)
		assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
		assert.Zero(t, c.MaxAge)
	})

	t.Run("options override defaults per cookie", func(t *testing.T) {
		t.Parallel()

		c := m.Cookie("state", "v", cookie.WithPath("/callback"), cookie.WithMaxAge(600))
		assert.Equal(t, "/callback", c.Path)
		assert.Equal(t, 600, c.MaxAge)

		again := m.Cookie("auth_session", "token")
		assert.Equal(t, "/", again.Path)
	})

	t.Run("blank expires immediately", func(t *testing.T) {
		t.Parallel()

		c := m.Blank("auth_session")
		assert.Empty(t, c.Value)
		assert.Equal(t, -1, c.MaxAge)
		assert.True(t, c.HttpOnly)

		w := httptest.NewRecorder()
		http.SetCookie(w, c)
		assert.Contains(t, w.Header().Get("Set-Cookie"), "Max-Age=0")
	})
}

func TestManager_GetSet(t *testing.T) {
	t.Parallel()

	m, err := cookie.New([]string{secret})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	m.Set(w, "plain", "value")

	got, err := m.Get(roundTrip(w), "plain")
	require.NoError(t, err)
	assert.Equal(t, "value", got)

	_, err = m.Get(httptest.NewRequest(http.MethodGet, "/", nil), "plain")
	assert.ErrorIs(t, err, cookie.ErrCookieNotFound)
}

func TestManager_Signed(t *testing.T) {
	t.Parallel()

	m, err := cookie.New([]string{secret})
	require.NoError(t, err)

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		m.SetSigned(w, "state", "abc123")

		got, err := m.GetSigned(roundTrip(w), "state")
		require.NoError(t, err)
		assert.Equal(t, "abc123", got)
	})

	t.Run("tampered value is rejected", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		m.SetSigned(w, "state", "abc123")
		c := w.Result().Cookies()[0]
		_, sig, _ := strings.Cut(c.Value, ".")

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: "state", Value: "ZXZpbA." + sig})

		_, err := m.GetSigned(r, "state")
		assert.ErrorIs(t, err, cookie.ErrInvalidSignature)
	})

	t.Run("signature is bound to the cookie name", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		m.SetSigned(w, "state", "abc123")
		c := w.Result().Cookies()[0]

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: "code_verifier", Value: c.Value})

		_, err := m.GetSigned(r, "code_verifier")
		assert.ErrorIs(t, err, cookie.ErrInvalidSignature)
	})

	t.Run("malformed value", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: "state", Value: "no-separator"})

		_, err := m.GetSigned(r, "state")
		assert.ErrorIs(t, err, cookie.ErrInvalidFormat)
	})

	t.Run("old secret still verifies after rotation", func(t *testing.T) {
		t.Parallel()

		old, err := cookie.New([]string{oldSecret})
		require.NoError(t, err)
		rotated, err := cookie.New([]string{secret, oldSecret})
		require.NoError(t, err)

		w := httptest.NewRecorder()
		old.SetSigned(w, "state", "v")

		got, err := rotated.GetSigned(roundTrip(w), "state")
		require.NoError(t, err)
		assert.Equal(t, "v", got)
	})
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	m, err := cookie.NewFromConfig(cookie.Config{
		Secrets: " " + secret + " , " + oldSecret,
		Domain:  "example.com",
		Secure:  true,
	})
	require.NoError(t, err)

	c := m.Cookie("a", "b")
	assert.Equal(t, "example.com", c.Domain)
	assert.True(t, c.Secure)
}

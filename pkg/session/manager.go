package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/identity/pkg/cookie"
	"github.com/dmitrymomot/identity/pkg/logger"
)

// Manager is the only component that creates, extends or deletes sessions.
type Manager struct {
	store   Store
	cookies *cookie.Manager
	config  Config
	log     *slog.Logger
	now     func() time.Time
}

// New creates a session manager. It panics without a cookie manager.
func New(opts ...Option) *Manager {
	m := &Manager{
		config: DefaultConfig(),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.cookies == nil {
		panic("session: cookie manager is required")
	}
	if m.store == nil {
		m.store = NewMemoryStore()
	}
	if m.log == nil {
		m.log = logger.Discard()
	}
	if m.config.Lifetime <= 0 {
		m.config.Lifetime = DefaultConfig().Lifetime
	}
	if m.config.CookieName == "" {
		m.config.CookieName = DefaultConfig().CookieName
	}
	m.log = m.log.With(logger.Component("session"))

	return m
}

// Config returns the effective configuration.
func (m *Manager) Config() Config {
	return m.config
}

// Create starts a session for userID and returns the token to put in the
// cookie together with the stored record.
func (m *Manager) Create(ctx context.Context, userID uuid.UUID) (string, *Session, error) {
	token, err := generateToken()
	if err != nil {
		return "", nil, err
	}

	now := m.now()
	s := &Session{
		ID:        HashToken(token),
		UserID:    userID,
		ExpiresAt: now.Add(m.config.Lifetime),
		CreatedAt: now,
	}

	if err := m.store.Create(ctx, s); err != nil {
		return "", nil, errors.Join(ErrStorage, err)
	}

	m.log.DebugContext(ctx, "session created", logger.UserID(userID), logger.Event("session.created"))
	return token, s, nil
}

// Validate looks up the session for token. It returns ErrSessionNotFound or
// ErrSessionExpired when there is no valid session, and an error wrapping
// ErrStorage when the store fails.
func (m *Manager) Validate(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}
	id := HashToken(token)

	s, err := m.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, errors.Join(ErrStorage, err)
	}

	now := m.now()
	if s.ExpiredAt(now) {
		if err := m.store.Delete(ctx, id); err != nil {
			m.log.WarnContext(ctx, "failed to delete expired session", logger.UserID(s.UserID), logger.Error(err))
		}
		return nil, ErrSessionExpired
	}

	if s.ExpiresAt.Sub(now) < m.config.Lifetime/2 {
		expiresAt := now.Add(m.config.Lifetime)
		if err := m.store.UpdateExpiry(ctx, id, expiresAt); err != nil {
			// The session is still valid; the next request retries the extension.
			m.log.WarnContext(ctx, "failed to extend session", logger.UserID(s.UserID), logger.Error(err))
		} else {
			s.ExpiresAt = expiresAt
			s.Fresh = true
		}
	}

	return s, nil
}

// Invalidate deletes the session for token. Unknown tokens are ignored.
func (m *Manager) Invalidate(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := m.store.Delete(ctx, HashToken(token)); err != nil {
		return errors.Join(ErrStorage, err)
	}
	return nil
}

// InvalidateUser deletes every session of userID.
func (m *Manager) InvalidateUser(ctx context.Context, userID uuid.UUID) error {
	if err := m.store.DeleteByUserID(ctx, userID); err != nil {
		return errors.Join(ErrStorage, err)
	}
	m.log.InfoContext(ctx, "user sessions invalidated", logger.UserID(userID), logger.Event("session.invalidated_all"))
	return nil
}

// SessionCookie carries token without Max-Age or Expires; the server-side
// expiry is authoritative.
func (m *Manager) SessionCookie(token string) *http.Cookie {
	return m.cookies.Cookie(m.config.CookieName, token, m.cookieOptions()...)
}

// BlankCookie clears the session cookie on the client.
func (m *Manager) BlankCookie() *http.Cookie {
	return m.cookies.Blank(m.config.CookieName, m.cookieOptions()...)
}

// Issue writes the session cookie for token.
func (m *Manager) Issue(w http.ResponseWriter, token string) {
	http.SetCookie(w, m.SessionCookie(token))
}

// Clear writes the blank session cookie.
func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, m.BlankCookie())
}

// Token returns the session token carried by r, if any.
func (m *Manager) Token(r *http.Request) (string, bool) {
	token, err := m.cookies.Get(r, m.config.CookieName)
	if err != nil {
		return "", false
	}
	return token, true
}

// StartCleanup deletes expired sessions every CleanupInterval until ctx is
// done. It returns immediately when the interval is not positive.
func (m *Manager) StartCleanup(ctx context.Context) {
	interval := m.config.CleanupInterval
	if interval <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := m.store.DeleteExpired(ctx, m.now()); err != nil && ctx.Err() == nil {
					m.log.ErrorContext(ctx, "expired session cleanup failed", logger.Error(err))
				}
			}
		}
	}()
}

// cookieOptions only forces Secure on; otherwise the cookie manager's
// default stands.
func (m *Manager) cookieOptions() []cookie.Option {
	opts := []cookie.Option{
		cookie.WithPath("/"),
		cookie.WithHTTPOnly(true),
		cookie.WithSameSite(http.SameSiteLaxMode),
	}
	if m.config.SecureCookies {
		opts = append(opts, cookie.WithSecure(true))
	}
	return opts
}

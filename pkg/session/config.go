package session

import "time"

// Config holds session configuration
type Config struct {
	// CookieName is the name of the session cookie.
	CookieName string `env:"SESSION_COOKIE_NAME" envDefault:"auth_session"`

	// Lifetime is the sliding session window.
	Lifetime time.Duration `env:"SESSION_LIFETIME" envDefault:"720h"`

	// CleanupInterval for expired sessions (0 to disable).
	CleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"1h"`

	// SecureCookies sets the Secure flag. Production forces it on.
	SecureCookies bool `env:"SESSION_SECURE_COOKIES" envDefault:"false"`

	// Store selects the backend: postgres, redis or memory.
	Store string `env:"SESSION_STORE" envDefault:"postgres"`
}

// DefaultConfig returns default session configuration
func DefaultConfig() Config {
	return Config{
		CookieName:      "auth_session",
		Lifetime:        30 * 24 * time.Hour,
		CleanupInterval: time.Hour,
		Store:           "postgres",
	}
}

// NewFromConfig creates a new Manager from the provided Config.
// A cookie manager is still required via WithCookieManager.
func NewFromConfig(cfg Config, opts ...Option) *Manager {
	return New(append([]Option{WithConfig(cfg)}, opts...)...)
}

package account

import "time"

// Config holds the routes and cookie settings of the account endpoints.
type Config struct {
	HomeURL       string        `env:"ACCOUNT_HOME_URL" envDefault:"/"`
	LoginURL      string        `env:"ACCOUNT_LOGIN_URL" envDefault:"/login"`
	CallbackPath  string        `env:"GOOGLE_OAUTH_CALLBACK_PATH" envDefault:"/api/auth/callback/google"`
	FlowCookieTTL time.Duration `env:"GOOGLE_OAUTH_FLOW_TTL" envDefault:"10m"`
	SecureCookies bool          `env:"SESSION_SECURE_COOKIES" envDefault:"false"`

	// SignInLimitFailOpen lets sign-in requests through when the limiter store is down.
	SignInLimitFailOpen bool `env:"SIGNIN_RATE_LIMIT_FAIL_OPEN" envDefault:"false"`
}

// DefaultConfig returns the values used when fields are left empty.
func DefaultConfig() Config {
	return Config{
		HomeURL:       "/",
		LoginURL:      "/login",
		CallbackPath:  "/api/auth/callback/google",
		FlowCookieTTL: 10 * time.Minute,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.HomeURL == "" {
		c.HomeURL = d.HomeURL
	}
	if c.LoginURL == "" {
		c.LoginURL = d.LoginURL
	}
	if c.CallbackPath == "" {
		c.CallbackPath = d.CallbackPath
	}
	if c.FlowCookieTTL <= 0 {
		c.FlowCookieTTL = d.FlowCookieTTL
	}
	return c
}

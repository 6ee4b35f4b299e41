package main

import "time"

type appConfig struct {
	Env           string        `env:"APP_ENV" envDefault:"development"`
	ServiceName   string        `env:"SERVICE_NAME" envDefault:"identity"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:""`
	GoogleEnabled bool          `env:"GOOGLE_OAUTH_ENABLED" envDefault:"true"`
	ChatEnabled   bool          `env:"STREAM_ENABLED" envDefault:"true"`
	HealthTimeout time.Duration `env:"HEALTHCHECK_TIMEOUT" envDefault:"3s"`

	TrustedProxies []string `env:"CLIENT_IP_TRUSTED_PROXIES" envSeparator:","`
	SignInLimit    bool     `env:"SIGNIN_RATE_LIMIT_ENABLED" envDefault:"true"`
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sessionSettings struct {
	CookieName string        `env:"TEST_SESSION_COOKIE_NAME" envDefault:"auth_session"`
	Lifetime   time.Duration `env:"TEST_SESSION_LIFETIME" envDefault:"720h"`
}

type requiredSettings struct {
	Secret string `env:"TEST_REQUIRED_SECRET,required"`
}

func TestLoad(t *testing.T) {
	t.Run("applies defaults and env overrides", func(t *testing.T) {
		reset()
		t.Setenv("TEST_SESSION_LIFETIME", "48h")

		var cfg sessionSettings
		require.NoError(t, Load(&cfg))
		assert.Equal(t, "auth_session", cfg.CookieName)
		assert.Equal(t, 48*time.Hour, cfg.Lifetime)
	})

	t.Run("caches per type", func(t *testing.T) {
		reset()
		t.Setenv("TEST_SESSION_COOKIE_NAME", "first")

		var a sessionSettings
		require.NoError(t, Load(&a))

		t.Setenv("TEST_SESSION_COOKIE_NAME", "second")
		var b sessionSettings
		require.NoError(t, Load(&b))

		assert.Equal(t, "first", b.CookieName)
	})

	t.Run("reports missing required values", func(t *testing.T) {
		reset()

		var cfg requiredSettings
		err := Load(&cfg)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrParsingConfig)
	})

	t.Run("rejects nil pointer", func(t *testing.T) {
		var cfg *sessionSettings
		assert.ErrorIs(t, Load(cfg), ErrNilPointer)
	})
}

func TestMustLoad_Panics(t *testing.T) {
	reset()

	assert.Panics(t, func() {
		var cfg requiredSettings
		MustLoad(&cfg)
	})
}

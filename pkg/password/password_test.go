package password_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/identity/pkg/password"
)

func TestHasher_Hash(t *testing.T) {
	t.Parallel()

	h := password.New()

	t.Run("encodes fixed parameters in PHC format", func(t *testing.T) {
		t.Parallel()

		encoded, err := h.Hash("correct-horse-battery")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$m=19456,t=2,p=1$"), encoded)

		parts := strings.Split(encoded, "$")
		require.Len(t, parts, 6)
		assert.NotContains(t, parts[4], "=")
		assert.NotContains(t, parts[5], "=")
	})

	t.Run("salts every hash", func(t *testing.T) {
		t.Parallel()

		a, err := h.Hash("same-password")
		require.NoError(t, err)
		b, err := h.Hash("same-password")
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})
}

func TestHasher_Verify(t *testing.T) {
	t.Parallel()

	h := password.New()
	encoded, err := h.Hash("correct-horse-battery")
	require.NoError(t, err)

	t.Run("accepts the right password", func(t *testing.T) {
		t.Parallel()
		assert.True(t, h.Verify(encoded, "correct-horse-battery"))
	})

	t.Run("rejects a wrong password", func(t *testing.T) {
		t.Parallel()
		assert.False(t, h.Verify(encoded, "wrong-pass"))
		assert.False(t, h.Verify(encoded, ""))
	})

	t.Run("treats malformed hashes as mismatch", func(t *testing.T) {
		t.Parallel()

		cases := []string{
			"",
			"not-a-hash",
			"$argon2i$v=19$m=19456,t=2,p=1$c2FsdHNhbHRzYWx0$aGFzaA",
			"$argon2id$v=16$m=19456,t=2,p=1$c2FsdHNhbHRzYWx0$aGFzaA",
			"$argon2id$v=19$m=0,t=2,p=1$c2FsdHNhbHRzYWx0$aGFzaA",
			"$argon2id$v=19$m=4294967295,t=4294967295,p=255$c2FsdHNhbHRzYWx0$aGFzaA",
			"$argon2id$v=19$m=65537,t=2,p=1$c2FsdHNhbHRzYWx0$aGFzaA",
			"$argon2id$v=19$m=19456,t=11,p=1$c2FsdHNhbHRzYWx0$aGFzaA",
			"$argon2id$v=19$m=19456,t=2,p=9$c2FsdHNhbHRzYWx0$aGFzaA",
			"$argon2id$v=19$m=19456,t=2,p=1$c2FsdHNhbHRzYWx0$" + strings.Repeat("A", 88),
			"$argon2id$v=19$m=19456,t=2,p=1$!!!$aGFzaA",
			"$argon2id$v=19$m=19456,t=2,p=1$c2FsdHNhbHRzYWx0$",
			strings.TrimSuffix(encoded, encoded[len(encoded)-4:]) + "====",
		}
		for _, c := range cases {
			assert.False(t, h.Verify(c, "correct-horse-battery"), c)
		}
	})

	t.Run("verifies with parameters read from the hash", func(t *testing.T) {
		t.Parallel()

		cheap := password.New(password.WithParams(password.Params{
			Memory:      64,
			Iterations:  1,
			Parallelism: 1,
			KeyLength:   32,
			SaltLength:  16,
		}))
		weak, err := cheap.Hash("pw-12345678")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(weak, "$argon2id$v=19$m=64,t=1,p=1$"))

		assert.True(t, h.Verify(weak, "pw-12345678"))
	})
}

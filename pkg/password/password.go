package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	// DefaultMemory is the argon2id memory cost in KiB.
	DefaultMemory uint32 = 19456
	// DefaultIterations is the argon2id time cost.
	DefaultIterations uint32 = 2
	// DefaultParallelism is the argon2id degree of parallelism.
	DefaultParallelism uint8 = 1
	// DefaultKeyLength is the digest length in bytes.
	DefaultKeyLength uint32 = 32
	// DefaultSaltLength is the random salt length in bytes.
	DefaultSaltLength uint32 = 16
)

// Upper bounds accepted when decoding a stored hash. A hash above them is
// invalid rather than verified.
const (
	maxMemory      uint32 = 64 * 1024
	maxIterations  uint32 = 10
	maxParallelism uint8  = 8
	maxKeyLength          = 64
	maxSaltLength         = 64
)

// Params holds argon2id cost parameters.
type Params struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	KeyLength   uint32
	SaltLength  uint32
}

// DefaultParams returns the parameters every stored hash is created with.
func DefaultParams() Params {
	return Params{
		Memory:      DefaultMemory,
		Iterations:  DefaultIterations,
		Parallelism: DefaultParallelism,
		KeyLength:   DefaultKeyLength,
		SaltLength:  DefaultSaltLength,
	}
}

// Hasher creates and verifies argon2id password hashes.
type Hasher struct {
	params Params
}

// Option configures a Hasher.
type Option func(*Hasher)

// WithParams overrides the hashing parameters. Intended for tests that need
// cheaper hashes; verification always uses the parameters encoded in the hash.
func WithParams(p Params) Option {
	return func(h *Hasher) {
		h.params = p
	}
}

// New returns a Hasher using DefaultParams unless overridden.
func New(opts ...Option) *Hasher {
	h := &Hasher{params: DefaultParams()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Hash derives an argon2id digest for the password and returns it PHC-encoded.
func (h *Hasher) Hash(password string) (string, error) {
	salt := make([]byte, h.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", errors.Join(ErrSaltGeneration, err)
	}

	key := argon2.IDKey([]byte(password), salt, h.params.Iterations, h.params.Memory, h.params.Parallelism, h.params.KeyLength)

	return encode(h.params, salt, key), nil
}

// Verify reports whether password matches the encoded hash.
// A hash that cannot be decoded never matches.
func (h *Hasher) Verify(encoded, password string) bool {
	p, salt, key, err := decode(encoded)
	if err != nil {
		return false
	}

	other := argon2.IDKey([]byte(password), salt, p.Iterations, p.Memory, p.Parallelism, uint32(len(key)))

	return subtle.ConstantTimeCompare(key, other) == 1
}

func encode(p Params, salt, key []byte) string {
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		p.Memory, p.Iterations, p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
}

func decode(encoded string) (Params, []byte, []byte, error) {
	// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, hash
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return Params{}, nil, nil, ErrInvalidHash
	}
	if parts[1] != "argon2id" {
		return Params{}, nil, nil, ErrUnsupportedAlgorithm
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return Params{}, nil, nil, errors.Join(ErrInvalidHash, err)
	}
	if version != argon2.Version {
		return Params{}, nil, nil, ErrIncompatibleVersion
	}

	var p Params
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Iterations, &p.Parallelism); err != nil {
		return Params{}, nil, nil, errors.Join(ErrInvalidHash, err)
	}
	if p.Memory == 0 || p.Iterations == 0 || p.Parallelism == 0 ||
		p.Memory > maxMemory || p.Iterations > maxIterations || p.Parallelism > maxParallelism {
		return Params{}, nil, nil, ErrInvalidHash
	}

	salt, err := base64.RawStdEncoding.Strict().DecodeString(parts[4])
	if err != nil {
		return Params{}, nil, nil, errors.Join(ErrInvalidHash, err)
	}
	if len(salt) > maxSaltLength {
		return Params{}, nil, nil, ErrInvalidHash
	}
	key, err := base64.RawStdEncoding.Strict().DecodeString(parts[5])
	if err != nil || len(key) == 0 || len(key) > maxKeyLength {
		return Params{}, nil, nil, ErrInvalidHash
	}
	p.SaltLength = uint32(len(salt))
	p.KeyLength = uint32(len(key))

	return p, salt, key, nil
}

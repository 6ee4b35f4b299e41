package chat

import "time"

type Config struct {
	BaseURL  string        `env:"STREAM_BASE_URL" envDefault:"https://chat.stream-io-api.com"`
	APIKey   string        `env:"STREAM_API_KEY,required"`
	Secret   string        `env:"STREAM_SECRET,required"`
	Timeout  time.Duration `env:"STREAM_TIMEOUT" envDefault:"5s"`     // Timeout bounds each REST call.
	TokenTTL time.Duration `env:"STREAM_TOKEN_TTL" envDefault:"1h"`   // TokenTTL is the lifetime of user tokens.
}

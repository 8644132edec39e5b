package security

import (
	"time"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/joefazee/categorical/models"
)

// Config holds the bearer token settings
type Config struct {
	SymmetricKey  string        `env:"SYMMETRIC_KEY"`
	TokenDuration time.Duration `env:"TOKEN_DURATION"`
}

// Validate checks the key length PASETO v2 requires
func (c *Config) Validate() error {
	if len(c.SymmetricKey) != chacha20poly1305.KeySize {
		return models.ErrInvalidSymmetricKey
	}
	if c.TokenDuration <= 0 {
		return models.ErrInvalidParameters
	}
	return nil
}

// GetDefaultConfig returns the default configuration. The key has no
// default and must come from the environment.
func GetDefaultConfig() *Config {
	return &Config{
		TokenDuration: 24 * time.Hour,
	}
}

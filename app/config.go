package app

import (
	"github.com/joefazee/categorical/app/collateral"
	"github.com/joefazee/categorical/app/database"
	"github.com/joefazee/categorical/app/journal"
	"github.com/joefazee/categorical/app/lmsr"
	"github.com/joefazee/categorical/app/markets"
	"github.com/joefazee/categorical/app/social"
	"github.com/joefazee/categorical/internal/nexus"
	"github.com/joefazee/categorical/internal/security"
)

type Config struct {
	DB         database.Config
	Security   security.Config
	LMSR       lmsr.Config
	Collateral collateral.Config
	Markets    markets.Config
	Social     social.Config
	Journal    journal.Config

	AppHost  string `env:"APP_HOST" validate:"required"`
	AppPort  string `env:"APP_PORT" validate:"required,numeric"`
	Env      string `env:"APP_ENV" validate:"oneof=development staging production"`
	LogLevel string `env:"LOG_LEVEL" validate:"oneof=debug info warn error"`
}

// DefaultConfig returns every section at its defaults
func DefaultConfig() *Config {
	return &Config{
		Security:   *security.GetDefaultConfig(),
		LMSR:       *lmsr.GetDefaultConfig(),
		Collateral: *collateral.GetDefaultConfig(),
		Markets:    *markets.GetDefaultConfig(),
		Social:     *social.GetDefaultConfig(),
		Journal:    *journal.GetDefaultConfig(),
		AppHost:    "localhost",
		AppPort:    "8080",
		Env:        "development",
		LogLevel:   "info",
	}
}

// LoadConfig loads the application configuration from environment variables or a config file.
func LoadConfig(opts ...nexus.LoaderOption) (*Config, error) {
	c := DefaultConfig()
	err := nexus.NewLoader(opts...).Load(c)
	return c, err
}

// Addr is the listen address of the HTTP server
func (c *Config) Addr() string {
	return c.AppHost + ":" + c.AppPort
}

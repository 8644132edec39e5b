package collateral

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joefazee/categorical/models"
)

// Decimals is fixed to the amount grid used by the pricing engine.
const Decimals = 18

// Config represents the configuration for the collateral token
type Config struct {
	Name   string `env:"COLLATERAL_NAME"`
	Symbol string `env:"COLLATERAL_SYMBOL"`
	Owner  string `env:"COLLATERAL_OWNER"`
}

// Validate validates the token configuration
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Name) == "" || strings.TrimSpace(c.Symbol) == "" {
		return models.ErrInvalidTokenMetadata
	}
	if c.Owner != "" && !common.IsHexAddress(c.Owner) {
		return models.ErrInvalidTokenMetadata
	}
	return nil
}

// OwnerAddress returns the configured minter, or the zero address when unset
func (c *Config) OwnerAddress() common.Address {
	if c.Owner == "" {
		return common.Address{}
	}
	return common.HexToAddress(c.Owner)
}

// GetDefaultConfig returns the default token configuration
func GetDefaultConfig() *Config {
	return &Config{
		Name:   "Wrapped DAG",
		Symbol: "wDAG",
	}
}

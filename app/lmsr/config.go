package lmsr

import (
	"github.com/joefazee/categorical/models"
	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits every public amount is quantized to.
const Scale = 18

// maxExpArg bounds the magnitude of exponent arguments handed to apd so the
// context never traps on overflow or underflow.
const maxExpArg = 10000

// Config represents the configuration for the pricing engine
type Config struct {
	Precision        uint32          `env:"LMSR_PRECISION"`
	ArbitrageEpsilon decimal.Decimal `env:"LMSR_ARBITRAGE_EPSILON"`
}

// Validate validates the pricing configuration
func (c *Config) Validate() error {
	// amounts up to 1e15 carry 33 significant digits on the 18-place grid
	if c.Precision < 34 || c.Precision > 200 {
		return models.ErrInvalidPrecision
	}
	if c.ArbitrageEpsilon.LessThanOrEqual(decimal.Zero) || c.ArbitrageEpsilon.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return models.ErrInvalidArbitrageEpsilon
	}
	return nil
}

// GetDefaultConfig returns the default pricing configuration
func GetDefaultConfig() *Config {
	return &Config{
		Precision:        50,
		ArbitrageEpsilon: decimal.New(1, -15), // 1e-15
	}
}

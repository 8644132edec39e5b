package markets

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joefazee/categorical/models"
	"github.com/shopspring/decimal"
)

// Config represents the configuration for the markets module
type Config struct {
	MaxOutcomes         int             `env:"MARKET_MAX_OUTCOMES"`
	MinInitialLiquidity decimal.Decimal `env:"MARKET_MIN_INITIAL_LIQUIDITY"`
	MinMarketDuration   time.Duration   `env:"MARKET_MIN_DURATION"`
	DefaultFeeRate      decimal.Decimal `env:"MARKET_DEFAULT_FEE_RATE"`
	MaxFeeRate          decimal.Decimal `env:"MARKET_MAX_FEE_RATE"`
	MaxMetadataLength   int             `env:"MARKET_MAX_METADATA_LENGTH"`
	RecentMarketsLimit  int             `env:"MARKET_RECENT_LIMIT"`
	MaxPageSize         int             `env:"MARKET_MAX_PAGE_SIZE"`

	Owner  string `env:"FACTORY_OWNER"`
	Admin  string `env:"FACTORY_ADMIN"`
	Oracle string `env:"ORACLE_RESOLVER"`
}

// Validate validates the market configuration
func (c *Config) Validate() error {
	if c.MaxOutcomes < 2 {
		return models.ErrInvalidMaxOutcomes
	}

	if !c.MinInitialLiquidity.IsPositive() {
		return models.ErrInvalidMinLiquidity
	}

	if c.MinMarketDuration < 0 {
		return models.ErrInvalidMarketDuration
	}

	if c.MaxFeeRate.IsNegative() || c.MaxFeeRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return models.ErrInvalidFeeRate
	}
	if c.DefaultFeeRate.IsNegative() || c.DefaultFeeRate.GreaterThan(c.MaxFeeRate) {
		return models.ErrInvalidFeeRate
	}

	if c.MaxMetadataLength <= 0 {
		return models.ErrInvalidMetadataLength
	}

	if c.RecentMarketsLimit <= 0 || c.MaxPageSize <= 0 {
		return models.ErrInvalidPageSize
	}

	for name, raw := range map[string]string{"owner": c.Owner, "admin": c.Admin, "oracle": c.Oracle} {
		if raw != "" && !common.IsHexAddress(raw) {
			return fmt.Errorf("%w: factory %s %q is not an address", models.ErrInvalidParameters, name, raw)
		}
	}

	return nil
}

// OwnerAddress returns the configured factory owner
func (c *Config) OwnerAddress() common.Address { return hexOrZero(c.Owner) }

// AdminAddress returns the configured factory admin
func (c *Config) AdminAddress() common.Address { return hexOrZero(c.Admin) }

// OracleAddress returns the configured oracle resolver
func (c *Config) OracleAddress() common.Address { return hexOrZero(c.Oracle) }

func hexOrZero(raw string) common.Address {
	if raw == "" {
		return common.Address{}
	}
	return common.HexToAddress(raw)
}

// GetDefaultConfig returns the default configuration
func GetDefaultConfig() *Config {
	return &Config{
		MaxOutcomes:         10,
		MinInitialLiquidity: decimal.NewFromInt(100),
		MinMarketDuration:   time.Hour,
		DefaultFeeRate:      decimal.NewFromFloat(0.01), // 1%
		MaxFeeRate:          decimal.NewFromFloat(0.1),  // 10%
		MaxMetadataLength:   2048,
		RecentMarketsLimit:  50,
		MaxPageSize:         100,
	}
}

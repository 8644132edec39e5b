package social

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/joefazee/categorical/models"
)

// Config represents the configuration for the social ledger
type Config struct {
	MaxLeaderboardSize int    `env:"SOCIAL_MAX_LEADERBOARD_SIZE"`
	MaxMetadataLength  int    `env:"SOCIAL_MAX_METADATA_LENGTH"`
	MaxPageSize        int    `env:"SOCIAL_MAX_PAGE_SIZE"`
	MaxHistory         int    `env:"SOCIAL_MAX_HISTORY"`
	Owner              string `env:"SOCIAL_OWNER"`

	// Reputation weights. A correct prediction earns CorrectReward plus
	// confidence/ConfidenceDivisor; a miss costs WrongPenalty, floored at zero.
	CorrectReward     uint64 `env:"SOCIAL_CORRECT_REWARD"`
	ConfidenceDivisor uint64 `env:"SOCIAL_CONFIDENCE_DIVISOR"`
	WrongPenalty      uint64 `env:"SOCIAL_WRONG_PENALTY"`
}

// Validate validates the social configuration
func (c *Config) Validate() error {
	if c.MaxLeaderboardSize <= 0 {
		return models.ErrInvalidLeaderboardSize
	}
	if c.MaxMetadataLength <= 0 {
		return models.ErrInvalidMetadataLength
	}
	if c.MaxPageSize <= 0 || c.MaxHistory <= 0 {
		return models.ErrInvalidPageSize
	}
	if c.CorrectReward == 0 || c.ConfidenceDivisor == 0 {
		return models.ErrInvalidReputationWeights
	}
	if c.Owner != "" && !common.IsHexAddress(c.Owner) {
		return models.ErrInvalidParameters
	}
	return nil
}

// OwnerAddress returns the configured ledger owner
func (c *Config) OwnerAddress() common.Address {
	if c.Owner == "" {
		return common.Address{}
	}
	return common.HexToAddress(c.Owner)
}

// GetDefaultConfig returns the default configuration
func GetDefaultConfig() *Config {
	return &Config{
		MaxLeaderboardSize: 100,
		MaxMetadataLength:  2048,
		MaxPageSize:        100,
		MaxHistory:         100,
		CorrectReward:      10,
		ConfidenceDivisor:  10,
		WrongPenalty:       5,
	}
}

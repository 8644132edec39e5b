package app

import (
	"testing"
	"time"

	"github.com/joefazee/categorical/internal/nexus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "abcdefghijklmnopqrstuvwxyzABCDEF"

func TestLoadConfig(t *testing.T) {
	t.Run("defaults with key", func(t *testing.T) {
		t.Setenv("SYMMETRIC_KEY", testKey)

		cfg, err := LoadConfig(nexus.WithOnlyEnvironment())
		require.NoError(t, err)
		assert.Equal(t, "localhost:8080", cfg.Addr())
		assert.Equal(t, "0.01", cfg.Markets.DefaultFeeRate.String())
		assert.Equal(t, 24*time.Hour, cfg.Security.TokenDuration)
		assert.Equal(t, "memory", cfg.Journal.Backend)
		assert.False(t, cfg.DB.Configured())
	})

	t.Run("environment overrides sections", func(t *testing.T) {
		t.Setenv("SYMMETRIC_KEY", testKey)
		t.Setenv("APP_PORT", "9090")
		t.Setenv("MARKET_DEFAULT_FEE_RATE", "0.02")
		t.Setenv("MARKET_MIN_DURATION", "30m")
		t.Setenv("SOCIAL_MAX_LEADERBOARD_SIZE", "25")
		t.Setenv("FACTORY_OWNER", "0x00000000000000000000000000000000000000a1")

		cfg, err := LoadConfig(nexus.WithOnlyEnvironment())
		require.NoError(t, err)
		assert.Equal(t, "localhost:9090", cfg.Addr())
		assert.Equal(t, "0.02", cfg.Markets.DefaultFeeRate.String())
		assert.Equal(t, 30*time.Minute, cfg.Markets.MinMarketDuration)
		assert.Equal(t, 25, cfg.Social.MaxLeaderboardSize)
		assert.Equal(t, "0x00000000000000000000000000000000000000a1", cfg.Markets.Owner)
	})

	t.Run("missing key", func(t *testing.T) {
		_, err := LoadConfig(nexus.WithOnlyEnvironment())
		var cfgErr *nexus.ConfigError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, nexus.ErrCodeSection, cfgErr.Code)
		assert.Equal(t, "Security", cfgErr.Field)
	})

	t.Run("fee above the cap", func(t *testing.T) {
		t.Setenv("SYMMETRIC_KEY", testKey)
		t.Setenv("MARKET_DEFAULT_FEE_RATE", "0.5")

		_, err := LoadConfig(nexus.WithOnlyEnvironment())
		var cfgErr *nexus.ConfigError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "Markets", cfgErr.Field)
	})

	t.Run("unknown environment", func(t *testing.T) {
		t.Setenv("SYMMETRIC_KEY", testKey)
		t.Setenv("APP_ENV", "qa")

		_, err := LoadConfig(nexus.WithOnlyEnvironment())
		var cfgErr *nexus.ConfigError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, nexus.ErrCodeValidation, cfgErr.Code)
	})
}

package config

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sniper-hq/sniperwatch/pkg/logger"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("RPC_URL", "https://rpc.example.com")
	t.Setenv("HOOK_ADDRESS", "0x1234567890123456789012345678901234567890")
	t.Setenv("TOKEN_IN_ADDRESS", "0x2222222222222222222222222222222222222222")
	t.Setenv("TOKEN_OUT_ADDRESS", "0x3333333333333333333333333333333333333333")
}

func TestLoadConfig(t *testing.T) {
	t.Run("defaults are applied", func(t *testing.T) {
		setRequiredEnv(t)

		cfg, err := LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, uint64(DefaultDeploymentBlock), cfg.DeploymentBlock)
		assert.Equal(t, uint64(DefaultLookbackBlocks), cfg.LookbackBlocks)
		assert.Equal(t, uint64(DefaultBackfillChunk), cfg.BackfillChunk)
		assert.Equal(t, 10*time.Second, cfg.PricePollEvery)
		assert.Equal(t, 60*time.Second, cfg.ResyncEvery)
		assert.Equal(t, 5*time.Minute, cfg.TxTimeout)
		assert.Equal(t, "8080", cfg.MetricsPort)
		assert.Equal(t, 1.1, cfg.GasMultiplier)
		assert.Equal(t, big.NewInt(1_000_000_000), cfg.MaxGasPrice)
		assert.Equal(t, 30, cfg.ActivityCapacity)
		assert.True(t, cfg.CircuitBreaker.Enabled)
		assert.Equal(t, 5, cfg.CircuitBreaker.Threshold)
		assert.Equal(t, logger.InfoLevel, cfg.LoggerConfig.Level)
		assert.True(t, cfg.ReadOnly())
	})

	t.Run("overrides are honored", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("DEPLOYMENT_BLOCK", "100")
		t.Setenv("LOOKBACK_BLOCKS", "50")
		t.Setenv("BACKFILL_CHUNK_SIZE", "500")
		t.Setenv("RESYNC_INTERVAL", "30")
		t.Setenv("LOG_LEVEL", "debug")
		t.Setenv("CB_ENABLED", "false")

		cfg, err := LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, uint64(100), cfg.DeploymentBlock)
		assert.Equal(t, uint64(50), cfg.LookbackBlocks)
		assert.Equal(t, uint64(500), cfg.BackfillChunk)
		assert.Equal(t, 30*time.Second, cfg.ResyncEvery)
		assert.Equal(t, logger.DebugLevel, cfg.LoggerConfig.Level)
		assert.False(t, cfg.CircuitBreaker.Enabled)
	})

	t.Run("private key flips read-only off", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("PRIVATE_KEY", "abc123")

		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.False(t, cfg.ReadOnly())
	})

	t.Run("missing token addresses fail validation", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("TOKEN_IN_ADDRESS", "")

		_, err := LoadConfig()
		assert.Error(t, err)
	})

	t.Run("invalid numeric values are rejected", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("DEPLOYMENT_BLOCK", "not-a-number")

		_, err := LoadConfig()
		assert.Error(t, err)
	})

	t.Run("zero chunk size is rejected", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("BACKFILL_CHUNK_SIZE", "0")

		_, err := LoadConfig()
		assert.Error(t, err)
	})

	t.Run("invalid log level is rejected", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("LOG_LEVEL", "verbose")

		_, err := LoadConfig()
		assert.Error(t, err)
	})
}

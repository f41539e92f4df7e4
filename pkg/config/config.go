package config

import (
	"fmt"
	"log"
	"math/big"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sniper-hq/sniperwatch/pkg/logger"
)

// Config holds the configuration for a watch session. It is built once
// at startup and passed explicitly into the venue client; nothing in
// the core reads configuration from process globals after this point.
type Config struct {
	RPCURL           string
	WSRPCURL         string
	HookAddress      string
	TokenInAddress   string
	TokenOutAddress  string
	OracleAddress    string
	PrivateKey       string
	DeploymentBlock  uint64
	LookbackBlocks   uint64
	BackfillChunk    uint64
	PricePollEvery   time.Duration
	ResyncEvery      time.Duration
	TxTimeout        time.Duration
	MetricsPort      string
	GasMultiplier    float64
	MaxGasPrice      *big.Int
	ActivityCapacity int
	CircuitBreaker   CircuitBreakerConfig
	LoggerConfig     LoggerConfig
}

// CircuitBreakerConfig holds circuit breaker configuration
type CircuitBreakerConfig struct {
	Enabled        bool
	Threshold      int
	WindowDuration time.Duration
	ResetTimeout   time.Duration
}

// LoggerConfig holds the configuration for logging
type LoggerConfig struct {
	Level    logger.Level
	Coloring bool
}

// ReadOnly reports whether the session can only observe the venue.
// Without a private key no approve/create/cancel submission is possible.
func (c *Config) ReadOnly() bool {
	return c.PrivateKey == ""
}

// LoadConfig loads the configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	deploymentBlock, err := GetEnvDeploymentBlock()
	if err != nil {
		return nil, err
	}

	lookbackBlocks, err := GetEnvLookbackBlocks()
	if err != nil {
		return nil, err
	}

	backfillChunk, err := GetEnvBackfillChunk()
	if err != nil {
		return nil, err
	}

	pricePollEvery, err := GetEnvPricePollInterval()
	if err != nil {
		return nil, err
	}

	resyncEvery, err := GetEnvResyncInterval()
	if err != nil {
		return nil, err
	}

	txTimeout, err := GetEnvTxTimeout()
	if err != nil {
		return nil, err
	}

	metricsPort, err := GetEnvMetricsPort()
	if err != nil {
		return nil, err
	}

	gasMultiplier, err := GetEnvGasMultiplier()
	if err != nil {
		return nil, err
	}

	maxGasPrice, err := GetEnvMaxGasPrice()
	if err != nil {
		return nil, err
	}

	activityCapacity, err := GetEnvActivityCapacity()
	if err != nil {
		return nil, err
	}

	cbEnabled, err := GetEnvCircuitBreakerEnabled()
	if err != nil {
		return nil, err
	}

	cbThreshold, err := GetEnvCircuitBreakerThreshold()
	if err != nil {
		return nil, err
	}

	cbWindow, err := GetEnvCircuitBreakerWindow()
	if err != nil {
		return nil, err
	}

	cbReset, err := GetEnvCircuitBreakerReset()
	if err != nil {
		return nil, err
	}

	logLevel, err := GetEnvLogLevel()
	if err != nil {
		return nil, err
	}

	logColoring, err := GetEnvLogColoring()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		RPCURL:           getEnvOrDefault("RPC_URL", DefaultRPCURL),
		WSRPCURL:         os.Getenv("WS_RPC_URL"),
		HookAddress:      getEnvOrDefault("HOOK_ADDRESS", DefaultHookAddress),
		TokenInAddress:   os.Getenv("TOKEN_IN_ADDRESS"),
		TokenOutAddress:  os.Getenv("TOKEN_OUT_ADDRESS"),
		OracleAddress:    getEnvOrDefault("ORACLE_ADDRESS", DefaultOracleAddress),
		PrivateKey:       os.Getenv("PRIVATE_KEY"),
		DeploymentBlock:  deploymentBlock,
		LookbackBlocks:   lookbackBlocks,
		BackfillChunk:    backfillChunk,
		PricePollEvery:   pricePollEvery,
		ResyncEvery:      resyncEvery,
		TxTimeout:        txTimeout,
		MetricsPort:      metricsPort,
		GasMultiplier:    gasMultiplier,
		MaxGasPrice:      maxGasPrice,
		ActivityCapacity: activityCapacity,
		CircuitBreaker: CircuitBreakerConfig{
			Enabled:        cbEnabled,
			Threshold:      cbThreshold,
			WindowDuration: cbWindow,
			ResetTimeout:   cbReset,
		},
		LoggerConfig: LoggerConfig{
			Level:    logLevel,
			Coloring: logColoring,
		},
	}

	// Validate required environment variables
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if cfg.RPCURL == "" {
		return fmt.Errorf("RPC_URL environment variable is required")
	}
	if cfg.HookAddress == "" {
		return fmt.Errorf("HOOK_ADDRESS environment variable is required")
	}
	if cfg.TokenInAddress == "" {
		return fmt.Errorf("TOKEN_IN_ADDRESS environment variable is required")
	}
	if cfg.TokenOutAddress == "" {
		return fmt.Errorf("TOKEN_OUT_ADDRESS environment variable is required")
	}
	if cfg.BackfillChunk == 0 {
		return fmt.Errorf("BACKFILL_CHUNK_SIZE must be positive")
	}
	return nil
}

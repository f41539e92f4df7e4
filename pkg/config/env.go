package config

import (
	"fmt"
	"math/big"
	"os"
	"strconv"
	"time"

	"github.com/sniper-hq/sniperwatch/pkg/logger"
)

const (
	// DefaultRPCURL is the public Unichain Sepolia endpoint the venue is deployed on
	DefaultRPCURL = "https://unichain-sepolia-rpc.publicnode.com"

	// DefaultHookAddress is the deployed SniperHook venue contract
	DefaultHookAddress = "0x0000000000000000000000000000000000000000"

	// DefaultOracleAddress is the ETH/USD reference feed used for guidance only
	DefaultOracleAddress = "0x694AA1769357215DE4FAC081bf1f309aDC325306"

	// DefaultDeploymentBlock is the block the venue contract was deployed at;
	// backfill never starts before it
	DefaultDeploymentBlock = 43168661

	// DefaultLookbackBlocks bounds how far behind the head backfill starts
	DefaultLookbackBlocks = 9900

	// DefaultBackfillChunk is the range-query size that stays within RPC limits
	DefaultBackfillChunk = 10000

	// DefaultPricePollInterval defines how often the guidance price is refreshed, in seconds
	DefaultPricePollInterval = 10

	// DefaultResyncInterval defines how often non-terminal intents are re-read, in seconds
	DefaultResyncInterval = 60

	// DefaultTxTimeout is how long a pending submission may stay unconfirmed
	// before being surfaced as stuck, in minutes
	DefaultTxTimeout = 5

	// DefaultMetricsPort defines the default port for the health and metrics server
	DefaultMetricsPort = "8080"

	// DefaultGasMultiplier is the buffer applied over the suggested gas price
	DefaultGasMultiplier = 1.1

	// DefaultMaxGasPrice caps the gas price for any submission
	DefaultMaxGasPrice = "1000000000" // 1 Gwei

	// DefaultActivityCapacity bounds the session activity feed
	DefaultActivityCapacity = 30

	// DefaultCircuitBreakerEnabled defines whether the circuit breaker is enabled
	DefaultCircuitBreakerEnabled = true

	// DefaultCircuitBreakerThreshold defines the number of failures before the circuit breaker trips
	DefaultCircuitBreakerThreshold = 5

	// DefaultCircuitBreakerWindow defines the time window for the circuit breaker, in minutes
	DefaultCircuitBreakerWindow = 5

	// DefaultCircuitBreakerReset defines the reset timeout for the circuit breaker, in minutes
	DefaultCircuitBreakerReset = 15
)

func getEnvOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvUint64(key string, fallback uint64) (uint64, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %s", key, val)
	}
	return parsed, nil
}

func getEnvInt(key string, fallback int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %s", key, val)
	}
	return parsed, nil
}

// GetEnvDeploymentBlock returns the venue deployment block
func GetEnvDeploymentBlock() (uint64, error) {
	return getEnvUint64("DEPLOYMENT_BLOCK", DefaultDeploymentBlock)
}

// GetEnvLookbackBlocks returns the backfill lookback window
func GetEnvLookbackBlocks() (uint64, error) {
	return getEnvUint64("LOOKBACK_BLOCKS", DefaultLookbackBlocks)
}

// GetEnvBackfillChunk returns the maximum block span of a single range query
func GetEnvBackfillChunk() (uint64, error) {
	return getEnvUint64("BACKFILL_CHUNK_SIZE", DefaultBackfillChunk)
}

// GetEnvPricePollInterval returns the guidance price polling interval
func GetEnvPricePollInterval() (time.Duration, error) {
	seconds, err := getEnvInt("PRICE_POLL_INTERVAL", DefaultPricePollInterval)
	if err != nil {
		return 0, err
	}
	if seconds <= 0 {
		return 0, fmt.Errorf("PRICE_POLL_INTERVAL must be positive")
	}
	return time.Duration(seconds) * time.Second, nil
}

// GetEnvResyncInterval returns the non-terminal intent re-read interval
func GetEnvResyncInterval() (time.Duration, error) {
	seconds, err := getEnvInt("RESYNC_INTERVAL", DefaultResyncInterval)
	if err != nil {
		return 0, err
	}
	if seconds <= 0 {
		return 0, fmt.Errorf("RESYNC_INTERVAL must be positive")
	}
	return time.Duration(seconds) * time.Second, nil
}

// GetEnvTxTimeout returns the stuck-transaction bound
func GetEnvTxTimeout() (time.Duration, error) {
	minutes, err := getEnvInt("TX_TIMEOUT", DefaultTxTimeout)
	if err != nil {
		return 0, err
	}
	if minutes <= 0 {
		return 0, fmt.Errorf("TX_TIMEOUT must be positive")
	}
	return time.Duration(minutes) * time.Minute, nil
}

// GetEnvMetricsPort returns the health and metrics server port
func GetEnvMetricsPort() (string, error) {
	port := getEnvOrDefault("METRICS_PORT", DefaultMetricsPort)
	if _, err := strconv.Atoi(port); err != nil {
		return "", fmt.Errorf("invalid METRICS_PORT value: %s", port)
	}
	return port, nil
}

// GetEnvGasMultiplier returns the gas price buffer multiplier
func GetEnvGasMultiplier() (float64, error) {
	val := os.Getenv("GAS_MULTIPLIER")
	if val == "" {
		return DefaultGasMultiplier, nil
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil || parsed <= 0 {
		return 0, fmt.Errorf("invalid GAS_MULTIPLIER value: %s", val)
	}
	return parsed, nil
}

// GetEnvMaxGasPrice returns the maximum gas price for submissions
func GetEnvMaxGasPrice() (*big.Int, error) {
	val := getEnvOrDefault("MAX_GAS_PRICE", DefaultMaxGasPrice)
	parsed, ok := new(big.Int).SetString(val, 10)
	if !ok || parsed.Sign() <= 0 {
		return nil, fmt.Errorf("invalid MAX_GAS_PRICE value: %s", val)
	}
	return parsed, nil
}

// GetEnvActivityCapacity returns the activity feed capacity
func GetEnvActivityCapacity() (int, error) {
	capacity, err := getEnvInt("ACTIVITY_CAPACITY", DefaultActivityCapacity)
	if err != nil {
		return 0, err
	}
	if capacity <= 0 {
		return 0, fmt.Errorf("ACTIVITY_CAPACITY must be positive")
	}
	return capacity, nil
}

// GetEnvCircuitBreakerEnabled returns whether the circuit breaker is enabled
func GetEnvCircuitBreakerEnabled() (bool, error) {
	val := os.Getenv("CB_ENABLED")
	if val == "" {
		return DefaultCircuitBreakerEnabled, nil
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("invalid CB_ENABLED value: %s", val)
	}
	return parsed, nil
}

// GetEnvCircuitBreakerThreshold returns the circuit breaker failure threshold
func GetEnvCircuitBreakerThreshold() (int, error) {
	threshold, err := getEnvInt("CB_THRESHOLD", DefaultCircuitBreakerThreshold)
	if err != nil {
		return 0, err
	}
	if threshold <= 0 {
		return 0, fmt.Errorf("CB_THRESHOLD must be positive")
	}
	return threshold, nil
}

// GetEnvCircuitBreakerWindow returns the circuit breaker failure window
func GetEnvCircuitBreakerWindow() (time.Duration, error) {
	minutes, err := getEnvInt("CB_WINDOW", DefaultCircuitBreakerWindow)
	if err != nil {
		return 0, err
	}
	if minutes <= 0 {
		return 0, fmt.Errorf("CB_WINDOW must be positive")
	}
	return time.Duration(minutes) * time.Minute, nil
}

// GetEnvCircuitBreakerReset returns the circuit breaker reset timeout
func GetEnvCircuitBreakerReset() (time.Duration, error) {
	minutes, err := getEnvInt("CB_RESET", DefaultCircuitBreakerReset)
	if err != nil {
		return 0, err
	}
	if minutes <= 0 {
		return 0, fmt.Errorf("CB_RESET must be positive")
	}
	return time.Duration(minutes) * time.Minute, nil
}

// GetEnvLogLevel returns the configured log level
func GetEnvLogLevel() (logger.Level, error) {
	val := os.Getenv("LOG_LEVEL")
	switch val {
	case "", "info":
		return logger.InfoLevel, nil
	case "debug":
		return logger.DebugLevel, nil
	case "notice":
		return logger.NoticeLevel, nil
	case "error":
		return logger.ErrorLevel, nil
	default:
		return 0, fmt.Errorf("invalid LOG_LEVEL value: %s", val)
	}
}

// GetEnvLogColoring returns whether log coloring is enabled
func GetEnvLogColoring() (bool, error) {
	val := os.Getenv("LOG_COLORING")
	if val == "" {
		return true, nil
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("invalid LOG_COLORING value: %s", val)
	}
	return parsed, nil
}

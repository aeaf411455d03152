package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings for the service. Every value has a
// sensible default so a bare environment still boots a working instance
// with the simulated broker.
type Config struct {
	Port         string
	DatabasePath string
	JWTSecret    string

	// Bootstrap API credentials registered at startup so the first
	// client can authenticate before any accounts exist.
	BootstrapAPIKey    string
	BootstrapAPISecret string

	// Broker gateway settings. Live mode is opt-in; without it every
	// placement is simulated deterministically.
	BrokerEnableLive bool
	BrokerBaseURL    string

	// Scheduler settings.
	PollInterval  time.Duration
	BatchSize     int
	WorkerCount   int
	StaleClaimAge time.Duration
}

// Load reads configuration from the environment, with a best-effort .env
// file load for local development.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		DatabasePath:       getEnv("DATABASE_PATH", "tradecron.db"),
		JWTSecret:          getEnv("JWT_SECRET", "tradecron-dev-secret"),
		BootstrapAPIKey:    getEnv("BOOTSTRAP_API_KEY", "test-api-key"),
		BootstrapAPISecret: getEnv("BOOTSTRAP_API_SECRET", "test-api-secret"),
		BrokerEnableLive:   getEnv("BROKER_ENABLE_LIVE", "false") == "true",
		BrokerBaseURL:      getEnv("BROKER_BASE_URL", "https://api.kite.trade"),
	}

	pollSeconds, err := getEnvInt("POLL_INTERVAL_SECONDS", 60)
	if err != nil {
		return nil, err
	}
	cfg.PollInterval = time.Duration(pollSeconds) * time.Second

	cfg.BatchSize, err = getEnvInt("BATCH_SIZE", 50)
	if err != nil {
		return nil, err
	}

	cfg.WorkerCount, err = getEnvInt("WORKER_COUNT", 4)
	if err != nil {
		return nil, err
	}

	staleMinutes, err := getEnvInt("STALE_CLAIM_MINUTES", 10)
	if err != nil {
		return nil, err
	}
	cfg.StaleClaimAge = time.Duration(staleMinutes) * time.Minute

	if cfg.BatchSize <= 0 {
		return nil, fmt.Errorf("BATCH_SIZE must be positive, got %d", cfg.BatchSize)
	}
	if cfg.WorkerCount <= 0 {
		return nil, fmt.Errorf("WORKER_COUNT must be positive, got %d", cfg.WorkerCount)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return parsed, nil
}

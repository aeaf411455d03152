package config

import (
	"os"
	"testing"
	"time"
)

func clearEnv() {
	for _, key := range []string{
		"PORT", "DATABASE_PATH", "JWT_SECRET",
		"BOOTSTRAP_API_KEY", "BOOTSTRAP_API_SECRET",
		"BROKER_ENABLE_LIVE", "BROKER_BASE_URL",
		"POLL_INTERVAL_SECONDS", "BATCH_SIZE", "WORKER_COUNT", "STALE_CLAIM_MINUTES",
	} {
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.PollInterval != time.Minute {
		t.Errorf("expected default poll interval 1m, got %s", cfg.PollInterval)
	}
	if cfg.BatchSize != 50 {
		t.Errorf("expected default batch size 50, got %d", cfg.BatchSize)
	}
	if cfg.WorkerCount != 4 {
		t.Errorf("expected default worker count 4, got %d", cfg.WorkerCount)
	}
	if cfg.StaleClaimAge != 10*time.Minute {
		t.Errorf("expected default stale claim age 10m, got %s", cfg.StaleClaimAge)
	}
	if cfg.BrokerEnableLive {
		t.Error("expected live mode disabled by default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv()
	os.Setenv("POLL_INTERVAL_SECONDS", "5")
	os.Setenv("BATCH_SIZE", "10")
	os.Setenv("WORKER_COUNT", "8")
	os.Setenv("BROKER_ENABLE_LIVE", "true")
	defer clearEnv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.PollInterval != 5*time.Second {
		t.Errorf("expected poll interval 5s, got %s", cfg.PollInterval)
	}
	if cfg.BatchSize != 10 {
		t.Errorf("expected batch size 10, got %d", cfg.BatchSize)
	}
	if cfg.WorkerCount != 8 {
		t.Errorf("expected worker count 8, got %d", cfg.WorkerCount)
	}
	if !cfg.BrokerEnableLive {
		t.Error("expected live mode enabled")
	}
}

func TestLoad_InvalidInteger(t *testing.T) {
	clearEnv()
	os.Setenv("BATCH_SIZE", "lots")
	defer clearEnv()

	if _, err := Load(); err == nil {
		t.Fatal("expected error for non-integer BATCH_SIZE, got nil")
	}
}

func TestLoad_RejectsNonPositiveBatch(t *testing.T) {
	clearEnv()
	os.Setenv("BATCH_SIZE", "0")
	defer clearEnv()

	if _, err := Load(); err == nil {
		t.Fatal("expected error for zero BATCH_SIZE, got nil")
	}
}

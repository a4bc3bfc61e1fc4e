package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))
	t.Setenv("PORT", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("OPERATOR_BALANCE", "")

	cfg := LoadConfig()

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.RateLimitPerMinute != DefaultRateLimitPerMinute {
		t.Errorf("expected default rate limit, got %d", cfg.RateLimitPerMinute)
	}
	if cfg.GeminiModel != DefaultGeminiModel {
		t.Errorf("expected default model, got %s", cfg.GeminiModel)
	}
	if cfg.GeminiAPIKey != "" {
		t.Errorf("expected empty api key by default")
	}
	if cfg.OperatorBalance != DefaultOperatorBalance {
		t.Errorf("expected default operator balance, got %d", cfg.OperatorBalance)
	}
	if cfg.SecurityCheckInterval != DefaultSecurityCheckInterval {
		t.Errorf("expected default security interval, got %s", cfg.SecurityCheckInterval)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "aether.yaml")
	content := []byte("port: \"9090\"\nlogLevel: debug\ndataDir: /tmp/aether-test\noperatorBalance: 5000\ngeminiModel: gemini-2.5-pro\n")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)

	cfg := LoadConfig()

	if cfg.Port != "9090" {
		t.Errorf("expected port 9090 from file, got %s", cfg.Port)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected debug log level, got %s", cfg.LogLevel)
	}
	if cfg.DataDir != "/tmp/aether-test" {
		t.Errorf("expected data dir from file, got %s", cfg.DataDir)
	}
	if cfg.OperatorBalance != 5000 {
		t.Errorf("expected operator balance 5000, got %d", cfg.OperatorBalance)
	}
	if cfg.GeminiModel != "gemini-2.5-pro" {
		t.Errorf("expected model from file, got %s", cfg.GeminiModel)
	}
	// Unset fields keep defaults.
	if cfg.RateLimitPerMinute != DefaultRateLimitPerMinute {
		t.Errorf("expected default rate limit, got %d", cfg.RateLimitPerMinute)
	}
}

func TestLoadConfigMalformedFileIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aether.yaml")
	if err := os.WriteFile(path, []byte("port: [unterminated"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)

	cfg := LoadConfig()
	if cfg.Port != "8080" {
		t.Errorf("malformed file must fall back to defaults, got port %s", cfg.Port)
	}
}

func TestEnvOverridesBeatFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aether.yaml")
	if err := os.WriteFile(path, []byte("port: \"9090\"\n"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "7070")
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "7")
	t.Setenv("ORACLE_TIMEOUT", "5s")
	t.Setenv("OPERATOR_BALANCE", "250")

	cfg := LoadConfig()

	if cfg.Port != "7070" {
		t.Errorf("expected env port to win, got %s", cfg.Port)
	}
	if cfg.GeminiAPIKey != "env-key" {
		t.Errorf("expected env api key, got %s", cfg.GeminiAPIKey)
	}
	if cfg.RateLimitPerMinute != 7 {
		t.Errorf("expected env rate limit, got %d", cfg.RateLimitPerMinute)
	}
	if cfg.OracleTimeout != 5*time.Second {
		t.Errorf("expected 5s oracle timeout, got %s", cfg.OracleTimeout)
	}
	if cfg.OperatorBalance != 250 {
		t.Errorf("expected env operator balance, got %d", cfg.OperatorBalance)
	}
}

func TestEnvOverrideRejectsInvalidNumbers(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))
	t.Setenv("RATE_LIMIT_PER_MINUTE", "not-a-number")
	t.Setenv("MAX_BODY_SIZE_BYTES", "-5")

	cfg := LoadConfig()
	if cfg.RateLimitPerMinute != DefaultRateLimitPerMinute {
		t.Errorf("invalid env must keep the default, got %d", cfg.RateLimitPerMinute)
	}
	if cfg.MaxBodySizeBytes != DefaultMaxBodySizeBytes {
		t.Errorf("negative env must keep the default, got %d", cfg.MaxBodySizeBytes)
	}
}

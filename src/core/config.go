package main

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	Port               string        `yaml:"port"`
	LogLevel           string        `yaml:"logLevel"`
	DataDir            string        `yaml:"dataDir"`
	RateLimitPerMinute int           `yaml:"rateLimitPerMinute"`
	MaxBodySizeBytes   int64         `yaml:"maxBodySizeBytes"`
	ShutdownTimeout    time.Duration `yaml:"shutdownTimeout"`

	// Oracle (generative model API) settings. An empty API key selects the
	// inline mock oracle.
	GeminiAPIKey  string        `yaml:"geminiApiKey"`
	GeminiBaseURL string        `yaml:"geminiBaseUrl"`
	GeminiModel   string        `yaml:"geminiModel"`
	OracleTimeout time.Duration `yaml:"oracleTimeout"`

	SecurityCheckInterval time.Duration `yaml:"securityCheckInterval"`
	OperatorBalance       int           `yaml:"operatorBalance"`
}

// Default values
const (
	DefaultRateLimitPerMinute    = 100
	DefaultMaxBodySizeBytes      = 1 << 20 // 1MB
	DefaultDataDir               = "./data"
	DefaultShutdownTimeout       = 30 * time.Second
	DefaultGeminiBaseURL         = "https://generativelanguage.googleapis.com"
	DefaultGeminiModel           = "gemini-2.5-flash"
	DefaultOracleTimeout         = 30 * time.Second
	DefaultSecurityCheckInterval = time.Second
	DefaultOperatorBalance       = 1000 // initial airdrop
)

// LoadConfig builds configuration from defaults, an optional YAML file
// (CONFIG_FILE, falling back to ./aether.yaml), and environment overrides,
// in that order of precedence.
func LoadConfig() *Config {
	cfg := &Config{
		Port:                  "8080",
		LogLevel:              "info",
		DataDir:               DefaultDataDir,
		RateLimitPerMinute:    DefaultRateLimitPerMinute,
		MaxBodySizeBytes:      DefaultMaxBodySizeBytes,
		ShutdownTimeout:       DefaultShutdownTimeout,
		GeminiBaseURL:         DefaultGeminiBaseURL,
		GeminiModel:           DefaultGeminiModel,
		OracleTimeout:         DefaultOracleTimeout,
		SecurityCheckInterval: DefaultSecurityCheckInterval,
		OperatorBalance:       DefaultOperatorBalance,
	}

	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		path = "./aether.yaml"
	}
	applyConfigFile(cfg, path)
	applyEnvOverrides(cfg)

	return cfg
}

// applyConfigFile merges a YAML config file into cfg. A missing file is fine;
// a malformed one is logged and ignored so a bad deploy still boots on
// defaults.
func applyConfigFile(cfg *Config, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		if logger != nil {
			logger.Warn("Ignoring malformed config file", "path", path, "error", err)
		}
		return
	}

	if fileCfg.Port != "" {
		cfg.Port = fileCfg.Port
	}
	if fileCfg.LogLevel != "" {
		cfg.LogLevel = fileCfg.LogLevel
	}
	if fileCfg.DataDir != "" {
		cfg.DataDir = fileCfg.DataDir
	}
	if fileCfg.RateLimitPerMinute > 0 {
		cfg.RateLimitPerMinute = fileCfg.RateLimitPerMinute
	}
	if fileCfg.MaxBodySizeBytes > 0 {
		cfg.MaxBodySizeBytes = fileCfg.MaxBodySizeBytes
	}
	if fileCfg.ShutdownTimeout > 0 {
		cfg.ShutdownTimeout = fileCfg.ShutdownTimeout
	}
	if fileCfg.GeminiAPIKey != "" {
		cfg.GeminiAPIKey = fileCfg.GeminiAPIKey
	}
	if fileCfg.GeminiBaseURL != "" {
		cfg.GeminiBaseURL = fileCfg.GeminiBaseURL
	}
	if fileCfg.GeminiModel != "" {
		cfg.GeminiModel = fileCfg.GeminiModel
	}
	if fileCfg.OracleTimeout > 0 {
		cfg.OracleTimeout = fileCfg.OracleTimeout
	}
	if fileCfg.SecurityCheckInterval > 0 {
		cfg.SecurityCheckInterval = fileCfg.SecurityCheckInterval
	}
	if fileCfg.OperatorBalance > 0 {
		cfg.OperatorBalance = fileCfg.OperatorBalance
	}
}

func applyEnvOverrides(cfg *Config) {
	if port := os.Getenv("PORT"); port != "" {
		cfg.Port = port
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		cfg.LogLevel = logLevel
	}

	if dataDir := os.Getenv("DATA_DIR"); dataDir != "" {
		cfg.DataDir = dataDir
	}

	if rateLimitEnv := os.Getenv("RATE_LIMIT_PER_MINUTE"); rateLimitEnv != "" {
		if rateLimit, err := strconv.Atoi(rateLimitEnv); err == nil && rateLimit > 0 {
			cfg.RateLimitPerMinute = rateLimit
		}
	}

	if maxBodyEnv := os.Getenv("MAX_BODY_SIZE_BYTES"); maxBodyEnv != "" {
		if maxBody, err := strconv.ParseInt(maxBodyEnv, 10, 64); err == nil && maxBody > 0 {
			cfg.MaxBodySizeBytes = maxBody
		}
	}

	if shutdownTimeout := os.Getenv("SHUTDOWN_TIMEOUT"); shutdownTimeout != "" {
		if duration, err := time.ParseDuration(shutdownTimeout); err == nil {
			cfg.ShutdownTimeout = duration
		}
	}

	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		cfg.GeminiAPIKey = apiKey
	}

	if baseURL := os.Getenv("GEMINI_BASE_URL"); baseURL != "" {
		cfg.GeminiBaseURL = baseURL
	}

	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		cfg.GeminiModel = model
	}

	if oracleTimeout := os.Getenv("ORACLE_TIMEOUT"); oracleTimeout != "" {
		if duration, err := time.ParseDuration(oracleTimeout); err == nil {
			cfg.OracleTimeout = duration
		}
	}

	if interval := os.Getenv("SECURITY_CHECK_INTERVAL"); interval != "" {
		if duration, err := time.ParseDuration(interval); err == nil {
			cfg.SecurityCheckInterval = duration
		}
	}

	if balanceEnv := os.Getenv("OPERATOR_BALANCE"); balanceEnv != "" {
		if balance, err := strconv.Atoi(balanceEnv); err == nil && balance >= 0 {
			cfg.OperatorBalance = balance
		}
	}
}

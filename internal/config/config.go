// Package config provides configuration management for evalgate.
// It loads configuration from environment variables with sensible defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/Parkside-Labs/evalgate/internal/engine"
)

// Default values applied when the corresponding environment variable is unset.
const (
	DefaultEngineBin        = "llm-evals"
	DefaultEngineConfigPath = "evals.config.yaml"
	DefaultResultsFile      = "eval-results/latest.json"
	DefaultReportsDir       = "eval-results/reports"
	DefaultAPIKeyVar        = "GEMINI_API_KEY"
	DefaultMaxConcurrent    = 5
	DefaultHTTPPort         = 3001

	DefaultSmokeTimeout = 5 * time.Minute
	DefaultRunTimeout   = 15 * time.Minute
	DefaultFullTimeout  = 45 * time.Minute

	DefaultAvgSecondsPerTest = 5
	DefaultAvgTokensPerTest  = 1000
)

// Timeouts holds the per-run-type process budgets. A full-suite run is
// allotted a longer budget than a smoke test.
type Timeouts struct {
	Smoke time.Duration
	Run   time.Duration
	Full  time.Duration
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port int
}

// Config holds all configuration for the evalgate wrapper.
type Config struct {
	// EngineBin is the evaluation engine executable to spawn.
	EngineBin string

	// EngineConfigPath locates the engine's own YAML configuration,
	// read only to learn the configured model list for previews.
	EngineConfigPath string

	// ResultsFile is where the engine writes its JSON results.
	ResultsFile string

	// ReportsDir is where the engine writes timestamp-named HTML reports.
	ReportsDir string

	// APIKeyVar names the environment variable the engine requires.
	APIKeyVar string

	// MaxConcurrent caps simultaneously in-flight evaluation processes.
	MaxConcurrent int

	// Timeouts are the per-run-type process budgets.
	Timeouts Timeouts

	// AvgSecondsPerTest feeds the preview time estimate.
	AvgSecondsPerTest int

	// AvgTokensPerTest feeds the preview token estimate.
	AvgTokensPerTest int

	// Server holds HTTP server configuration.
	Server ServerConfig
}

// New creates a new Config instance from environment variables.
func New() (*Config, error) {
	cfg := &Config{
		EngineBin:        envOrDefault("EVALGATE_ENGINE_BIN", DefaultEngineBin),
		EngineConfigPath: envOrDefault("EVALGATE_ENGINE_CONFIG", DefaultEngineConfigPath),
		ResultsFile:      envOrDefault("EVALGATE_RESULTS_FILE", DefaultResultsFile),
		ReportsDir:       envOrDefault("EVALGATE_REPORTS_DIR", DefaultReportsDir),
		APIKeyVar:        envOrDefault("EVALGATE_API_KEY_VAR", DefaultAPIKeyVar),
	}

	maxConcurrent, err := parseIntEnv("EVALGATE_MAX_CONCURRENT", DefaultMaxConcurrent)
	if err != nil {
		return nil, err
	}
	cfg.MaxConcurrent = maxConcurrent

	cfg.Timeouts.Smoke, err = parseDurationEnv("EVALGATE_SMOKE_TIMEOUT", DefaultSmokeTimeout)
	if err != nil {
		return nil, err
	}
	cfg.Timeouts.Run, err = parseDurationEnv("EVALGATE_RUN_TIMEOUT", DefaultRunTimeout)
	if err != nil {
		return nil, err
	}
	cfg.Timeouts.Full, err = parseDurationEnv("EVALGATE_FULL_TIMEOUT", DefaultFullTimeout)
	if err != nil {
		return nil, err
	}

	cfg.AvgSecondsPerTest, err = parseIntEnv("EVALGATE_AVG_SECONDS_PER_TEST", DefaultAvgSecondsPerTest)
	if err != nil {
		return nil, err
	}
	cfg.AvgTokensPerTest, err = parseIntEnv("EVALGATE_AVG_TOKENS_PER_TEST", DefaultAvgTokensPerTest)
	if err != nil {
		return nil, err
	}

	portStr := os.Getenv("EVALGATE_HTTP_PORT")
	if portStr == "" {
		cfg.Server.Port = DefaultHTTPPort
	} else {
		port, err := parsePort(portStr)
		if err != nil {
			return nil, fmt.Errorf("EVALGATE_HTTP_PORT %s", err)
		}
		cfg.Server.Port = port
	}

	return cfg, nil
}

// RequireAPIKey fails fast when the engine's credential is absent so no
// evaluation process is ever spawned without it.
func (c *Config) RequireAPIKey() error {
	if os.Getenv(c.APIKeyVar) == "" {
		return fmt.Errorf("%w: environment variable %s is not set", engine.ErrMissingCredential, c.APIKeyVar)
	}
	return nil
}

// TimeoutFor returns the process budget for the given run type.
func (c *Config) TimeoutFor(runType engine.RunType) time.Duration {
	switch runType {
	case engine.RunTypeSmoke:
		return c.Timeouts.Smoke
	case engine.RunTypeFull:
		return c.Timeouts.Full
	default:
		return c.Timeouts.Run
	}
}

func envOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseIntEnv parses a positive integer environment variable with a default.
func parseIntEnv(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be positive, got: %d", key, n)
	}
	return n, nil
}

// parseDurationEnv parses a duration environment variable expressed in
// seconds with a default.
func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	secs, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if secs <= 0 {
		return 0, fmt.Errorf("%s must be positive, got: %d", key, secs)
	}
	return time.Duration(secs) * time.Second, nil
}

// parsePort parses and validates a port number string.
func parsePort(portStr string) (int, error) {
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0, fmt.Errorf("invalid port number: %s", portStr)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("must be between 1 and 65535, got: %d", port)
	}
	return port, nil
}

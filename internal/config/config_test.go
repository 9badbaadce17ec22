package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Parkside-Labs/evalgate/internal/engine"
)

// clearEnv unsets every variable New reads so defaults are actually exercised.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"EVALGATE_ENGINE_BIN",
		"EVALGATE_ENGINE_CONFIG",
		"EVALGATE_RESULTS_FILE",
		"EVALGATE_REPORTS_DIR",
		"EVALGATE_API_KEY_VAR",
		"EVALGATE_MAX_CONCURRENT",
		"EVALGATE_SMOKE_TIMEOUT",
		"EVALGATE_RUN_TIMEOUT",
		"EVALGATE_FULL_TIMEOUT",
		"EVALGATE_AVG_SECONDS_PER_TEST",
		"EVALGATE_AVG_TOKENS_PER_TEST",
		"EVALGATE_HTTP_PORT",
	} {
		t.Setenv(key, "")
	}
}

func TestNew_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, DefaultEngineBin, cfg.EngineBin)
	assert.Equal(t, DefaultEngineConfigPath, cfg.EngineConfigPath)
	assert.Equal(t, DefaultResultsFile, cfg.ResultsFile)
	assert.Equal(t, DefaultReportsDir, cfg.ReportsDir)
	assert.Equal(t, DefaultAPIKeyVar, cfg.APIKeyVar)
	assert.Equal(t, DefaultMaxConcurrent, cfg.MaxConcurrent)
	assert.Equal(t, DefaultSmokeTimeout, cfg.Timeouts.Smoke)
	assert.Equal(t, DefaultRunTimeout, cfg.Timeouts.Run)
	assert.Equal(t, DefaultFullTimeout, cfg.Timeouts.Full)
	assert.Equal(t, DefaultAvgSecondsPerTest, cfg.AvgSecondsPerTest)
	assert.Equal(t, DefaultAvgTokensPerTest, cfg.AvgTokensPerTest)
	assert.Equal(t, DefaultHTTPPort, cfg.Server.Port)
}

func TestNew_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("EVALGATE_ENGINE_BIN", "/opt/bin/llm-evals")
	t.Setenv("EVALGATE_API_KEY_VAR", "OPENAI_API_KEY")
	t.Setenv("EVALGATE_MAX_CONCURRENT", "3")
	t.Setenv("EVALGATE_SMOKE_TIMEOUT", "60")
	t.Setenv("EVALGATE_HTTP_PORT", "8080")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "/opt/bin/llm-evals", cfg.EngineBin)
	assert.Equal(t, "OPENAI_API_KEY", cfg.APIKeyVar)
	assert.Equal(t, 3, cfg.MaxConcurrent)
	assert.Equal(t, time.Minute, cfg.Timeouts.Smoke)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestNew_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"non-numeric max concurrent", "EVALGATE_MAX_CONCURRENT", "many"},
		{"zero max concurrent", "EVALGATE_MAX_CONCURRENT", "0"},
		{"negative timeout", "EVALGATE_RUN_TIMEOUT", "-5"},
		{"non-numeric port", "EVALGATE_HTTP_PORT", "http"},
		{"port out of range", "EVALGATE_HTTP_PORT", "70000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := New()
			assert.Error(t, err)
		})
	}
}

func TestRequireAPIKey(t *testing.T) {
	cfg := &Config{APIKeyVar: "EVALGATE_TEST_CREDENTIAL"}

	t.Setenv("EVALGATE_TEST_CREDENTIAL", "")
	err := cfg.RequireAPIKey()
	require.ErrorIs(t, err, engine.ErrMissingCredential)
	assert.Contains(t, err.Error(), "EVALGATE_TEST_CREDENTIAL")

	t.Setenv("EVALGATE_TEST_CREDENTIAL", "some-key")
	assert.NoError(t, cfg.RequireAPIKey())
}

func TestTimeoutFor(t *testing.T) {
	cfg := &Config{Timeouts: Timeouts{
		Smoke: 1 * time.Minute,
		Run:   2 * time.Minute,
		Full:  3 * time.Minute,
	}}

	assert.Equal(t, 1*time.Minute, cfg.TimeoutFor(engine.RunTypeSmoke))
	assert.Equal(t, 3*time.Minute, cfg.TimeoutFor(engine.RunTypeFull))
	assert.Equal(t, 2*time.Minute, cfg.TimeoutFor(engine.RunTypeModel))
	assert.Equal(t, 2*time.Minute, cfg.TimeoutFor(engine.RunTypePattern))
	assert.Equal(t, 2*time.Minute, cfg.TimeoutFor(engine.RunTypeFirst))
	assert.Equal(t, 2*time.Minute, cfg.TimeoutFor(engine.RunTypeRetry))
}

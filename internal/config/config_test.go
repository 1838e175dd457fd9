package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandEnvVars(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		envVars  map[string]string
		expected string
	}{
		{
			name:  "expand single env var",
			input: "api_key: ${TEST_API_KEY}",
			envVars: map[string]string{
				"TEST_API_KEY": "test_key_123",
			},
			expected: "api_key: test_key_123",
		},
		{
			name:  "expand multiple env vars",
			input: "api_key: ${API_KEY}\nsecret: ${SECRET_KEY}",
			envVars: map[string]string{
				"API_KEY":    "key_value",
				"SECRET_KEY": "secret_value",
			},
			expected: "api_key: key_value\nsecret: secret_value",
		},
		{
			name:     "missing env var returns empty string",
			input:    "api_key: ${MISSING_VAR}",
			envVars:  map[string]string{},
			expected: "api_key: ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				os.Setenv(k, v)
				defer os.Unsetenv(k)
			}

			assert.Equal(t, tt.expected, expandEnvVars(tt.input))
		})
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpFile, err := os.CreateTemp(t.TempDir(), "config-*.yaml")
	require.NoError(t, err)
	_, err = tmpFile.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, tmpFile.Close())
	return tmpFile.Name()
}

const validConfig = `
exchange:
  name: binance
  api_key: "${TEST_HOOK_API_KEY}"
  secret_key: "${TEST_HOOK_SECRET_KEY}"

trading:
  allowed_symbols:
    - fetusdt.p
    - DOTUSDT
  leverage: 20
  risk_fraction: 0.05
  stop_loss_fraction: 0.02
  one_way_mode: true
`

func TestLoadConfigExpandsCredentials(t *testing.T) {
	os.Setenv("TEST_HOOK_API_KEY", "key-123")
	os.Setenv("TEST_HOOK_SECRET_KEY", "secret-456")
	defer os.Unsetenv("TEST_HOOK_API_KEY")
	defer os.Unsetenv("TEST_HOOK_SECRET_KEY")

	cfg, err := LoadConfig(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, "key-123", cfg.Exchange.APIKey)
	assert.Equal(t, "secret-456", cfg.Exchange.SecretKey)
}

func TestLoadConfigNormalizesAllowedSymbols(t *testing.T) {
	os.Setenv("TEST_HOOK_API_KEY", "k")
	os.Setenv("TEST_HOOK_SECRET_KEY", "s")
	defer os.Unsetenv("TEST_HOOK_API_KEY")
	defer os.Unsetenv("TEST_HOOK_SECRET_KEY")

	cfg, err := LoadConfig(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, []string{"FETUSDT", "DOTUSDT"}, cfg.Trading.AllowedSymbols)
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	os.Setenv("TEST_HOOK_API_KEY", "k")
	os.Setenv("TEST_HOOK_SECRET_KEY", "s")
	defer os.Unsetenv("TEST_HOOK_API_KEY")
	defer os.Unsetenv("TEST_HOOK_SECRET_KEY")

	cfg, err := LoadConfig(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.ListenAddr)
	assert.Equal(t, "USDT", cfg.Exchange.QuoteAsset)
	assert.Equal(t, 10, cfg.Exchange.CallTimeoutSeconds)
	assert.Equal(t, "INFO", cfg.System.LogLevel)
	assert.Equal(t, 3, cfg.Trading.MaxRetries)
	assert.Equal(t, 500, cfg.Trading.RetryDelayMS)
	assert.Equal(t, "signals.log", cfg.Audit.Path)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig("does-not-exist.yaml")
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		cfg.Exchange.Name = "mock"
		cfg.Exchange.CallTimeoutSeconds = 10
		cfg.System.LogLevel = "INFO"
		cfg.Trading.AllowedSymbols = []string{"FETUSDT"}
		cfg.Trading.Leverage = 20
		cfg.Trading.RiskFraction = 0.05
		cfg.Trading.StopLossFraction = 0.02
		cfg.Trading.MaxRetries = 3
		cfg.Trading.RetryDelayMS = 500
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{
			"unknown exchange",
			func(c *Config) { c.Exchange.Name = "kraken" },
			"exchange.name",
		},
		{
			"missing api key outside mock",
			func(c *Config) { c.Exchange.Name = "binance" },
			"exchange.api_key",
		},
		{
			"empty allow-list",
			func(c *Config) { c.Trading.AllowedSymbols = nil },
			"trading.allowed_symbols",
		},
		{
			"risk fraction above one",
			func(c *Config) { c.Trading.RiskFraction = 1.5 },
			"trading.risk_fraction",
		},
		{
			"zero risk fraction",
			func(c *Config) { c.Trading.RiskFraction = 0 },
			"trading.risk_fraction",
		},
		{
			"stop loss fraction at one",
			func(c *Config) { c.Trading.StopLossFraction = 1 },
			"trading.stop_loss_fraction",
		},
		{
			"negative leverage",
			func(c *Config) { c.Trading.Leverage = -1 },
			"trading.leverage",
		},
		{
			"bad log level",
			func(c *Config) { c.System.LogLevel = "VERBOSE" },
			"system.log_level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

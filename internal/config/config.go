// Package config handles configuration management with validation
package config

import (
	"fmt"
	"os"
	"strings"

	"hooktrade/internal/core"

	"gopkg.in/yaml.v3"
)

// Config represents the complete configuration structure
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Exchange ExchangeConfig `yaml:"exchange"`
	Trading  TradingConfig  `yaml:"trading"`
	System   SystemConfig   `yaml:"system"`
	Alert    AlertConfig    `yaml:"alert"`
	Audit    AuditConfig    `yaml:"audit"`
}

// ServerConfig contains the HTTP ingress settings
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// ExchangeConfig contains exchange connectivity settings. Credentials are
// expanded from environment variables in the YAML file.
type ExchangeConfig struct {
	Name               string `yaml:"name"`
	APIKey             string `yaml:"api_key"`
	SecretKey          string `yaml:"secret_key"`
	Testnet            bool   `yaml:"testnet"`
	QuoteAsset         string `yaml:"quote_asset"`
	CallTimeoutSeconds int    `yaml:"call_timeout_seconds"`
}

// TradingConfig contains the static trading parameters
type TradingConfig struct {
	AllowedSymbols   []string `yaml:"allowed_symbols"`
	Leverage         int      `yaml:"leverage"`
	RiskFraction     float64  `yaml:"risk_fraction"`
	StopLossFraction float64  `yaml:"stop_loss_fraction"`
	OneWayMode       bool     `yaml:"one_way_mode"`
	MaxRetries       int      `yaml:"max_retries"`
	RetryDelayMS     int      `yaml:"retry_delay_ms"`
}

// SystemConfig contains system settings
type SystemConfig struct {
	LogLevel string `yaml:"log_level"`
}

// AlertConfig contains operator alerting settings
type AlertConfig struct {
	TelegramBotToken string `yaml:"telegram_bot_token"`
	TelegramChatID   string `yaml:"telegram_chat_id"`
}

// AuditConfig contains the audit event log settings
type AuditConfig struct {
	Path string `yaml:"path"`
}

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s' (value: %v): %s", e.Field, e.Value, e.Message)
}

// LoadConfig loads configuration from a YAML file with environment variable
// expansion.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expandedData := expandEnvVars(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = ":8080"
	}
	if c.Exchange.Name == "" {
		c.Exchange.Name = "binance"
	}
	if c.Exchange.QuoteAsset == "" {
		c.Exchange.QuoteAsset = "USDT"
	}
	if c.Exchange.CallTimeoutSeconds == 0 {
		c.Exchange.CallTimeoutSeconds = 10
	}
	if c.System.LogLevel == "" {
		c.System.LogLevel = "INFO"
	}
	if c.Trading.MaxRetries == 0 {
		c.Trading.MaxRetries = 3
	}
	if c.Trading.RetryDelayMS == 0 {
		c.Trading.RetryDelayMS = 500
	}
	if c.Audit.Path == "" {
		c.Audit.Path = "signals.log"
	}
}

// Validate performs comprehensive validation of the configuration.
// Allow-listed symbols are normalized in place so they always agree with the
// inbound symbol normalization.
func (c *Config) Validate() error {
	var errs []string

	if err := c.validateExchange(); err != nil {
		errs = append(errs, err.Error())
	}
	if err := c.validateTrading(); err != nil {
		errs = append(errs, err.Error())
	}
	if err := c.validateSystem(); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errs, "\n"))
	}

	return nil
}

func (c *Config) validateExchange() error {
	validExchanges := []string{"binance", "mock"}
	if !contains(validExchanges, c.Exchange.Name) {
		return ValidationError{
			Field:   "exchange.name",
			Value:   c.Exchange.Name,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(validExchanges, ", ")),
		}
	}

	if c.Exchange.Name != "mock" {
		if c.Exchange.APIKey == "" {
			return ValidationError{
				Field:   "exchange.api_key",
				Message: "api key is required (set BINANCE_API_KEY)",
			}
		}
		if c.Exchange.SecretKey == "" {
			return ValidationError{
				Field:   "exchange.secret_key",
				Message: "secret key is required (set BINANCE_SECRET_KEY)",
			}
		}
	}

	if c.Exchange.CallTimeoutSeconds < 1 || c.Exchange.CallTimeoutSeconds > 120 {
		return ValidationError{
			Field:   "exchange.call_timeout_seconds",
			Value:   c.Exchange.CallTimeoutSeconds,
			Message: "must be between 1 and 120",
		}
	}

	return nil
}

func (c *Config) validateTrading() error {
	if len(c.Trading.AllowedSymbols) == 0 {
		return ValidationError{
			Field:   "trading.allowed_symbols",
			Message: "at least one symbol must be allow-listed",
		}
	}

	for i, s := range c.Trading.AllowedSymbols {
		normalized := core.NormalizeSymbol(s)
		if normalized == "" {
			return ValidationError{
				Field:   "trading.allowed_symbols",
				Value:   s,
				Message: "symbol must not be empty",
			}
		}
		c.Trading.AllowedSymbols[i] = normalized
	}

	if c.Trading.Leverage < 0 || c.Trading.Leverage > 125 {
		return ValidationError{
			Field:   "trading.leverage",
			Value:   c.Trading.Leverage,
			Message: "must be between 0 and 125",
		}
	}

	if c.Trading.RiskFraction <= 0 || c.Trading.RiskFraction > 1 {
		return ValidationError{
			Field:   "trading.risk_fraction",
			Value:   c.Trading.RiskFraction,
			Message: "must be in (0, 1]",
		}
	}

	if c.Trading.StopLossFraction < 0 || c.Trading.StopLossFraction >= 1 {
		return ValidationError{
			Field:   "trading.stop_loss_fraction",
			Value:   c.Trading.StopLossFraction,
			Message: "must be in [0, 1)",
		}
	}

	if c.Trading.MaxRetries < 1 || c.Trading.MaxRetries > 10 {
		return ValidationError{
			Field:   "trading.max_retries",
			Value:   c.Trading.MaxRetries,
			Message: "must be between 1 and 10",
		}
	}

	if c.Trading.RetryDelayMS < 1 || c.Trading.RetryDelayMS > 10000 {
		return ValidationError{
			Field:   "trading.retry_delay_ms",
			Value:   c.Trading.RetryDelayMS,
			Message: "must be between 1 and 10000",
		}
	}

	return nil
}

func (c *Config) validateSystem() error {
	validLevels := []string{"DEBUG", "INFO", "WARN", "ERROR", "FATAL"}
	if !contains(validLevels, c.System.LogLevel) {
		return ValidationError{
			Field:   "system.log_level",
			Value:   c.System.LogLevel,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(validLevels, ", ")),
		}
	}
	return nil
}

func expandEnvVars(s string) string {
	return os.Expand(s, os.Getenv)
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}

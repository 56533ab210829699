// Package config defines the top-level configuration for the solver
// endpoint and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by SOLVERD_* environment variables.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Solver    SolverConfig    `toml:"solver"`
	Telemetry TelemetryConfig `toml:"telemetry"`
	Notify    NotifyConfig    `toml:"notify"`
	LogLevel  string          `toml:"log_level"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Host        string   `toml:"host"`
	Port        int      `toml:"port"`
	APIKey      string   `toml:"api_key"`
	CORSOrigins []string `toml:"cors_origins"`
	// RateLimitRPS caps requests per second per client IP. Zero disables
	// rate limiting.
	RateLimitRPS   int `toml:"rate_limit_rps"`
	RateLimitBurst int `toml:"rate_limit_burst"`
	// MaxBodyBytes bounds the size of a solve request body.
	MaxBodyBytes    int64    `toml:"max_body_bytes"`
	ShutdownTimeout duration `toml:"shutdown_timeout"`
}

// SolverConfig holds solving parameters.
type SolverConfig struct {
	// OrderSelection picks the built-in selection strategy:
	// "first-eligible" or "last".
	OrderSelection string `toml:"order_selection"`
}

// TelemetryConfig holds event feed parameters.
type TelemetryConfig struct {
	// EventBuffer is the per-subscriber channel depth on the event bus.
	EventBuffer int `toml:"event_buffer"`
	// WSEnabled exposes the /ws telemetry feed.
	WSEnabled bool `toml:"ws_enabled"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string `toml:"telegram_token"`
	TelegramChatID    string `toml:"telegram_chat_id"`
	DiscordWebhookURL string `toml:"discord_webhook_url"`
	// Kinds filters which driver notification kinds are forwarded to the
	// operator channels. "*" forwards everything.
	Kinds []string `toml:"kinds"`
}

// duration is a wrapper around time.Duration that supports TOML string decoding
// (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8000,
			CORSOrigins:     []string{},
			RateLimitRPS:    0,
			RateLimitBurst:  0,
			MaxBodyBytes:    16 << 20,
			ShutdownTimeout: duration{10 * time.Second},
		},
		Solver: SolverConfig{
			OrderSelection: "first-eligible",
		},
		Telemetry: TelemetryConfig{
			EventBuffer: 256,
			WSEnabled:   true,
		},
		Notify: NotifyConfig{
			Kinds: []string{"*"},
		},
		LogLevel: "info",
	}
}

// validSelections enumerates the accepted values for Solver.OrderSelection.
var validSelections = map[string]bool{
	"first-eligible": true,
	"last":           true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	// Server
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.RateLimitRPS < 0 {
		errs = append(errs, "server: rate_limit_rps must be >= 0 (0 disables limiting)")
	}
	if c.Server.RateLimitBurst < 0 {
		errs = append(errs, "server: rate_limit_burst must be >= 0")
	}
	if c.Server.MaxBodyBytes <= 0 {
		errs = append(errs, "server: max_body_bytes must be > 0")
	}
	if c.Server.ShutdownTimeout.Duration <= 0 {
		errs = append(errs, "server: shutdown_timeout must be > 0")
	}

	// Solver
	if !validSelections[c.Solver.OrderSelection] {
		errs = append(errs, fmt.Sprintf("solver: unknown order_selection %q (valid: first-eligible, last)", c.Solver.OrderSelection))
	}

	// Telemetry
	if c.Telemetry.EventBuffer < 1 {
		errs = append(errs, "telemetry: event_buffer must be >= 1")
	}

	// Notify: Telegram needs both halves of the credential.
	tt := c.Notify.TelegramToken != ""
	tc := c.Notify.TelegramChatID != ""
	if tt != tc {
		errs = append(errs, "notify: telegram_token and telegram_chat_id must be set together")
	}

	// LogLevel
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

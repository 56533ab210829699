package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies SOLVERD_* environment variable overrides, and
// returns the final Config. A missing file is not an error: defaults plus
// environment are used, so a container can run with no config mounted.
// The returned Config has NOT been validated; the caller should invoke
// Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known SOLVERD_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Server ──
	setStr(&cfg.Server.Host, "SOLVERD_SERVER_HOST")
	setInt(&cfg.Server.Port, "SOLVERD_SERVER_PORT")
	setStr(&cfg.Server.APIKey, "SOLVERD_SERVER_API_KEY")
	setStringSlice(&cfg.Server.CORSOrigins, "SOLVERD_SERVER_CORS_ORIGINS")
	setInt(&cfg.Server.RateLimitRPS, "SOLVERD_SERVER_RATE_LIMIT_RPS")
	setInt(&cfg.Server.RateLimitBurst, "SOLVERD_SERVER_RATE_LIMIT_BURST")
	setInt64(&cfg.Server.MaxBodyBytes, "SOLVERD_SERVER_MAX_BODY_BYTES")
	setDuration(&cfg.Server.ShutdownTimeout, "SOLVERD_SERVER_SHUTDOWN_TIMEOUT")

	// ── Solver ──
	setStr(&cfg.Solver.OrderSelection, "SOLVERD_SOLVER_ORDER_SELECTION")

	// ── Telemetry ──
	setInt(&cfg.Telemetry.EventBuffer, "SOLVERD_TELEMETRY_EVENT_BUFFER")
	setBool(&cfg.Telemetry.WSEnabled, "SOLVERD_TELEMETRY_WS_ENABLED")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "SOLVERD_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "SOLVERD_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "SOLVERD_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Kinds, "SOLVERD_NOTIFY_KINDS")

	// ── Top-level ──
	setStr(&cfg.LogLevel, "SOLVERD_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}

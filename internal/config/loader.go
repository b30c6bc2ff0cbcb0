package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies ARBFINDER_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known ARBFINDER_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This lets
// operators inject secrets at deploy time without touching the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Polymarket ──
	setStr(&cfg.Polymarket.GammaHost, "ARBFINDER_POLYMARKET_GAMMA_HOST")
	setInt(&cfg.Polymarket.PageSize, "ARBFINDER_POLYMARKET_PAGE_SIZE")
	setInt(&cfg.Polymarket.MaxPages, "ARBFINDER_POLYMARKET_MAX_PAGES")

	// ── Kalshi ──
	setStr(&cfg.Kalshi.ApiKey, "ARBFINDER_KALSHI_API_KEY")
	setStr(&cfg.Kalshi.RsaPrivateKeyPath, "ARBFINDER_KALSHI_RSA_PRIVATE_KEY_PATH")
	setStr(&cfg.Kalshi.BaseURL, "ARBFINDER_KALSHI_BASE_URL")
	setInt(&cfg.Kalshi.PageSize, "ARBFINDER_KALSHI_PAGE_SIZE")
	setInt(&cfg.Kalshi.MaxPages, "ARBFINDER_KALSHI_MAX_PAGES")

	// ── Scanner ──
	setBool(&cfg.Scanner.AutoRefresh, "ARBFINDER_SCANNER_AUTO_REFRESH")
	setDuration(&cfg.Scanner.RefreshInterval, "ARBFINDER_SCANNER_REFRESH_INTERVAL")
	setFloat64(&cfg.Scanner.MinSpread, "ARBFINDER_SCANNER_MIN_SPREAD")
	setFloat64(&cfg.Scanner.MatchThreshold, "ARBFINDER_SCANNER_MATCH_THRESHOLD")
	setStr(&cfg.Scanner.TieBreak, "ARBFINDER_SCANNER_TIE_BREAK")
	setStr(&cfg.Scanner.Category, "ARBFINDER_SCANNER_CATEGORY")
	setDuration(&cfg.Scanner.ResultTTL, "ARBFINDER_SCANNER_RESULT_TTL")
	setBool(&cfg.Scanner.HistoryEnabled, "ARBFINDER_SCANNER_HISTORY_ENABLED")
	setDuration(&cfg.Scanner.HistoryRetention, "ARBFINDER_SCANNER_HISTORY_RETENTION")
	setFloat64(&cfg.Scanner.NotifyMinSpread, "ARBFINDER_SCANNER_NOTIFY_MIN_SPREAD")

	// ── Postgres ──
	setStr(&cfg.Postgres.DSN, "ARBFINDER_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "ARBFINDER_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "ARBFINDER_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "ARBFINDER_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "ARBFINDER_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "ARBFINDER_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "ARBFINDER_POSTGRES_SSLMODE")
	setInt(&cfg.Postgres.PoolMaxConns, "ARBFINDER_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "ARBFINDER_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "ARBFINDER_POSTGRES_RUN_MIGRATIONS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "ARBFINDER_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "ARBFINDER_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "ARBFINDER_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "ARBFINDER_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "ARBFINDER_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "ARBFINDER_REDIS_TLS_ENABLED")

	// ── S3 ──
	setBool(&cfg.S3.Enabled, "ARBFINDER_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "ARBFINDER_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "ARBFINDER_S3_REGION")
	setStr(&cfg.S3.Bucket, "ARBFINDER_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "ARBFINDER_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "ARBFINDER_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "ARBFINDER_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "ARBFINDER_S3_FORCE_PATH_STYLE")
	setStr(&cfg.S3.Prefix, "ARBFINDER_S3_PREFIX")

	// ── Kafka ──
	setBool(&cfg.Kafka.Enabled, "ARBFINDER_KAFKA_ENABLED")
	setStringSlice(&cfg.Kafka.Brokers, "ARBFINDER_KAFKA_BROKERS")
	setStr(&cfg.Kafka.Topic, "ARBFINDER_KAFKA_TOPIC")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "ARBFINDER_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "ARBFINDER_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "ARBFINDER_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.APIKey, "ARBFINDER_SERVER_API_KEY")
	setInt(&cfg.Server.RateLimit, "ARBFINDER_SERVER_RATE_LIMIT")
	setDuration(&cfg.Server.RateWindow, "ARBFINDER_SERVER_RATE_WINDOW")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "ARBFINDER_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "ARBFINDER_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "ARBFINDER_NOTIFY_DISCORD_WEBHOOK_URL")

	// ── Top-level ──
	setStr(&cfg.Mode, "ARBFINDER_MODE")
	setStr(&cfg.LogLevel, "ARBFINDER_LOG_LEVEL")
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

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
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

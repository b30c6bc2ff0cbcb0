// Package config defines the top-level configuration for the arb finder and
// provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by ARBFINDER_* environment variables.
type Config struct {
	Polymarket PolymarketConfig `toml:"polymarket"`
	Kalshi     KalshiConfig     `toml:"kalshi"`
	Scanner    ScannerConfig    `toml:"scanner"`
	Postgres   PostgresConfig   `toml:"postgres"`
	Redis      RedisConfig      `toml:"redis"`
	S3         S3Config         `toml:"s3"`
	Kafka      KafkaConfig      `toml:"kafka"`
	Server     ServerConfig     `toml:"server"`
	Notify     NotifyConfig     `toml:"notify"`
	Mode       string           `toml:"mode"`
	LogLevel   string           `toml:"log_level"`
}

// PolymarketConfig holds Polymarket Gamma API parameters.
type PolymarketConfig struct {
	GammaHost string `toml:"gamma_host"`
	PageSize  int    `toml:"page_size"`
	MaxPages  int    `toml:"max_pages"`
}

// KalshiConfig holds Kalshi exchange API credentials and paging parameters.
type KalshiConfig struct {
	ApiKey            string `toml:"api_key"`
	RsaPrivateKeyPath string `toml:"rsa_private_key_path"`
	BaseURL           string `toml:"base_url"`
	PageSize          int    `toml:"page_size"`
	MaxPages          int    `toml:"max_pages"`
}

// ScannerConfig holds matching and ranking parameters for the scan pass.
type ScannerConfig struct {
	AutoRefresh      bool               `toml:"auto_refresh"`
	RefreshInterval  duration           `toml:"refresh_interval"`
	MinSpread        float64            `toml:"min_spread"`      // cents, 0.5-10
	MatchThreshold   float64            `toml:"match_threshold"` // 0-100
	TieBreak         string             `toml:"tie_break"`       // first, volume, category
	Category         string             `toml:"category"`        // filter, "all" for everything
	FeeBps           map[string]float64 `toml:"fee_bps"`         // per-venue fee assumption
	ResultTTL        duration           `toml:"result_ttl"`
	HistoryEnabled   bool               `toml:"history_enabled"`
	HistoryRetention duration           `toml:"history_retention"` // 0 keeps history forever
	NotifyMinSpread  float64            `toml:"notify_min_spread"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// S3Config holds S3-compatible object storage parameters for scan archival.
type S3Config struct {
	Enabled        bool   `toml:"enabled"`
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
	Prefix         string `toml:"prefix"`
}

// KafkaConfig holds the optional opportunity publisher parameters.
type KafkaConfig struct {
	Enabled bool     `toml:"enabled"`
	Brokers []string `toml:"brokers"`
	Topic   string   `toml:"topic"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	APIKey      string   `toml:"api_key"`    // empty disables auth
	RateLimit   int      `toml:"rate_limit"` // requests per client per window, 0 disables
	RateWindow  duration `toml:"rate_window"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string `toml:"telegram_token"`
	TelegramChatID    string `toml:"telegram_chat_id"`
	DiscordWebhookURL string `toml:"discord_webhook_url"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "30s", "5m").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "30s" or "5m".
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
		Polymarket: PolymarketConfig{
			GammaHost: "https://gamma-api.polymarket.com",
			PageSize:  100,
			MaxPages:  10,
		},
		Kalshi: KalshiConfig{
			BaseURL:  "https://api.elections.kalshi.com/trade-api/v2",
			PageSize: 100,
			MaxPages: 10,
		},
		Scanner: ScannerConfig{
			AutoRefresh:     true,
			RefreshInterval: duration{30 * time.Second},
			MinSpread:       1.0,
			MatchThreshold:  60.0,
			TieBreak:        "first",
			Category:        "all",
			FeeBps: map[string]float64{
				"polymarket": 0.0,
				"kalshi":     700.0,
			},
			ResultTTL:        duration{2 * time.Minute},
			HistoryEnabled:   true,
			HistoryRetention: duration{30 * 24 * time.Hour},
			NotifyMinSpread:  5.0,
		},
		Postgres: PostgresConfig{
			Host:          "localhost",
			Port:          5432,
			Database:      "arbfinder",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
			TLSEnabled: false,
		},
		S3: S3Config{
			Enabled:        false,
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "arbfinder-data",
			UseSSL:         false,
			ForcePathStyle: true,
			Prefix:         "scans",
		},
		Kafka: KafkaConfig{
			Enabled: false,
			Brokers: []string{"localhost:9092"},
			Topic:   "arb.opportunities",
		},
		Server: ServerConfig{
			Enabled:     true,
			Port:        8000,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
			RateLimit:   120,
			RateWindow:  duration{time.Minute},
		},
		Mode:     "full",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"scan":  true,
	"serve": true,
	"full":  true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validTieBreaks enumerates the accepted matcher tie-break policies.
var validTieBreaks = map[string]bool{
	"first":    true,
	"volume":   true,
	"category": true,
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: scan, serve, full)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Polymarket
	if c.Polymarket.GammaHost == "" {
		errs = append(errs, "polymarket: gamma_host must not be empty")
	}
	if c.Polymarket.PageSize <= 0 {
		errs = append(errs, "polymarket: page_size must be > 0")
	}

	// Kalshi
	if c.Kalshi.BaseURL == "" {
		errs = append(errs, "kalshi: base_url must not be empty")
	}
	if c.Kalshi.ApiKey == "" {
		errs = append(errs, "kalshi: api_key is required")
	}
	if c.Kalshi.RsaPrivateKeyPath == "" {
		errs = append(errs, "kalshi: rsa_private_key_path is required")
	}
	if c.Kalshi.PageSize <= 0 {
		errs = append(errs, "kalshi: page_size must be > 0")
	}

	// Scanner
	if c.Scanner.RefreshInterval.Duration < time.Second {
		errs = append(errs, "scanner: refresh_interval must be at least 1s")
	}
	if c.Scanner.MinSpread < 0.5 || c.Scanner.MinSpread > 10 {
		errs = append(errs, fmt.Sprintf("scanner: min_spread must be 0.5-10, got %g", c.Scanner.MinSpread))
	}
	if c.Scanner.MatchThreshold <= 0 || c.Scanner.MatchThreshold > 100 {
		errs = append(errs, fmt.Sprintf("scanner: match_threshold must be 1-100, got %g", c.Scanner.MatchThreshold))
	}
	if !validTieBreaks[strings.ToLower(c.Scanner.TieBreak)] {
		errs = append(errs, fmt.Sprintf("scanner: unknown tie_break %q (valid: first, volume, category)", c.Scanner.TieBreak))
	}
	for venue, bps := range c.Scanner.FeeBps {
		if bps < 0 {
			errs = append(errs, fmt.Sprintf("scanner: fee_bps for %s must be >= 0", venue))
		}
	}
	if c.Scanner.HistoryRetention.Duration < 0 {
		errs = append(errs, "scanner: history_retention must be >= 0")
	}

	// Postgres (only required when history is on)
	if c.Scanner.HistoryEnabled {
		if strings.TrimSpace(c.Postgres.DSN) == "" {
			if c.Postgres.Host == "" {
				errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
			}
			if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
				errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
			}
			if c.Postgres.Database == "" {
				errs = append(errs, "postgres: database must not be empty")
			}
		}
		if c.Postgres.PoolMaxConns < 1 {
			errs = append(errs, "postgres: pool_max_conns must be >= 1")
		}
		if c.Postgres.PoolMinConns < 0 {
			errs = append(errs, "postgres: pool_min_conns must be >= 0")
		}
		if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
			errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
		}
	}

	// Redis (optional; empty addr falls back to in-memory caching)
	if c.Redis.Addr != "" && c.Redis.PoolSize < 1 {
		errs = append(errs, "redis: pool_size must be >= 1")
	}

	// S3
	if c.S3.Enabled {
		if c.S3.Endpoint == "" {
			errs = append(errs, "s3: endpoint must not be empty when enabled")
		}
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty when enabled")
		}
	}

	// Kafka
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			errs = append(errs, "kafka: brokers must not be empty when enabled")
		}
		if c.Kafka.Topic == "" {
			errs = append(errs, "kafka: topic must not be empty when enabled")
		}
	}

	// Server
	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
		if c.Server.RateLimit < 0 {
			errs = append(errs, "server: rate_limit must be >= 0")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

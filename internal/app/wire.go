package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	s3blob "github.com/mkozera/arbfinder/internal/blob/s3"
	"github.com/mkozera/arbfinder/internal/archive"
	"github.com/mkozera/arbfinder/internal/cache/memory"
	"github.com/mkozera/arbfinder/internal/cache/redis"
	"github.com/mkozera/arbfinder/internal/config"
	"github.com/mkozera/arbfinder/internal/domain"
	"github.com/mkozera/arbfinder/internal/notify"
	"github.com/mkozera/arbfinder/internal/platform/kalshi"
	"github.com/mkozera/arbfinder/internal/platform/polymarket"
	"github.com/mkozera/arbfinder/internal/queue"
	"github.com/mkozera/arbfinder/internal/store/postgres"
)

// Dependencies bundles everything the application modes need. It is
// constructed by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	// Platform clients
	Polymarket *polymarket.GammaClient
	Kalshi     *kalshi.Client

	// Caching and pub/sub (nil SignalBus / RateLimiter when Redis is off)
	ResultCache domain.ResultCache
	SignalBus   domain.SignalBus
	RateLimiter domain.RateLimiter

	// Persistence (nil when history is disabled)
	OpportunityStore domain.OpportunityStore

	// Sinks (nil when the corresponding backend is disabled)
	Notifier  *notify.Notifier
	Publisher *queue.Publisher
	Archiver  *archive.Archiver

	// Raw clients retained for health checks
	RedisClient *redis.Client
	PGClient    *postgres.Client
}

// Wire constructs concrete implementations from the configuration and
// returns them with a cleanup function to be called on shutdown.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- Platform clients ---
	deps.Polymarket = polymarket.NewGammaClient(cfg.Polymarket.GammaHost)

	deps.Kalshi = kalshi.NewClient(cfg.Kalshi.BaseURL, cfg.Kalshi.ApiKey)
	if cfg.Kalshi.RsaPrivateKeyPath != "" {
		pemBytes, err := os.ReadFile(cfg.Kalshi.RsaPrivateKeyPath)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: read kalshi key: %w", err)
		}
		if err := deps.Kalshi.SetRSAPrivateKey(pemBytes); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: kalshi key: %w", err)
		}
	}

	// --- Redis (optional; in-memory cache without it) ---
	if cfg.Redis.Addr != "" {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })

		deps.RedisClient = redisClient
		deps.ResultCache = redis.NewResultCache(redisClient)
		deps.SignalBus = redis.NewSignalBus(redisClient)
		deps.RateLimiter = redis.NewRateLimiter(redisClient)
	} else {
		logger.Warn("redis not configured, using in-memory result cache")
		deps.ResultCache = memory.NewResultCache()
	}

	// --- PostgreSQL (only when history persistence is on) ---
	if cfg.Scanner.HistoryEnabled {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.Postgres.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
			}
		}

		deps.PGClient = pgClient
		deps.OpportunityStore = postgres.NewOpportunityStore(pgClient.Pool())
	}

	// --- S3 scan archival ---
	if cfg.S3.Enabled {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		closers = append(closers, func() { _ = s3Client.Close() })

		deps.Archiver = archive.NewArchiver(s3blob.NewWriter(s3Client), cfg.S3.Prefix, logger)
		closers = append(closers, func() { _ = deps.Archiver.Close(context.Background()) })
	}

	// --- Kafka opportunity publisher ---
	if cfg.Kafka.Enabled {
		deps.Publisher = queue.NewPublisher(queue.PublisherConfig{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
		}, logger)
		closers = append(closers, func() { _ = deps.Publisher.Close() })
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	if len(senders) > 0 {
		deps.Notifier = notify.NewNotifier(senders, cfg.Scanner.NotifyMinSpread, logger)
	}

	return deps, cleanup, nil
}

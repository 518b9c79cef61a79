// Package bootstrap connects the optional backends shared by the dashboard
// API and the worker manager.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"startup-insights/internal/common/aws"
	"startup-insights/internal/common/config"
	"startup-insights/internal/common/database"
	"startup-insights/internal/common/logger"
	"startup-insights/internal/storage"
)

// RetryWithBackoff runs operation until it succeeds, doubling the delay
// between attempts. It stops early when ctx is done.
func RetryWithBackoff(ctx context.Context, operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"error":       err.Error(),
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return fmt.Errorf("%s cancelled: %w", operationName, ctx.Err())
			}
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// Options tunes connection retries.
type Options struct {
	Attempts     int
	InitialDelay time.Duration
}

var DefaultOptions = Options{Attempts: 10, InitialDelay: 2 * time.Second}

// Backends holds whichever stores are configured. Unconfigured ones are nil.
type Backends struct {
	Postgres    *database.PostgresClient
	Submissions *storage.Store
	Redis       *database.RedisClient
	Elastic     *database.ElasticsearchClient
	Publisher   *aws.SNSClient

	closers []func() error
}

// Open connects every configured backend. A backend that is configured but
// unreachable after retries is an error; the ones opened so far are closed.
func Open(ctx context.Context, cfg *config.Config, opts Options, log logger.Logger) (*Backends, error) {
	log = logger.Component(log, "bootstrap")
	if opts.Attempts <= 0 {
		opts = DefaultOptions
	}

	b := &Backends{}

	if cfg.Database.Postgres.Enabled() {
		err := RetryWithBackoff(ctx, func() error {
			pg, err := database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			if err := pg.Ping(ctx); err != nil {
				pg.Close()
				return err
			}
			b.Postgres = pg
			return nil
		}, opts.Attempts, opts.InitialDelay, log, "PostgreSQL connection")
		if err != nil {
			b.Close()
			return nil, err
		}
		b.closers = append(b.closers, b.Postgres.Close)

		if err := b.Postgres.Migrate(ctx); err != nil {
			b.Close()
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		b.Submissions = storage.NewStore(b.Postgres.GetDB(), log)
		log.Info("PostgreSQL connected successfully", nil)
	}

	if cfg.Database.Redis.Enabled() {
		rdb := database.NewRedis(cfg.Database.Redis)
		err := RetryWithBackoff(ctx, func() error {
			return rdb.Ping(ctx)
		}, opts.Attempts, opts.InitialDelay, log, "Redis connection")
		if err != nil {
			rdb.Close()
			b.Close()
			return nil, err
		}
		b.Redis = rdb
		b.closers = append(b.closers, rdb.Close)
		log.Info("Redis connected successfully", nil)
	}

	if cfg.Database.Elasticsearch.Enabled() {
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			b.Close()
			return nil, err
		}
		err = RetryWithBackoff(ctx, func() error {
			return es.Ping(ctx)
		}, opts.Attempts, opts.InitialDelay, log, "Elasticsearch connection")
		if err != nil {
			b.Close()
			return nil, err
		}
		b.Elastic = es
		log.Info("Elasticsearch connected successfully", nil)
	}

	if sns := cfg.Notifications.SNS; sns.Enabled {
		pub, err := aws.NewSNSClient(ctx, sns.Region, sns.TopicARN)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("create sns client: %w", err)
		}
		b.Publisher = pub
		log.Info("SNS publisher configured", map[string]interface{}{"topicArn": sns.TopicARN})
	}

	return b, nil
}

// Checks returns a ping per connected backend.
func (b *Backends) Checks() map[string]func(ctx context.Context) error {
	checks := make(map[string]func(ctx context.Context) error)
	if b.Postgres != nil {
		checks["postgres"] = b.Postgres.Ping
	}
	if b.Redis != nil {
		checks["redis"] = b.Redis.Ping
	}
	if b.Elastic != nil {
		checks["elasticsearch"] = b.Elastic.Ping
	}
	return checks
}

// Close releases connections in reverse order of opening.
func (b *Backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		_ = b.closers[i]()
	}
	b.closers = nil
}

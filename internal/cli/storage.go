package cli

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"skolapp-quizsync/internal/app"
	"skolapp-quizsync/internal/config"
	"skolapp-quizsync/internal/infra/file"
	"skolapp-quizsync/internal/infra/memory"
	pgstore "skolapp-quizsync/internal/infra/postgres"
	redisstore "skolapp-quizsync/internal/infra/redis"
)

// openDocuments builds the DocumentStore selected by storage.backend. The
// returned close function releases any connection it opened. The postgres
// backend applies pending migrations before first use.
func openDocuments(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (app.DocumentStore, func(), error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return memory.NewDocumentStore(), func() {}, nil
	case config.BackendFile, "":
		store, err := file.NewDocumentStore(cfg.Storage.Dir)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		return redisstore.NewDocumentStore(client, cfg.Redis.Prefix, cfg.Redis.MaxBytes), func() { _ = client.Close() }, nil
	case config.BackendPostgres:
		if err := runMigrations(ctx, cfg.Postgres.URL, log); err != nil {
			return nil, nil, fmt.Errorf("migrate postgres: %w", err)
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		return pgstore.NewDocumentStore(pool), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

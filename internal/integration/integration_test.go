package integration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	"skolapp-quizsync/internal/app"
	"skolapp-quizsync/internal/domain"
	"skolapp-quizsync/internal/infra/memory"
	pgstore "skolapp-quizsync/internal/infra/postgres"
	pgmigrations "skolapp-quizsync/internal/infra/postgres/migrations"
	redisstore "skolapp-quizsync/internal/infra/redis"
	"skolapp-quizsync/internal/logging"
	"skolapp-quizsync/internal/remote"
	transport "skolapp-quizsync/internal/transport/http"
)

// TestCatalogToOfflineCache publishes summaries to Postgres, serves them over
// HTTP, loads them into a Redis-backed cache and checks the offline fallback
// once the catalog goes away.
func TestCatalogToOfflineCache(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	migrateDB(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	summaries := pgstore.NewSummarySource(pool)
	for _, s := range []domain.QuizSummary{
		{ID: "quiz-old", Title: "Vikingatiden", UpdatedAt: "2025-01-10T13:45:00.000Z"},
		{ID: "quiz-new", Title: "Bråk", UpdatedAt: "2025-01-20T08:00:00.000Z"},
	} {
		if err := summaries.Publish(ctx, s); err != nil {
			t.Fatalf("publish: %v", err)
		}
	}

	catalog := transport.NewCatalogHandler(memory.NewCachedSummarySource(summaries, time.Minute), nil, logging.Discard())
	server := httptest.NewServer(transport.NewRouter(transport.Routes{Catalog: catalog}))

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()
	docs := redisstore.NewDocumentStore(redisClient, "it:", 0)

	loader := remote.NewLoader(remote.NewHTTPFetcher(server.URL+"/quizzes.json", 5*time.Second), docs)
	loader.Refresh(ctx)
	state := loader.State()
	if state.Offline || len(state.Quizzes) != 2 || state.Quizzes[0].ID != "quiz-new" {
		t.Fatalf("unexpected online state %+v", state)
	}

	local := app.NewLocalQuizStore(ctx, docs)
	if _, err := local.CreateQuiz(ctx, "Geografi", []domain.LocalQuestion{
		domain.NewMCQQuestion("Huvudstad i Norge?", []string{"Oslo", "Bergen"}, 0),
	}, ""); err != nil {
		t.Fatalf("create: %v", err)
	}

	server.Close()

	offline := remote.NewLoader(remote.NewHTTPFetcher(server.URL+"/quizzes.json", time.Second), docs)
	offline.Refresh(ctx)
	state = offline.State()
	if !state.Offline || state.Error != "" || len(state.Quizzes) != 2 {
		t.Fatalf("expected cached list while offline, got %+v", state)
	}

	merged := app.NewLocalQuizStore(ctx, docs).Merged(state.Quizzes)
	if len(merged) != 3 || merged[0].Title != "Geografi"+app.LocalMarker {
		t.Fatalf("expected local quiz first in merged list, got %+v", merged)
	}
}

// TestPostgresDocumentsBackStores runs both ledgers on the documents table.
func TestPostgresDocumentsBackStores(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	migrateDB(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()
	docs := pgstore.NewDocumentStore(pool)

	if _, err := docs.Get(ctx, app.SharedQuizzesKey); !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	local := app.NewLocalQuizStore(ctx, docs)
	quiz, err := local.CreateQuiz(ctx, "Kemi", []domain.LocalQuestion{
		domain.NewShortTextQuestion("Kemiskt tecken för guld?", "Au"),
	}, "Åk 8")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	shared := app.NewSharedQuizStore(ctx, docs)
	sq := shared.ShareQuiz(ctx, quiz, "Anna", []string{"kemi"})
	if _, err := shared.AddRating(ctx, sq.ID, "u1", 4); err != nil {
		t.Fatalf("rate: %v", err)
	}

	reopened := app.NewSharedQuizStore(ctx, docs)
	list := reopened.Quizzes()
	if len(list) != 1 || list[0].TotalRatings != 1 || list[0].AverageRating != 4 {
		t.Fatalf("unexpected shared list %+v", list)
	}
	if got := app.NewLocalQuizStore(ctx, docs).Quizzes(); len(got) != 1 || got[0].Description != "Åk 8" {
		t.Fatalf("unexpected local list %+v", got)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func migrateDB(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}

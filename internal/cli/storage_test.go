package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"skolapp-quizsync/internal/app"
	"skolapp-quizsync/internal/config"
	"skolapp-quizsync/internal/domain"
	"skolapp-quizsync/internal/logging"
)

func TestOpenDocumentsFileBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Dir = filepath.Join(t.TempDir(), "data")

	docs, closeDocs, err := openDocuments(context.Background(), cfg, logging.Discard())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer closeDocs()
	if _, err := docs.Get(context.Background(), app.LocalQuizzesKey); !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestOpenDocumentsPostgresMigratesFreshDatabase(t *testing.T) {
	ctx := context.Background()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}

	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:15-alpine",
			Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
			ExposedPorts: []string{"5432/tcp"},
			WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	defer func() { _ = container.Terminate(ctx) }()

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}

	cfg := config.Default()
	cfg.Storage.Backend = config.BackendPostgres
	cfg.Postgres.URL = fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())

	// No prior "migrate": the documents table must exist after opening.
	docs, closeDocs, err := openDocuments(ctx, cfg, logging.Discard())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer closeDocs()

	if err := docs.Set(ctx, app.LocalQuizzesKey, []byte(`[]`)); err != nil {
		t.Fatalf("set on fresh database: %v", err)
	}
	raw, err := docs.Get(ctx, app.LocalQuizzesKey)
	if err != nil || string(raw) != "[]" {
		t.Fatalf("unexpected document %q, %v", raw, err)
	}

	// Opening again must not fail on already-applied migrations.
	_, closeAgain, err := openDocuments(ctx, cfg, logging.Discard())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	closeAgain()
}

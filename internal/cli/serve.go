package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"skolapp-quizsync/internal/app"
	"skolapp-quizsync/internal/config"
	"skolapp-quizsync/internal/domain"
	"skolapp-quizsync/internal/infra/memory"
	pgstore "skolapp-quizsync/internal/infra/postgres"
	"skolapp-quizsync/internal/metrics"
	transport "skolapp-quizsync/internal/transport/http"
)

// NewServeCmd builds the subcommand that serves the published quiz list.
func NewServeCmd(configPath, port *string) *cobra.Command {
	var seed bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the published quiz list at /quizzes.json",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), *configPath, *port, seed)
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", false, "publish the sample quizzes to postgres before serving")
	return cmd
}

func runServe(ctx context.Context, configPath, portFlag string, seed bool) error {
	cfg, log, err := loadConfig(configPath, "catalog")
	if err != nil {
		return err
	}

	var source app.SummarySource = memory.NewStaticSummarySource(sampleSummaries())
	if cfg.Postgres.URL != "" {
		if err := runMigrations(ctx, cfg.Postgres.URL, log); err != nil {
			return err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		summaries := pgstore.NewSummarySource(pool)
		if seed {
			for _, s := range sampleSummaries() {
				if err := summaries.Publish(ctx, s); err != nil {
					return err
				}
			}
			log.Info("sample quizzes published")
		}
		source = summaries
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	cached := memory.NewCachedSummarySource(source, config.TTLDuration(cfg.Catalog.TTL, time.Minute))
	router := transport.NewRouter(transport.Routes{
		Catalog:  transport.NewCatalogHandler(cached, m, log),
		Gatherer: reg,
	})
	return serveUntilDone(ctx, router, listenPort(cfg, portFlag), log)
}

// serveUntilDone runs handler until SIGINT, SIGTERM or ctx cancellation.
func serveUntilDone(ctx context.Context, handler http.Handler, port string, log logrus.FieldLogger) error {
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", port).Info("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err := <-errCh:
		return err
	case <-stop:
		log.Info("shutting down server...")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleSummaries is the catalog served when no database is configured.
func sampleSummaries() []domain.QuizSummary {
	return []domain.QuizSummary{
		{ID: "quiz-math-1", Title: "Bråk och decimaltal", UpdatedAt: "2025-01-20T08:00:00.000Z"},
		{ID: "quiz-geo-1", Title: "Europas huvudstäder", UpdatedAt: "2025-01-15T10:30:00.000Z"},
		{ID: "quiz-hist-1", Title: "Vikingatiden", UpdatedAt: "2025-01-10T13:45:00.000Z"},
	}
}

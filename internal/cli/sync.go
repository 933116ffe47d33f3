package cli

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"skolapp-quizsync/internal/app"
	"skolapp-quizsync/internal/config"
	"skolapp-quizsync/internal/metrics"
	"skolapp-quizsync/internal/remote"
	transport "skolapp-quizsync/internal/transport/http"
)

// NewSyncCmd keeps the remote catalog cached locally and exposes loader state.
func NewSyncCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Poll the remote quiz list, cache it locally and serve /state and /ws",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd.Context(), *configPath, *port)
		},
	}
}

func runSync(ctx context.Context, configPath, portFlag string) error {
	cfg, log, err := loadConfig(configPath, "sync")
	if err != nil {
		return err
	}
	docs, closeDocs, err := openDocuments(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeDocs()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	loader := newLoader(cfg, docs, log, remote.WithMetrics(m))
	router := transport.NewRouter(transport.Routes{
		State:    transport.NewStateHandler(loader, log),
		Gatherer: reg,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return loader.Run(gctx) })
	g.Go(func() error {
		logStateChanges(gctx, loader, log)
		return nil
	})
	g.Go(func() error { return serveUntilDone(gctx, router, listenPort(cfg, portFlag), log) })
	return g.Wait()
}

func newLoader(cfg config.Config, docs app.DocumentStore, log logrus.FieldLogger, opts ...remote.Option) *remote.Loader {
	fetcher := remote.NewHTTPFetcher(cfg.Remote.URL, config.TTLDuration(cfg.Remote.Timeout, 10*time.Second))
	opts = append([]remote.Option{
		remote.WithInterval(config.TTLDuration(cfg.Remote.Interval, remote.DefaultInterval)),
		remote.WithLogger(log),
	}, opts...)
	return remote.NewLoader(fetcher, docs, opts...)
}

func logStateChanges(ctx context.Context, loader *remote.Loader, log logrus.FieldLogger) {
	updates, cancel := loader.Subscribe()
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case s := <-updates:
			if s.Loading {
				continue
			}
			log.WithFields(logrus.Fields{
				"quizzes": len(s.Quizzes),
				"offline": s.Offline,
				"error":   s.Error,
			}).Info("remote quiz list updated")
		}
	}
}

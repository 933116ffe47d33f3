package cli

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"skolapp-quizsync/internal/config"
	"skolapp-quizsync/internal/logging"
)

var (
	port       string
	configPath string
)

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	// .env is optional; values already in the environment win.
	_ = godotenv.Load()

	envPort := os.Getenv("PORT")
	envConfig := os.Getenv("CONFIG_PATH")
	if envConfig == "" {
		envConfig = "config/config.yaml"
	}

	cmd := &cobra.Command{
		Use:          "quizsync",
		Short:        "Local-first quiz storage with a cached remote catalog",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&port, "port", envPort, "port to listen on (overrides server.port)")
	cmd.PersistentFlags().StringVar(&configPath, "config", envConfig, "path to YAML config")
	cmd.AddCommand(NewServeCmd(&configPath, &port))
	cmd.AddCommand(NewSyncCmd(&configPath, &port))
	cmd.AddCommand(NewMigrateCmd(&configPath))
	cmd.AddCommand(NewQuizCmd(&configPath))
	cmd.AddCommand(NewCommunityCmd(&configPath))
	return cmd
}

// loadConfig reads the config and builds the logger for one command.
func loadConfig(path, service string) (config.Config, *logrus.Entry, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, logging.New(service, cfg.Log.Level), nil
}

func listenPort(cfg config.Config, flag string) string {
	switch {
	case flag != "":
		return flag
	case cfg.Server.Port != "":
		return cfg.Server.Port
	default:
		return "8080"
	}
}

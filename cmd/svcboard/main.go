package main

import (
	"context"
	"log"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"svcboard/internal/app"
	"svcboard/internal/config"
	"svcboard/internal/controller"
	"svcboard/internal/daemon"
	"svcboard/internal/logging"
)

var (
	configPath   string
	backendFlag  string
	logLevelFlag string
)

var rootCmd = &cobra.Command{
	Use:   "svcboard [command]",
	Short: "svcboard: database service dashboard",
	Long: `svcboard lists the database, cache and broker services installed on this machine,
groups them by type or category, and starts, stops or restarts them individually or in bulk.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to JSON config file")
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "Control backend: auto, systemd, windows, memory or daemon")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level (debug, info, warn, error)")
}

// controllerAPI is the part of app.App the commands use.
type controllerAPI interface {
	Config() config.Config
	BackendKind() string
	Logger() zerolog.Logger
	Open(ctx context.Context, onEvent func(controller.Event)) (*app.Session, error)
	List(ctx context.Context, params app.ListParams) (controller.View, error)
	Control(ctx context.Context, params app.ControlParams) (app.ControlResult, error)
	Bulk(ctx context.Context, params app.BulkParams) (controller.BulkResult, error)
	Ping(ctx context.Context, timeout time.Duration) (*daemon.PingResponse, error)
	Status() (app.DaemonStatus, error)
	StopDaemon(force bool) error
	StartDaemon() (*app.DaemonHandle, error)
}

var controllerFactory = func(cfg config.Config, log zerolog.Logger) (controllerAPI, error) {
	return app.New(app.Options{ConfigPath: configPath, Config: &cfg, Logger: log})
}

// loadConfig applies the persistent flags on top of file and env settings.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}
	if backendFlag != "" {
		cfg.Backend = backendFlag
	}
	if logLevelFlag != "" {
		cfg.LogLevel = logLevelFlag
	}
	return cfg, cfg.Validate()
}

// newController builds the facade with a stderr logger.
func newController() (controllerAPI, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return controllerFactory(cfg, logging.Stderr(cfg.LogLevel))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

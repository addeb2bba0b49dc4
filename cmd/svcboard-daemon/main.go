package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"svcboard/internal/app"
	"svcboard/internal/config"
	"svcboard/internal/daemon"
	"svcboard/internal/logging"
)

func main() {
	configPath := flag.String("config", "", "Path to JSON config file")
	force := flag.Bool("force", false, "Stop an existing daemon before starting")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logger := logging.Stderr(cfg.LogLevel)

	if daemon.IsRunning() {
		if !*force {
			pid, err := daemon.RunningPID()
			if err != nil {
				logger.Fatal().Err(err).Msg("daemon appears running but pid check failed")
			}
			logger.Info().Int("pid", pid).Msg("daemon is already running, use -force to restart")
			return
		}
		logger.Info().Msg("stopping existing daemon")
		if err := daemon.StopRunningDaemon(true); err != nil {
			logger.Fatal().Err(err).Msg("failed to stop running daemon")
		}
	}

	a, err := app.New(app.Options{ConfigPath: *configPath, Config: &cfg, Logger: logger})
	if err != nil {
		logger.Fatal().Err(err).Msg("init")
	}
	handle, err := a.StartDaemon()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to start daemon")
	}
	logger.Info().Int("pid", os.Getpid()).Str("socket", handle.Path()).Msg("daemon started, press Ctrl+C to stop")

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("stopping daemon")
	if err := handle.Close(); err != nil {
		logger.Fatal().Err(err).Msg("error shutting down daemon")
	}
	logger.Info().Msg("daemon stopped")
}

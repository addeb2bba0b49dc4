package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"svcboard/internal/app"
	"svcboard/internal/backend"
	"svcboard/internal/config"
	"svcboard/internal/logging"
	"svcboard/internal/tui"
)

func main() {
	configPath := flag.String("config", "", "Path to JSON config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "tui exited with error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger, closer, err := logging.File(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer closer.Close()

	a, err := app.New(app.Options{ConfigPath: configPath, Config: &cfg, Logger: logger})
	if err != nil {
		return err
	}
	bridge := tui.NewBridge(64)
	session, err := a.Open(context.Background(), bridge.Send)
	if session == nil {
		return err
	}
	defer session.Close()

	return tui.Run(tui.Options{
		Controller:       session,
		Events:           bridge,
		SearchDebounce:   cfg.SearchDebounce,
		RefreshInterval:  cfg.RefreshInterval,
		VirtualThreshold: cfg.VirtualThreshold,
		Overscan:         cfg.Overscan,
		Backend:          session.Kind,
		Privilege:        backend.Privileges().Label(),
		Logger:           logger,
	})
}

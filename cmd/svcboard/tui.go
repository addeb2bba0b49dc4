package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"svcboard/internal/backend"
	"svcboard/internal/logging"
	"svcboard/internal/tui"
)

func init() {
	rootCmd.AddCommand(cmdTUI)
}

var cmdTUI = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		// the alt screen owns the terminal, so logs go to a file
		logger, closer, err := logging.File(cfg.LogFile, cfg.LogLevel)
		if err != nil {
			return err
		}
		defer closer.Close()

		ctrl, err := controllerFactory(cfg, logger)
		if err != nil {
			return err
		}
		return runTUI(cmd.Context(), ctrl)
	},
}

func runTUI(ctx context.Context, ctrl controllerAPI) error {
	cfg := ctrl.Config()
	bridge := tui.NewBridge(64)
	session, err := ctrl.Open(ctx, bridge.Send)
	if session == nil {
		return err
	}
	defer session.Close()

	err = tui.Run(tui.Options{
		Controller:       session,
		Events:           bridge,
		SearchDebounce:   cfg.SearchDebounce,
		RefreshInterval:  cfg.RefreshInterval,
		VirtualThreshold: cfg.VirtualThreshold,
		Overscan:         cfg.Overscan,
		Backend:          session.Kind,
		Privilege:        backend.Privileges().Label(),
		Logger:           ctrl.Logger(),
	})
	if err != nil {
		return fmt.Errorf("tui exited with error: %w", err)
	}
	return nil
}

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"svcboard/internal/httpapi"
)

var serveListen string

func init() {
	rootCmd.AddCommand(cmdServe)
	cmdServe.Flags().StringVarP(&serveListen, "listen", "l", "", "Address to listen on (default from config, 127.0.0.1:7788)")
}

var cmdServe = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard API over HTTP and WebSocket",
	Long:  `Runs a JSON API for the service list with a WebSocket feed that pushes the view after every change. Periodic refresh follows refresh_interval.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl, err := newController()
		if err != nil {
			return err
		}
		cfg := ctrl.Config()
		addr := serveListen
		if addr == "" {
			addr = cfg.HTTPListen
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		hub := httpapi.NewHub()
		session, err := ctrl.Open(ctx, hub.Publish)
		if session == nil {
			return err
		}
		defer session.Close()

		go session.Poll(ctx, cfg.RefreshInterval)
		return httpapi.New(session, hub, ctrl.Logger()).ListenAndServe(ctx, addr)
	},
}

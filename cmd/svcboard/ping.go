package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(cmdPing)
}

var pingTimeoutSeconds int

func init() {
	cmdPing.Flags().IntVarP(&pingTimeoutSeconds, "timeout", "t", 2, "Timeout in seconds for daemon ping")
}

// `svcboard ping` checks the daemon: an error when it is not running,
// otherwise "pong" plus the backend it serves.
var cmdPing = &cobra.Command{
	Use:   "ping",
	Short: "Check daemon availability (expects 'pong')",
	RunE: func(cmd *cobra.Command, args []string) error {
		controller, err := newController()
		if err != nil {
			return err
		}
		resp, err := controller.Ping(cmd.Context(), time.Duration(pingTimeoutSeconds)*time.Second)
		if err != nil {
			return err
		}

		privilege := "limited"
		if resp.Elevated {
			privilege = "elevated"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (pid %d, backend %s, %s)\n", resp.Ok, resp.PID, resp.Backend, privilege)
		return nil
	},
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"svcboard/internal/backend"
)

func init() {
	rootCmd.AddCommand(cmdStatus)
}

var cmdStatus = &cobra.Command{
	Use:   "status",
	Short: "Show daemon state, backend and privileges",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl, err := newController()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		st, err := ctrl.Status()
		switch {
		case !st.Running:
			fmt.Fprintln(out, "daemon: not running")
		case st.PID > 0:
			fmt.Fprintf(out, "daemon: running (pid %d)\n", st.PID)
		default:
			fmt.Fprintln(out, "daemon: running")
		}
		fmt.Fprintf(out, "backend: %s\n", ctrl.BackendKind())
		priv := backend.Privileges()
		fmt.Fprintf(out, "privileges: %s (%s)\n", priv.Label(), priv.Detail)
		return err
	},
}

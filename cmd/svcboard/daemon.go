package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"svcboard/internal/daemon"
)

func init() {
	rootCmd.AddCommand(cmdDaemon)
	cmdDaemon.AddCommand(cmdDaemonStop)
}

var (
	daemonForceRestart bool
	daemonStopForce    bool
)

func init() {
	cmdDaemon.Flags().BoolVarP(&daemonForceRestart, "force", "f", false, "Restart the daemon if it is already running")
	cmdDaemonStop.Flags().BoolVarP(&daemonStopForce, "force", "f", false, "Kill the daemon if it ignores SIGTERM")
}

var cmdDaemon = &cobra.Command{
	Use:   "daemon",
	Short: "Start the daemon process",
	Long: `The daemon owns the control backend and serves it over a UNIX socket, so an unprivileged
CLI or TUI can use --backend daemon. If the daemon is already running, nothing happens.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl, err := newController()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		// 0) check if the daemon is running
		if daemon.IsRunning() {
			if !daemonForceRestart {
				pid, err := daemon.RunningPID()
				var message string
				if pid != 0 {
					message = fmt.Sprintf("Daemon is already running (pid %d). Stop it manually or re-run with --force.", pid)
				} else {
					message = "Daemon is already running. Stop it manually or re-run with --force."
				}
				if err != nil {
					message = fmt.Sprintf("Error checking if daemon is running: %v", err)
				}
				fmt.Fprintln(out, message)
				return nil
			}
			fmt.Fprintln(out, "Stopping existing daemon process...")
			if err := ctrl.StopDaemon(true); err != nil {
				return err
			}
		}
		// 1) Not running, so start it
		handle, err := ctrl.StartDaemon()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Started daemon on %s (backend %s)\n", handle.Path(), ctrl.BackendKind())
		runSpin := spinner.New(spinner.CharSets[21], 120*time.Millisecond, spinner.WithWriter(os.Stdout))
		runSpin.Suffix = " Serving..."
		runSpin.Start()

		// 2) Wait for SIGINT or SIGTERM to stop
		sigc := make(chan os.Signal, 2)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
		<-sigc
		runSpin.Stop()
		return handle.Close()
	},
}

var cmdDaemonStop = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl, err := newController()
		if err != nil {
			return err
		}
		st, err := ctrl.Status()
		if err != nil {
			return err
		}
		if !st.Running {
			fmt.Fprintln(cmd.OutOrStdout(), "Daemon is not running")
			return nil
		}
		if err := ctrl.StopDaemon(daemonStopForce); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Daemon stopped")
		return nil
	},
}

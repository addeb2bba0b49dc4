package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"svcboard/internal/app"
	"svcboard/internal/model"
)

func init() {
	rootCmd.AddCommand(
		newControlCmd(model.ActionStart, "Start one or more services"),
		newControlCmd(model.ActionStop, "Stop one or more services"),
		newControlCmd(model.ActionRestart, "Restart one or more services"),
	)
}

func newControlCmd(action model.Action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   string(action) + " <id>...",
		Short: short,
		Long:  fmt.Sprintf("Runs %s against each service id in turn and reports the outcome per service. A failure does not stop the remaining ids.", action),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := newController()
			if err != nil {
				return err
			}
			res, err := ctrl.Control(cmd.Context(), app.ControlParams{Action: action, IDs: args})
			out := cmd.OutOrStdout()
			for _, ev := range res.Events {
				switch ev.Kind {
				case "success":
					fmt.Fprintf(out, "%s %s: ok\n", action, ev.ID)
				default:
					fmt.Fprintf(out, "%s %s: %s\n", action, ev.ID, ev.Err.Message)
					if g := ev.Err.Guidance(); g != "" {
						fmt.Fprintf(out, "  hint: %s\n", g)
					}
				}
			}
			return err
		},
	}
}

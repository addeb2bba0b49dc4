package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"svcboard/internal/app"
	"svcboard/internal/controller"
	"svcboard/internal/filter"
	"svcboard/internal/model"
)

var (
	bulkSearch   string
	bulkSelector string
)

// stderrIsTerminal decides whether bulk commands draw a progress bar.
var stderrIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}

func init() {
	for _, c := range []*cobra.Command{
		newBulkCmd(model.ActionStart, "start-all", "Start every stopped service matching the filters"),
		newBulkCmd(model.ActionStop, "stop-all", "Stop every running service matching the filters"),
	} {
		c.Flags().StringVarP(&bulkSearch, "search", "s", "", "Only services matching this text")
		c.Flags().StringVarP(&bulkSelector, "type", "t", filter.All, "Only services of this type or category")
		rootCmd.AddCommand(c)
	}
}

func newBulkCmd(action model.Action, use, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Long:  "Disabled services are skipped. Calls run concurrently and the list is reloaded once at the end.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := newController()
			if err != nil {
				return err
			}
			prog := newBulkProgress(cmd.ErrOrStderr(), stderrIsTerminal(), action)
			res, err := ctrl.Bulk(cmd.Context(), app.BulkParams{
				Action:  action,
				Query:   filter.Query{Search: bulkSearch, Selector: bulkSelector},
				OnEvent: prog.observe,
			})
			prog.finish()
			if err != nil {
				return err
			}
			printBulk(cmd.OutOrStdout(), res)
			if res.Failed > 0 {
				return fmt.Errorf("%s: %d of %d services failed", use, res.Failed, res.Attempted)
			}
			return nil
		},
	}
}

// bulkProgress renders a progress bar from controller events.
type bulkProgress struct {
	out     io.Writer
	enabled bool
	action  model.Action

	mu  sync.Mutex
	bar *progressbar.ProgressBar
}

func newBulkProgress(out io.Writer, enabled bool, action model.Action) *bulkProgress {
	return &bulkProgress{out: out, enabled: enabled, action: action}
}

func (p *bulkProgress) observe(ev controller.Event) {
	if !p.enabled {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	switch ev.Kind {
	case controller.EventBulkStarted:
		if ev.Targets == 0 {
			return
		}
		p.bar = progressbar.NewOptions(ev.Targets,
			progressbar.OptionSetDescription(fmt.Sprintf("%s services", p.action)),
			progressbar.OptionSetWriter(p.out),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionThrottle(100),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprint(p.out, "\n")
			}),
			progressbar.OptionSetRenderBlankState(true),
		)
	case controller.EventRowSettled:
		if p.bar != nil {
			_ = p.bar.Add(1)
		}
	}
}

func (p *bulkProgress) finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}

func printBulk(w io.Writer, res controller.BulkResult) {
	if res.Attempted == 0 && res.Skipped == 0 {
		fmt.Fprintf(w, "No services to %s\n", res.Action)
		return
	}
	fmt.Fprintf(w, "%s: %d succeeded, %d failed, %d skipped\n", res.Action, res.Succeeded, res.Failed, res.Skipped)
	ids := make([]string, 0, len(res.Errors))
	for id := range res.Errors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		fmt.Fprintf(w, "  %s: %s\n", id, res.Errors[id].Message)
	}
}

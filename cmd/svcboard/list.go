package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"svcboard/internal/app"
	"svcboard/internal/catalog"
	"svcboard/internal/controller"
	"svcboard/internal/filter"
)

var (
	listSearch   string
	listSelector string
	listGroupBy  string
	listJSON     bool
)

func init() {
	rootCmd.AddCommand(cmdList)

	cmdList.Flags().StringVarP(&listSearch, "search", "s", "", "Case-insensitive text filter on name, id and type")
	cmdList.Flags().StringVarP(&listSelector, "type", "t", filter.All, "Type or category key to show (e.g. redis, sql_databases)")
	cmdList.Flags().StringVarP(&listGroupBy, "group-by", "g", "type", "Group by type or category")
	cmdList.Flags().BoolVar(&listJSON, "json", false, "Print the view as JSON")
}

var cmdList = &cobra.Command{
	Use:   "list",
	Short: "List database services",
	Long:  `Loads the services from the configured backend and prints them grouped by type or category.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		by, ok := catalog.ParseGroupBy(listGroupBy)
		if !ok {
			return fmt.Errorf("--group-by must be type or category, got %q", listGroupBy)
		}
		ctrl, err := newController()
		if err != nil {
			return err
		}
		view, err := ctrl.List(cmd.Context(), app.ListParams{
			Query:   filter.Query{Search: listSearch, Selector: listSelector},
			GroupBy: by,
		})
		if err != nil {
			return err
		}
		if listJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(view)
		}
		printView(cmd.OutOrStdout(), view)
		return nil
	},
}

func printView(w io.Writer, view controller.View) {
	if len(view.Items) == 0 {
		if view.Total == 0 {
			fmt.Fprintln(w, "No database services found")
		} else {
			fmt.Fprintln(w, "No services match the provided filters")
		}
		return
	}
	for _, g := range view.Groups {
		fmt.Fprintf(w, "%s %s (%d running, %d stopped)\n", g.Icon, g.Name, g.Summary.Running, g.Summary.Stopped)
		for _, it := range g.Items {
			line := fmt.Sprintf("  %-10s %-36s %-9s %s", it.Status, it.Label(), it.Policy, it.ID)
			fmt.Fprintln(w, strings.TrimRight(line, " "))
		}
	}
	fmt.Fprintf(w, "%d of %d services\n", len(view.Items), view.Total)
}

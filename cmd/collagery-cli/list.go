package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var listHidden bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List published collages",
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&listHidden, "hidden", false, "include hidden collages (requires login)")
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	client := newClient(cfg)
	items, err := client.list(cmd.Context(), listHidden)
	if err != nil {
		return err
	}

	if len(items) == 0 {
		fmt.Println("no collages")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SLUG\tDATE\tITEMS\tVISIBLE\tTITLE")
	for _, col := range items {
		fmt.Fprintf(w, "%s\t%s\t%d\t%t\t%s\n",
			col.Slug, col.Date, len(col.Items), col.IsVisible(), col.Title)
	}
	return w.Flush()
}

package commands

import (
	"fmt"
	"footstats/services/fbref"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var inspectFlags struct {
	layout  string
	htmlDir string
}

func init() {
	flags := inspectCmd.Flags()
	flags.StringVar(&inspectFlags.layout, "layout", "", "Layout file, defaults to the embedded layout.")
	flags.StringVar(&inspectFlags.htmlDir, "html-dir", "", "Reads <category>.html from this directory instead of fetching the page.")
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <category>",
	Short: "Prints the header of a category table with the positions header rules refer to.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := loadLayout(inspectFlags.layout)
		if err != nil {
			return err
		}
		category, ok := l.Category(args[0])
		if !ok {
			names := make([]string, len(l.Categories))
			for i, c := range l.Categories {
				names[i] = c.Name
			}
			return fmt.Errorf("unknown category '%s', expected one of: %s", args[0], strings.Join(names, ", "))
		}
		renderer, err := newRenderer(inspectFlags.htmlDir, "")
		if err != nil {
			return err
		}

		out, err := fbref.Inspect(cmd.Context(), category, renderer)
		if err != nil {
			return err
		}

		w := table.NewWriter()
		w.SetOutputMirror(os.Stdout)
		w.AppendHeader(table.Row{"Index", "Header", "With rules"})
		for i, label := range out.Header {
			applied := ""
			if out.Applied != nil {
				applied = out.Applied[i]
			}
			w.AppendRow(table.Row{i, label, applied})
		}
		w.SetStyle(table.StyleRounded)
		w.Render()

		fmt.Printf("rows: %d, kept: %d\n", out.Rows, out.KeptRows)
		if out.RuleError != nil {
			fmt.Printf("rules no longer apply: %v\n", out.RuleError)
		}
		if len(out.MissingColumns) > 0 {
			fmt.Printf("missing columns: %s\n", strings.Join(out.MissingColumns, ", "))
		}
		return nil
	},
}

package commands

import (
	"fmt"
	"footstats/lib/dataset"
	"footstats/services/report"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var reportFlags struct {
	in  string
	dir string
}

func init() {
	flags := reportCmd.Flags()
	flags.StringVar(&reportFlags.in, "in", "result.csv", "Dataset written by scrape.")
	flags.StringVar(&reportFlags.dir, "dir", "report", "Directory the report files are written to.")
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Writes the top players, per team statistics and leading teams of every metric.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		players, err := dataset.ReadCSVFile(reportFlags.in)
		if err != nil {
			return fmt.Errorf("read %s: %w", reportFlags.in, err)
		}
		in, err := report.Prepare(players, report.DefaultParams())
		if err != nil {
			return err
		}
		err = report.Write(cmd.Context(), reportFlags.dir, in)
		if err != nil {
			return err
		}

		leaders := map[string]report.Leader{}
		for _, l := range in.Leaders() {
			leaders[l.Field] = l
		}

		w := table.NewWriter()
		w.SetOutputMirror(os.Stdout)
		w.AppendHeader(table.Row{"Metric", "Min", "Max", "Leading team", "Team average"})
		for _, field := range in.Fields {
			lo, hi := in.Spread(field)
			row := table.Row{field, dataset.FormatNumber(lo), dataset.FormatNumber(hi), "", ""}
			if l, ok := leaders[field]; ok {
				row[3] = l.Team
				row[4] = fmt.Sprintf("%.2f", l.Mean)
			}
			w.AppendRow(row)
		}
		w.SetStyle(table.StyleRounded)
		w.Render()
		return nil
	},
}

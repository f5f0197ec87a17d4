package commands

import (
	"fmt"
	"footstats/lib/dataset"
	"footstats/services/cluster"
	"log/slog"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var clusterFlags struct {
	in  string
	out string
	k   int
}

func init() {
	flags := clusterCmd.Flags()
	flags.StringVar(&clusterFlags.in, "in", "result.csv", "Dataset written by scrape.")
	flags.StringVar(&clusterFlags.out, "out", "clusters.csv", "Output csv file.")
	flags.IntVar(&clusterFlags.k, "k", 0, "Number of clusters, picked at the elbow of the wcss curve when 0.")
	rootCmd.AddCommand(clusterCmd)
}

var clusterCmd = &cobra.Command{
	Use:   "cluster",
	Short: "Groups players by their statistics with k-means.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		players, err := dataset.ReadCSVFile(clusterFlags.in)
		if err != nil {
			return fmt.Errorf("read %s: %w", clusterFlags.in, err)
		}

		params := cluster.DefaultParams()
		params.K = clusterFlags.k
		result, err := cluster.Run(ctx, players, params)
		if err != nil {
			return err
		}

		w := table.NewWriter()
		w.SetOutputMirror(os.Stdout)
		w.AppendHeader(table.Row{"Clusters", "WCSS", ""})
		for i, wcss := range result.WCSS {
			mark := ""
			if i+1 == result.K {
				mark = "<-"
			}
			w.AppendRow(table.Row{i + 1, fmt.Sprintf("%.2f", wcss), mark})
		}
		w.SetStyle(table.StyleRounded)
		w.Render()
		fmt.Printf("silhouette score: %.3f\n", result.Silhouette)

		err = dataset.WriteCSVFile(clusterFlags.out, result.Table)
		if err != nil {
			return fmt.Errorf("write %s: %w", clusterFlags.out, err)
		}
		slog.InfoContext(ctx, "wrote clusters", "path", clusterFlags.out, "k", result.K)
		return nil
	},
}

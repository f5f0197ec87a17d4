package commands

import (
	"fmt"
	"footstats/lib/dataset"
	"footstats/services/transfervalue"
	"log/slog"

	"github.com/spf13/cobra"
)

var valuesFlags struct {
	in    string
	cache string
	out   string
	min   float64
}

func init() {
	flags := valuesCmd.Flags()
	flags.StringVar(&valuesFlags.in, "in", "result.csv", "Dataset written by scrape.")
	flags.StringVar(&valuesFlags.cache, "cache", "", "Value cache file, defaults to the configured one.")
	flags.StringVar(&valuesFlags.out, "out", "transfer_values.csv", "Output csv file.")
	flags.Float64Var(&valuesFlags.min, "min-minutes", transfervalue.DefaultRunParams().MinMinutes, "Only players with more minutes are valued.")
	rootCmd.AddCommand(valuesCmd)
}

var valuesCmd = &cobra.Command{
	Use:   "values",
	Short: "Looks up the market value of every player above a minutes threshold.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		players, err := dataset.ReadCSVFile(valuesFlags.in)
		if err != nil {
			return fmt.Errorf("read %s: %w", valuesFlags.in, err)
		}

		cachePath := valuesFlags.cache
		if cachePath == "" {
			cachePath = config.ValueCache
		}
		cache, err := transfervalue.LoadCache(cachePath)
		if err != nil {
			return fmt.Errorf("read cache %s: %w", cachePath, err)
		}

		source, err := transfervalue.NewPageSource(config.Scraper.Options(), config.ValueUrls...)
		if err != nil {
			return err
		}

		params := transfervalue.DefaultRunParams()
		params.MinMinutes = valuesFlags.min
		result, err := transfervalue.Run(ctx, players, params, cache, source)
		if err != nil {
			return err
		}

		err = transfervalue.SaveCache(cachePath, cache)
		if err != nil {
			return fmt.Errorf("write cache %s: %w", cachePath, err)
		}
		err = dataset.WriteCSVFile(valuesFlags.out, result)
		if err != nil {
			return fmt.Errorf("write %s: %w", valuesFlags.out, err)
		}
		slog.InfoContext(ctx, "wrote transfer values", "path", valuesFlags.out, "players", result.Len())
		return nil
	},
}

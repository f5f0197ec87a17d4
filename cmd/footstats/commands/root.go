package commands

import (
	"context"
	"footstats/lib/serviceutil"
	"footstats/lib/telemetry"

	"github.com/spf13/cobra"
)

var (
	verbose bool
	config  Config
)

var rootCmd = &cobra.Command{
	Use:   "footstats",
	Short: "footstats scrapes premier league player statistics into a single csv and analyzes it.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		telemetry.InitSlog(verbose)
		loaded, err := loadConfig()
		if err != nil {
			return err
		}
		config = loaded
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enables debug logs.")
}

func Execute(ctx context.Context) {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		serviceutil.Fatal("command failed", err)
	}
}

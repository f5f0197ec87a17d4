package commands

import (
	"errors"
	"fmt"
	"footstats/lib/dataset"
	"footstats/services/fbref"
	"footstats/services/fbref/db"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var runsFlags struct {
	db  dbFlags
	out string
}

func init() {
	flags := runsCmd.PersistentFlags()
	flags.StringVar(&runsFlags.db.file, "db", "", "sqlite file holding the runs.")
	flags.StringVar(&runsFlags.db.url, "db-url", "", "libsql database holding the runs.")
	runsShowCmd.Flags().StringVar(&runsFlags.out, "out", "", "Writes the run as csv instead of printing it.")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsDeleteCmd)
	runsCmd.AddCommand(runsHistoryCmd)
	rootCmd.AddCommand(runsCmd)
}

func openStore() (fbref.Store, func(), error) {
	dbConfig := runsFlags.db.resolve(config.Database)
	if !configured(dbConfig) {
		return fbref.Store{}, nil, errors.New("no database configured, pass --db or --db-url")
	}
	database, err := dbConfig.OpenWithSchema(db.Schema)
	if err != nil {
		return fbref.Store{}, nil, err
	}
	return fbref.NewStore(database), func() { database.Close() }, nil
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "The 'runs' subcommand accesses the scrapes saved into a database.",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Lists saved runs, newest first.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, cleanup, err := openStore()
		if err != nil {
			return err
		}
		defer cleanup()

		runs, err := store.Runs(cmd.Context())
		if err != nil {
			return err
		}
		w := table.NewWriter()
		w.SetOutputMirror(os.Stdout)
		w.AppendHeader(table.Row{"Id", "Layout", "Created"})
		for _, r := range runs {
			w.AppendRow(table.Row{r.ID, r.LayoutVersion, time.Unix(r.CreatedAt, 0).Format(time.ANSIC)})
		}
		w.SetStyle(table.StyleRounded)
		w.Render()
		return nil
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run id>",
	Short: "Prints a saved run.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, cleanup, err := openStore()
		if err != nil {
			return err
		}
		defer cleanup()

		t, err := store.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if runsFlags.out != "" {
			return dataset.WriteCSVFile(runsFlags.out, t)
		}
		printTable(t, 0)
		return nil
	},
}

var runsDeleteCmd = &cobra.Command{
	Use:   "delete <run id>",
	Short: "Deletes a saved run.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, cleanup, err := openStore()
		if err != nil {
			return err
		}
		defer cleanup()
		return store.Delete(cmd.Context(), args[0])
	},
}

var runsHistoryCmd = &cobra.Command{
	Use:   "history <player> <team> <stat>",
	Short: "Prints the value of a stat of a player across every saved run.",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, cleanup, err := openStore()
		if err != nil {
			return err
		}
		defer cleanup()

		history, err := store.History(cmd.Context(), args[0], args[1], args[2])
		if err != nil {
			return err
		}
		w := table.NewWriter()
		w.SetOutputMirror(os.Stdout)
		w.AppendHeader(table.Row{"Run", "Created", args[2]})
		for _, h := range history {
			value := dataset.MissingText
			if h.Value.Valid {
				value = h.Value.String
			}
			w.AppendRow(table.Row{h.RunID, time.Unix(h.CreatedAt, 0).Format(time.ANSIC), value})
		}
		w.SetStyle(table.StyleRounded)
		w.Render()
		if len(history) == 0 {
			fmt.Println("no saved values")
		}
		return nil
	},
}

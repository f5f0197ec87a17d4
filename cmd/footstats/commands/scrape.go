package commands

import (
	"fmt"
	"footstats/lib/dataset"
	"footstats/services/fbref"
	"footstats/services/fbref/db"
	"footstats/services/fbref/layout"
	"log/slog"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var scrapeFlags struct {
	layout  string
	out     string
	htmlDir string
	db      dbFlags
	preview int
	dump    string
}

func init() {
	flags := scrapeCmd.Flags()
	flags.StringVar(&scrapeFlags.layout, "layout", "", "Layout file, defaults to the embedded layout.")
	flags.StringVar(&scrapeFlags.out, "out", "result.csv", "Output csv file.")
	flags.StringVar(&scrapeFlags.htmlDir, "html-dir", "", "Reads <category>.html from this directory instead of fetching pages.")
	flags.StringVar(&scrapeFlags.db.file, "db", "", "Also saves the run into this sqlite file.")
	flags.StringVar(&scrapeFlags.db.url, "db-url", "", "Also saves the run into this libsql database.")
	flags.IntVar(&scrapeFlags.preview, "preview", 0, "Prints the first n rows of the result.")
	flags.StringVar(&scrapeFlags.dump, "dump", "", "Dumps every http message into this directory.")
	rootCmd.AddCommand(scrapeCmd)
}

func loadLayout(path string) (layout.Layout, error) {
	if path == "" {
		path = config.Layout
	}
	return layout.Load(path)
}

func newRenderer(htmlDir, dump string) (fbref.Renderer, error) {
	if htmlDir != "" {
		return fbref.DirRenderer{Dir: htmlDir}, nil
	}
	opts := config.Scraper.Options()
	if dump != "" {
		opts.DumpDir = dump
	}
	return fbref.NewHttpRenderer(opts)
}

// outputName is the name a merged column ends up with after the final renames.
func outputName(l layout.Layout, column string) string {
	if renamed, ok := l.Renames[column]; ok {
		return renamed
	}
	return column
}

func printTable(t dataset.Table, limit int) {
	w := table.NewWriter()
	w.SetOutputMirror(os.Stdout)

	header := table.Row{}
	for _, c := range t.Columns() {
		header = append(header, c)
	}
	w.AppendHeader(header)

	records := t.Records()
	for i, record := range records {
		if limit > 0 && i >= limit {
			break
		}
		row := make(table.Row, len(record))
		for j, cell := range record {
			row[j] = cell
		}
		w.AppendRow(row)
	}
	if limit > 0 && len(records) > limit {
		w.AppendFooter(table.Row{fmt.Sprintf("%d more rows", len(records)-limit)})
	}
	w.SetStyle(table.StyleRounded)
	w.Render()
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrapes every category of the layout and writes the merged dataset.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		l, err := loadLayout(scrapeFlags.layout)
		if err != nil {
			return err
		}
		renderer, err := newRenderer(scrapeFlags.htmlDir, scrapeFlags.dump)
		if err != nil {
			return err
		}

		result, err := fbref.Build(ctx, l, renderer)
		if err != nil {
			return err
		}

		err = dataset.WriteCSVFile(scrapeFlags.out, result)
		if err != nil {
			return fmt.Errorf("write %s: %w", scrapeFlags.out, err)
		}
		slog.InfoContext(ctx, "wrote dataset",
			"path", scrapeFlags.out,
			"rows", result.Len(),
			"columns", len(result.Columns()),
		)

		dbConfig := scrapeFlags.db.resolve(config.Database)
		if configured(dbConfig) {
			database, err := dbConfig.OpenWithSchema(db.Schema)
			if err != nil {
				return err
			}
			defer database.Close()

			runId, err := fbref.NewStore(database).Save(ctx, result, fbref.SaveParams{
				LayoutVersion: l.Version,
				PlayerColumn:  outputName(l, dataset.PlayerColumn),
				TeamColumn:    outputName(l, dataset.TeamColumn),
			})
			if err != nil {
				return fmt.Errorf("save run: %w", err)
			}
			slog.InfoContext(ctx, "saved run", "run_id", runId)
		}

		if scrapeFlags.preview > 0 {
			printTable(result, scrapeFlags.preview)
		}
		return nil
	},
}

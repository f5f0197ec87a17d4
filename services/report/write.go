package report

import (
	"context"
	"fmt"
	"footstats/lib/dataset"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel/codes"
)

const (
	TopFile        = "top_3.txt"
	StatisticsFile = "results2.csv"
	LeadersFile    = "highest_team_stats.txt"
)

// WriteExtremes writes the top and bottom `n` players of every field.
func WriteExtremes(w io.Writer, in Input, n int) error {
	for _, field := range in.Fields {
		top, bottom := in.Extremes(field, n)
		var b strings.Builder
		fmt.Fprintf(&b, "Metric: %s\nTop Performers:\n", field)
		for i, p := range top {
			fmt.Fprintf(&b, " %d. %s (%s): %s\n", i+1, p.Player, p.Team, dataset.FormatNumber(p.Value))
		}
		b.WriteString("Lowest Performers:\n")
		for i, p := range bottom {
			fmt.Fprintf(&b, " %d. %s (%s): %s\n", i+1, p.Player, p.Team, dataset.FormatNumber(p.Value))
		}
		b.WriteString("\n")
		_, err := io.WriteString(w, b.String())
		if err != nil {
			return err
		}
	}
	return nil
}

func WriteLeaders(w io.Writer, leaders []Leader) error {
	lines := make([]string, len(leaders))
	for i, l := range leaders {
		lines[i] = fmt.Sprintf("Metric: %s, Leading Team: %s, Average: %.2f", l.Field, l.Team, l.Mean)
	}
	_, err := fmt.Fprintf(w,
		"Teams with Highest Average Performance by Metric\n%s\n\n%s",
		strings.Repeat("=", 50),
		strings.Join(lines, "\n"),
	)
	return err
}

func writeFile(path string, write func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	err = write(f)
	if err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Write produces the three report files under `dir`.
func Write(ctx context.Context, dir string, in Input) error {
	ctx, span := tracer.Start(ctx, "Write")
	defer span.End()

	fail := func(err error) error {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return fail(err)
	}

	err = writeFile(filepath.Join(dir, TopFile), func(w io.Writer) error {
		return WriteExtremes(w, in, 3)
	})
	if err != nil {
		return fail(fmt.Errorf("write %s: %w", TopFile, err))
	}

	stats, err := in.Statistics(ctx)
	if err != nil {
		return fail(err)
	}
	err = dataset.WriteCSVFile(filepath.Join(dir, StatisticsFile), stats)
	if err != nil {
		return fail(fmt.Errorf("write %s: %w", StatisticsFile, err))
	}

	leaders := in.Leaders()
	err = writeFile(filepath.Join(dir, LeadersFile), func(w io.Writer) error {
		return WriteLeaders(w, leaders)
	})
	if err != nil {
		return fail(fmt.Errorf("write %s: %w", LeadersFile, err))
	}

	slog.InfoContext(ctx, "wrote report",
		"dir", dir,
		"fields", len(in.Fields),
		"leaders", len(leaders),
	)
	return nil
}

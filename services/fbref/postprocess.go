package fbref

import (
	"context"
	"footstats/lib/dataset"
	"footstats/services/fbref/layout"
	"log/slog"
	"slices"

	"go.opentelemetry.io/otel/attribute"
)

// PostProcess finalizes a merged table:
//  1. number columns are coerced, unparsable cells become NA.
//  2. rows with minutes at or below the layout threshold are dropped.
//  3. rows are sorted by player, stable, in byte order.
//  4. empty cells become NA.
//  5. the layout's presentation renames are applied.
func PostProcess(ctx context.Context, t dataset.Table, l layout.Layout) (dataset.Table, error) {
	ctx, span := tracer.Start(ctx, "PostProcess")
	defer span.End()

	columns := t.Columns()
	numbers := l.NumberColumns()
	if !slices.Contains(numbers, l.MinutesColumn) {
		numbers = append(numbers, l.MinutesColumn)
	}

	var err error
	for _, name := range numbers {
		if !slices.Contains(columns, name) {
			continue
		}
		t, err = t.MapColumn(name, dataset.CoerceNumber)
		if err != nil {
			return dataset.Table{}, err
		}
	}

	minutesIdx := t.Index(l.MinutesColumn)
	if minutesIdx < 0 {
		return dataset.Table{}, &dataset.MissingColumnError{
			Category: "post-process",
			Column:   l.MinutesColumn,
		}
	}
	before := t.Len()
	t = t.Filter(func(row []dataset.Cell) bool {
		minutes, ok := dataset.ParseNumber(row[minutesIdx])
		return ok && minutes > l.MinMinutes
	})

	t, err = t.SortBy(dataset.PlayerColumn)
	if err != nil {
		return dataset.Table{}, err
	}

	t = t.MapCells(func(c dataset.Cell) dataset.Cell {
		if !c.Missing && c.Text == "" {
			return dataset.NA
		}
		return c
	})

	t, err = t.Rename(l.Renames)
	if err != nil {
		return dataset.Table{}, err
	}

	span.SetAttributes(
		attribute.Int("rows_in", before),
		attribute.Int("rows_out", t.Len()),
	)
	slog.InfoContext(ctx, "post-processed dataset",
		"rows", t.Len(),
		"below_threshold", before-t.Len(),
		"min_minutes", l.MinMinutes,
	)
	return t, nil
}

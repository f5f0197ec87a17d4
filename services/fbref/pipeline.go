// Package fbref scrapes the per-category player tables and folds them into
// one dataset keyed by player and team.
package fbref

import (
	"context"
	"errors"
	"fmt"
	"footstats/lib/dataset"
	"footstats/lib/htmltable"
	"footstats/services/fbref/layout"
	"log/slog"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("footstats.services.fbref")

// extract locates the category table with its locator, then with its
// fallback, and returns the locator that matched.
func extract(ctx context.Context, doc *goquery.Document, category layout.Category, rules []htmltable.HeaderRule) (htmltable.RawTable, htmltable.Locator, error) {
	raw, err := htmltable.Extract(ctx, doc, category.Name, category.Locator, rules)
	var extractErr *htmltable.ExtractionError
	if category.Fallback == nil || !errors.As(err, &extractErr) || !extractErr.NotFound() {
		return raw, category.Locator, err
	}
	slog.DebugContext(ctx, "locator matched nothing, using fallback",
		"category", category.Name,
		"locator", category.Locator.String(),
		"fallback", category.Fallback.String(),
	)
	raw, err = htmltable.Extract(ctx, doc, category.Name, *category.Fallback, rules)
	return raw, *category.Fallback, err
}

// Step renders one category, extracts and projects its table and merges it
// onto `acc`. `acc` is not modified.
func Step(ctx context.Context, acc dataset.Table, category layout.Category, renderer Renderer) (dataset.Table, error) {
	ctx, span := tracer.Start(ctx, "Step")
	defer span.End()
	span.SetAttributes(attribute.String("category", category.Name))

	fail := func(err error) (dataset.Table, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return dataset.Table{}, err
	}

	page, err := renderer.Render(ctx, category)
	if err != nil {
		return fail(fmt.Errorf("render category '%s': %w", category.Name, err))
	}
	doc, err := parsePage(page)
	if err != nil {
		return fail(fmt.Errorf("parse category '%s': %w", category.Name, err))
	}

	raw, loc, err := extract(ctx, doc, category, category.Rules)
	if err != nil {
		return fail(err)
	}
	raw = htmltable.FilterRows(raw)

	table, err := dataset.Project(category.Name, raw, category.Schema())
	if err != nil {
		return fail(fmt.Errorf("project %s: %w", loc, err))
	}
	if len(category.Renames) > 0 {
		table, err = table.Rename(category.Renames)
		if err != nil {
			return fail(fmt.Errorf("rename category '%s': %w", category.Name, err))
		}
	}

	merged, err := dataset.Merge(acc, table, dataset.PlayerColumn, dataset.TeamColumn)
	if err != nil {
		return fail(fmt.Errorf("merge category '%s': %w", category.Name, err))
	}

	slog.InfoContext(ctx, "merged category",
		"category", category.Name,
		"rows", table.Len(),
		"total_rows", merged.Len(),
		"total_columns", len(merged.Columns()),
	)
	return merged, nil
}

// Fold runs Step over every category of the layout in order, starting from
// an empty table. The first failing category aborts the fold.
func Fold(ctx context.Context, l layout.Layout, renderer Renderer) (dataset.Table, error) {
	ctx, span := tracer.Start(ctx, "Fold")
	defer span.End()
	span.SetAttributes(attribute.String("layout", l.Version))

	var acc dataset.Table
	for _, category := range l.Categories {
		next, err := Step(ctx, acc, category, renderer)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return dataset.Table{}, err
		}
		acc = next
	}
	return acc, nil
}

// Build is Fold followed by PostProcess.
func Build(ctx context.Context, l layout.Layout, renderer Renderer) (dataset.Table, error) {
	merged, err := Fold(ctx, l, renderer)
	if err != nil {
		return dataset.Table{}, err
	}
	return PostProcess(ctx, merged, l)
}

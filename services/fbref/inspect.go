package fbref

import (
	"context"
	"fmt"
	"footstats/lib/htmltable"
	"footstats/services/fbref/layout"
)

// Inspection describes a category table as it currently is on the page,
// for updating the positions of header rules.
type Inspection struct {
	Category string
	// header after the rank column is dropped, before any rule
	Header []string
	// header with the category's rules applied, nil when they no longer fit
	Applied   []string
	RuleError error
	Rows      int
	KeptRows  int
	// configured source labels not found in Applied
	MissingColumns []string
}

func Inspect(ctx context.Context, category layout.Category, renderer Renderer) (Inspection, error) {
	ctx, span := tracer.Start(ctx, "Inspect")
	defer span.End()

	page, err := renderer.Render(ctx, category)
	if err != nil {
		return Inspection{}, fmt.Errorf("render category '%s': %w", category.Name, err)
	}
	doc, err := parsePage(page)
	if err != nil {
		return Inspection{}, fmt.Errorf("parse category '%s': %w", category.Name, err)
	}

	raw, _, err := extract(ctx, doc, category, nil)
	if err != nil {
		return Inspection{}, err
	}

	out := Inspection{
		Category: category.Name,
		Header:   raw.Header,
		Rows:     len(raw.Rows),
		KeptRows: len(htmltable.FilterRows(raw).Rows),
	}
	applied, err := htmltable.ApplyRules(raw.Header, category.Rules)
	if err != nil {
		out.RuleError = err
		return out, nil
	}
	out.Applied = applied

	decorated := htmltable.RawTable{Header: applied}
	for _, col := range category.Columns {
		if decorated.Index(col.Source) < 0 {
			out.MissingColumns = append(out.MissingColumns, col.Source)
		}
	}
	return out, nil
}

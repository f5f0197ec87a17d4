// Package htmltable extracts statistic tables out of rendered html pages.
//
// The tables it targets have a grouping header row followed by the real
// header row, a leading rank column, and occasional separator rows that
// repeat the header or carry subtotals.
package htmltable

import (
	"context"
	"errors"
	"fmt"
	"footstats/lib/htmlutil"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("footstats.lib.htmltable")

// RawTable is a table as extracted, before any column is selected.
type RawTable struct {
	Header []string
	Rows   [][]string
}

// Index returns the position of the first header equal to `label`, or -1.
func (t RawTable) Index(label string) int {
	for i, h := range t.Header {
		if h == label {
			return i
		}
	}
	return -1
}

// Locator identifies a table either by its exact class attribute or by id.
// Exactly one of the two fields is expected to be set.
type Locator struct {
	Class string `json:"class,omitempty"`
	Id    string `json:"id,omitempty"`
}

func (l Locator) String() string {
	if l.Id != "" {
		return fmt.Sprintf("table#%s", l.Id)
	}
	return fmt.Sprintf("table[class=%q]", l.Class)
}

// find returns the first table matching the locator. the class attribute is
// compared as a whole string, so a locator only matches tables carrying
// exactly that set of classes in that order.
func (l Locator) find(doc *goquery.Document) *goquery.Selection {
	if l.Id != "" {
		return doc.Find("table").FilterFunction(func(_ int, s *goquery.Selection) bool {
			return s.AttrOr("id", "") == l.Id
		}).First()
	}
	return doc.Find("table").FilterFunction(func(_ int, s *goquery.Selection) bool {
		class, ok := s.Attr("class")
		return ok && class == l.Class
	}).First()
}

// ExtractionError is returned when a table cannot be located on a page.
type ExtractionError struct {
	Category string
	Locator  Locator
	Reason   string
}

const reasonNotFound = "no matching table"

// NotFound reports whether the locator matched nothing, as opposed to
// matching a table of the wrong shape.
func (e *ExtractionError) NotFound() bool {
	return e.Reason == reasonNotFound
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf(
		"extract category '%s': %s: %s",
		e.Category, e.Locator.String(), e.Reason,
	)
}

// Extract locates the table and returns its header (second row, rank column
// dropped, `rules` applied) and its data rows (rank cell dropped). Rows are
// not filtered, see FilterRows.
func Extract(ctx context.Context, doc *goquery.Document, category string, loc Locator, rules []HeaderRule) (RawTable, error) {
	ctx, span := tracer.Start(ctx, "Extract")
	defer span.End()
	span.SetAttributes(
		attribute.String("category", category),
		attribute.String("locator", loc.String()),
	)

	table := loc.find(doc)
	if table.Length() == 0 {
		err := &ExtractionError{Category: category, Locator: loc, Reason: reasonNotFound}
		span.RecordError(err)
		span.SetStatus(codes.Error, "table not found")
		return RawTable{}, err
	}

	rows := table.Find("tr")
	if rows.Length() < 2 {
		err := &ExtractionError{
			Category: category,
			Locator:  loc,
			Reason:   fmt.Sprintf("expected a header row, found %d rows", rows.Length()),
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "header row not found")
		return RawTable{}, err
	}

	var header []string
	rows.Eq(1).Find("th").Each(func(_ int, th *goquery.Selection) {
		header = append(header, strings.TrimSpace(htmlutil.SelectionText(th)))
	})
	if len(header) > 0 {
		header = header[1:]
	}

	header, err := ApplyRules(header, rules)
	if err != nil {
		var layoutErr *LayoutError
		if errors.As(err, &layoutErr) {
			layoutErr.Category = category
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "apply header rules")
		return RawTable{}, err
	}

	var body [][]string
	rows.Slice(2, goquery.ToEnd).Each(func(_ int, tr *goquery.Selection) {
		body = append(body, rowCells(tr))
	})

	span.SetAttributes(
		attribute.Int("header_length", len(header)),
		attribute.Int("row_count", len(body)),
	)
	slog.DebugContext(ctx, "extracted table",
		"category", category,
		"header", len(header),
		"rows", len(body),
	)

	return RawTable{Header: header, Rows: body}, nil
}

// rowCells returns the text of every th/td child of a row minus the leading
// rank cell. rows without any td only repeat the header and yield nil.
func rowCells(tr *goquery.Selection) []string {
	if tr.ChildrenFiltered("td").Length() == 0 {
		return nil
	}
	var cells []string
	tr.ChildrenFiltered("th, td").Each(func(_ int, cell *goquery.Selection) {
		cells = append(cells, strings.TrimSpace(htmlutil.SelectionText(cell)))
	})
	if len(cells) == 0 {
		return nil
	}
	return cells[1:]
}

// FilterRows keeps the rows whose cell count equals the header length.
func FilterRows(t RawTable) RawTable {
	kept := make([][]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		if len(row) == len(t.Header) {
			kept = append(kept, row)
		}
	}
	if dropped := len(t.Rows) - len(kept); dropped > 0 {
		slog.Debug("dropped ragged rows", "dropped", dropped, "kept", len(kept))
	}
	return RawTable{Header: t.Header, Rows: kept}
}

package transfervalue

import (
	"context"
	"footstats/lib/htmlutil"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var nonNumeric = regexp.MustCompile(`[^\d.]`)

// ParseValue converts a market value such as "€45.00m", "€800k" or
// "€1.20bn" into millions of euros.
func ParseValue(text string) (float64, bool) {
	digits := nonNumeric.ReplaceAllString(text, "")
	if digits == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return 0, false
	}
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "bn"):
		return value * 1000, true
	case strings.Contains(lower, "k"):
		return value / 1000, true
	}
	return value, true
}

// Entry is a player row of a market value listing.
type Entry struct {
	Name string
	// nil when the value cell does not parse
	Value *float64
}

// ParseEntries reads the rows of the `table.items` listing.
func ParseEntries(ctx context.Context, doc *goquery.Document) []Entry {
	_, span := tracer.Start(ctx, "ParseEntries")
	defer span.End()

	var out []Entry
	doc.Find("table.items").First().Find("tr.odd, tr.even").Each(func(_ int, row *goquery.Selection) {
		name := row.Find("td.hauptlink a").First()
		value := row.Find("td.rechts.hauptlink").First()
		if name.Length() == 0 || value.Length() == 0 {
			return
		}

		entry := Entry{Name: strings.TrimSpace(htmlutil.SelectionText(name))}
		if entry.Name == "" {
			return
		}
		parsed, ok := ParseValue(strings.TrimSpace(htmlutil.SelectionText(value)))
		if ok {
			entry.Value = &parsed
		}
		out = append(out, entry)
	})
	return out
}

package htmltable

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const statsClass = "min_width sortable stats_table shade_zero now_sortable sticky_table eq2 re2 le2"

// renderTable builds a table shaped like the stat pages: a grouping row, the
// header row, then the body. when rankAsTh is set, the first cell of every
// body row is a th like on the live pages.
func renderTable(attrs string, header []string, rows [][]string, rankAsTh bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<table %s><thead>", attrs)
	fmt.Fprintf(&b, `<tr class="over_header"><th colspan="%d">Group</th></tr>`, len(header))
	b.WriteString("<tr>")
	for _, h := range header {
		fmt.Fprintf(&b, "<th> %s </th>", h)
	}
	b.WriteString("</tr></thead><tbody>")
	for _, row := range rows {
		b.WriteString("<tr>")
		for i, cell := range row {
			if i == 0 && rankAsTh {
				fmt.Fprintf(&b, "<th>%s</th>", cell)
				continue
			}
			fmt.Fprintf(&b, "<td>%s</td>", cell)
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table>")
	return b.String()
}

func parse(t testing.TB, page string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

var standardHeader = []string{"Rk", "Player", "Nation", "Pos", "Squad", "Age", "MP", "Starts", "Min", "Gls", "Ast"}

func TestExtractStandardRow(t *testing.T) {
	page := renderTable(
		fmt.Sprintf(`class="%s"`, statsClass),
		standardHeader,
		[][]string{
			{"1", "J. Doe", "ENG", "FW", "Team A", "23-045", "10", "8", "950", "5", "3"},
		},
		false,
	)
	doc := parse(t, page)

	raw, err := Extract(context.Background(), doc, "standard", Locator{Class: statsClass}, nil)
	if err != nil {
		t.Fatal(err)
	}
	raw = FilterRows(raw)

	diff := cmp.Diff(
		RawTable{
			Header: standardHeader[1:],
			Rows: [][]string{
				{"J. Doe", "ENG", "FW", "Team A", "23-045", "10", "8", "950", "5", "3"},
			},
		},
		raw,
	)
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestExtractLocators(t *testing.T) {
	page := "<html><body>" +
		renderTable(`class="stats_table"`, []string{"Rk", "Player"}, [][]string{{"1", "decoy"}}, true) +
		renderTable(fmt.Sprintf(`class="%s"`, statsClass), []string{"Rk", "Player"}, [][]string{{"1", "by class"}}, true) +
		renderTable(`id="stats_defense" class="stats_table"`, []string{"Rk", "Player"}, [][]string{{"1", "by id"}}, true) +
		"</body></html>"
	doc := parse(t, page)

	testCases := []struct {
		locator Locator
		expect  string
	}{
		{locator: Locator{Class: statsClass}, expect: "by class"},
		{locator: Locator{Id: "stats_defense"}, expect: "by id"},
		{locator: Locator{Class: "stats_table"}, expect: "decoy"},
	}

	for _, test := range testCases {
		raw, err := Extract(context.Background(), doc, "test", test.locator, nil)
		if err != nil {
			t.Fatal(err)
		}
		require.Equal(t, []string{"Player"}, raw.Header)
		require.Equal(t, [][]string{{test.expect}}, raw.Rows)
	}
}

func TestExtractNotFound(t *testing.T) {
	doc := parse(t, renderTable(`class="stats_table sortable"`, standardHeader, nil, true))

	testCases := []Locator{
		{Class: statsClass},
		{Class: "stats_table"},
		{Id: "stats_keeper"},
	}
	for _, loc := range testCases {
		_, err := Extract(context.Background(), doc, "keepers", loc, nil)
		var extractErr *ExtractionError
		require.True(t, errors.As(err, &extractErr), "expected extraction error for %s", loc)
		require.Equal(t, "keepers", extractErr.Category)
		require.Equal(t, loc, extractErr.Locator)
		require.True(t, extractErr.NotFound())
		require.Contains(t, err.Error(), loc.String())
	}
}

func TestExtractNoHeaderRow(t *testing.T) {
	doc := parse(t, `<table id="stats_keeper"><tr><th>Only</th></tr></table>`)
	_, err := Extract(context.Background(), doc, "keepers", Locator{Id: "stats_keeper"}, nil)
	var extractErr *ExtractionError
	require.ErrorAs(t, err, &extractErr)
	require.False(t, extractErr.NotFound())
}

func TestFilterRows(t *testing.T) {
	header := []string{"Rk", "Player", "Squad", "Min"}
	page := renderTable(`id="stats_standard"`, header, [][]string{
		{"1", "A. Able", "Team A", "1,020"},
		// repeated header rows carry th cells only
		{"Rk", "Player", "Squad", "Min"},
		{"2", "B. Baker", "Team B", "87"},
		// subtotal row missing cells
		{"", "Squad Total", "2,000"},
		{"3", "C. Cole", "Team C", "400", "extra"},
	}, true)
	page = strings.Replace(
		page,
		"<tr><th>Rk</th><td>Player</td><td>Squad</td><td>Min</td></tr>",
		`<tr class="thead"><th>Rk</th><th>Player</th><th>Squad</th><th>Min</th></tr>`,
		1,
	)
	doc := parse(t, page)

	raw, err := Extract(context.Background(), doc, "standard", Locator{Id: "stats_standard"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, raw.Rows, 5)

	filtered := FilterRows(raw)
	for _, row := range filtered.Rows {
		require.Len(t, row, len(filtered.Header))
	}
	require.Equal(t, [][]string{
		{"A. Able", "Team A", "1,020"},
		{"B. Baker", "Team B", "87"},
	}, filtered.Rows)
}

func TestExtractAppliesRules(t *testing.T) {
	header := []string{"Rk"}
	for i := 0; i < 16; i++ {
		header = append(header, fmt.Sprintf("C%d", i))
	}
	header[15] = "Att"
	doc := parse(t, renderTable(`id="stats_possession"`, header, nil, true))

	raw, err := Extract(
		context.Background(), doc, "possession",
		Locator{Id: "stats_possession"},
		[]HeaderRule{Prefix(14, "Take-Ons_")},
	)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "Take-Ons_Att", raw.Header[14])
	require.Equal(t, -1, raw.Index("Att"))
	require.Equal(t, 14, raw.Index("Take-Ons_Att"))
}

func TestExtractRuleOutOfRange(t *testing.T) {
	doc := parse(t, renderTable(`id="stats_keeper"`, []string{"Rk", "Player", "Squad"}, nil, true))
	_, err := Extract(
		context.Background(), doc, "keepers",
		Locator{Id: "stats_keeper"},
		[]HeaderRule{Prefix(24, "Penalty_")},
	)
	var layoutErr *LayoutError
	require.ErrorAs(t, err, &layoutErr)
	require.Equal(t, "keepers", layoutErr.Category)
}

func TestApplyRules(t *testing.T) {
	header := []string{"Player", "Gls", "Ast", "xG", "Gls", "Ast", "xG", "Matches"}

	testCases := []struct {
		name     string
		rules    []HeaderRule
		expected []string
	}{
		{
			name:     "no rules",
			expected: header,
		},
		{
			name:     "rename",
			rules:    []HeaderRule{Rename(1, "Goals"), Rename(2, "Assists")},
			expected: []string{"Player", "Goals", "Assists", "xG", "Gls", "Ast", "xG", "Matches"},
		},
		{
			name:     "prefix",
			rules:    []HeaderRule{Prefix(3, "Expected_")},
			expected: []string{"Player", "Gls", "Ast", "Expected_xG", "Gls", "Ast", "xG", "Matches"},
		},
		{
			name:     "suffix range excludes its end",
			rules:    []HeaderRule{SuffixRange(4, 7, "/90")},
			expected: []string{"Player", "Gls", "Ast", "xG", "Gls/90", "Ast/90", "xG/90", "Matches"},
		},
		{
			name: "stacked in order",
			rules: []HeaderRule{
				Rename(1, "Goals"),
				SuffixRange(1, 2, "/Total"),
				Prefix(1, "All_"),
				SuffixRange(4, 7, "/90"),
			},
			expected: []string{"Player", "All_Goals/Total", "Ast", "xG", "Gls/90", "Ast/90", "xG/90", "Matches"},
		},
		{
			name:     "range up to the last column",
			rules:    []HeaderRule{SuffixRange(6, 8, "!")},
			expected: []string{"Player", "Gls", "Ast", "xG", "Gls", "Ast", "xG!", "Matches!"},
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			out, err := ApplyRules(header, test.rules)
			if err != nil {
				t.Fatal(err)
			}
			diff := cmp.Diff(test.expected, out)
			if diff != "" {
				t.Fatal(diff)
			}
		})
	}

	require.Equal(t, "Gls", header[1])

	_, err := ApplyRules(header, []HeaderRule{SuffixRange(6, 9, "/90")})
	var layoutErr *LayoutError
	require.ErrorAs(t, err, &layoutErr)
}

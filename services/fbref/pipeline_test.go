package fbref

import (
	"context"
	"errors"
	"fmt"
	"footstats/lib/dataset"
	"footstats/lib/htmltable"
	"footstats/lib/testutil"
	"footstats/services/fbref/layout"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// page renders a stats table the way the category pages do: a grouping row,
// the header row and rows whose first cell is a th rank cell.
func page(attrs string, header []string, rows [][]string) string {
	var b strings.Builder
	b.WriteString("<html><body><div class=\"table_container\">")
	fmt.Fprintf(&b, "<table %s><thead>", attrs)
	fmt.Fprintf(&b, `<tr class="over_header"><th colspan="%d"></th></tr><tr>`, len(header))
	for _, h := range header {
		fmt.Fprintf(&b, "<th>%s</th>", h)
	}
	b.WriteString("</tr></thead><tbody>")
	for _, row := range rows {
		b.WriteString("<tr>")
		for i, cell := range row {
			if i == 0 {
				fmt.Fprintf(&b, "<th>%s</th>", cell)
				continue
			}
			fmt.Fprintf(&b, "<td>%s</td>", cell)
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table></div></body></html>")
	return b.String()
}

const standardClass = "min_width sortable stats_table shade_zero now_sortable sticky_table eq2 re2 le2"

// possessionHeader puts "Att" at position 14 once the rank column is dropped.
func possessionHeader() []string {
	header := []string{"Rk", "Player", "Squad"}
	for len(header) < 15 {
		header = append(header, fmt.Sprintf("X%d", len(header)))
	}
	return append(header, "Att")
}

func possessionRow(rank, player, squad, att string) []string {
	row := []string{rank, player, squad}
	for len(row) < 15 {
		row = append(row, "0")
	}
	return append(row, att)
}

func testLayout() layout.Layout {
	return layout.Layout{
		Version:       "test",
		MinutesColumn: "Minutes",
		MinMinutes:    90,
		Renames:       map[string]string{"Pos": "Position", "Squad": "Team"},
		Categories: []layout.Category{
			{
				Name:    "standard",
				Url:     "https://example.com/standard",
				Locator: htmltable.Locator{Class: standardClass},
				Columns: []dataset.Column{
					{Source: "Player"},
					{Source: "Nation"},
					{Source: "Pos"},
					{Source: "Squad"},
					{Source: "Age", Kind: dataset.KindNumber, Transform: "age_years"},
					{Source: "MP", Name: "Match Played", Kind: dataset.KindNumber},
					{Source: "Min", Name: "Minutes", Kind: dataset.KindNumber},
					{Source: "Gls", Kind: dataset.KindNumber},
				},
			},
			{
				Name:    "defense",
				Url:     "https://example.com/defense",
				Locator: htmltable.Locator{Id: "stats_defense"},
				Columns: []dataset.Column{
					{Source: "Player"},
					{Source: "Squad"},
					{Source: "Tkl", Kind: dataset.KindNumber},
				},
			},
			{
				Name:    "possession",
				Url:     "https://example.com/possession",
				Locator: htmltable.Locator{Id: "stats_possession"},
				Rules:   []htmltable.HeaderRule{htmltable.Prefix(14, "Take-Ons_")},
				Columns: []dataset.Column{
					{Source: "Player"},
					{Source: "Squad"},
					{Source: "Take-Ons_Att", Kind: dataset.KindNumber},
				},
			},
		},
	}
}

func testPages() map[string]string {
	standardHeader := []string{"Rk", "Player", "Nation", "Pos", "Squad", "Age", "MP", "Starts", "Min", "Gls", "Ast"}
	return map[string]string{
		"standard.html": page(
			fmt.Sprintf(`class="%s"`, standardClass),
			standardHeader,
			[][]string{
				{"1", "J. Doe", "ENG", "FW", "Team A", "23-045", "10", "8", "950", "5", "3"},
				{"2", "A. Bench", "FRA", "DF", "Team B", "19-100", "2", "0", "80", "0", "0"},
				{"3", "Z. Iron", "", "GK", "Team B", "31-002", "12", "12", "1,080", "", "0"},
				{"4", "K. Moved", "ESP", "MF", "Team A", "27-200", "5", "5", "400", "1", "1"},
				{"5", "K. Moved", "ESP", "MF", "Team C", "27-200", "6", "6", "500", "0", "2"},
				// subtotal rows are ragged
				{"", "Squad Total", "22"},
			},
		),
		"defense.html": page(
			`id="stats_defense" class="stats_table"`,
			[]string{"Rk", "Player", "Squad", "Tkl"},
			[][]string{
				{"1", "Z. Iron", "Team B", "1"},
				{"2", "K. Moved", "Team C", "7"},
				{"3", "R. Roe", "Team D", "9"},
			},
		),
		"possession.html": page(
			`id="stats_possession"`,
			possessionHeader(),
			[][]string{
				possessionRow("1", "K. Moved", "Team A", "4"),
				possessionRow("2", "Z. Iron", "Team B", "0"),
			},
		),
	}
}

func TestBuild(t *testing.T) {
	_, cleanup := testutil.SetupService(t, testutil.ServiceParams{Name: "fbref"})
	defer cleanup()

	pages := testPages()
	// the possession table is hidden in a comment like on the live site
	pages["possession.html"] = strings.Replace(
		pages["possession.html"],
		"<table",
		"<!--\n<table",
		1,
	)
	pages["possession.html"] = strings.Replace(pages["possession.html"], "</table>", "</table>\n-->", 1)
	dir := testutil.WriteFiles(t, pages)

	table, err := Build(context.Background(), testLayout(), DirRenderer{Dir: dir})
	if err != nil {
		t.Fatal(err)
	}

	require.Equal(t, []string{
		"Player", "Nation", "Position", "Team", "Age", "Match Played", "Minutes", "Gls",
		"Tkl", "Take-Ons_Att",
	}, table.Columns())

	diff := cmp.Diff(
		[][]string{
			{"J. Doe", "ENG", "FW", "Team A", "23", "10", "950", "5", "N/a", "N/a"},
			{"K. Moved", "ESP", "MF", "Team A", "27", "5", "400", "1", "N/a", "4"},
			{"K. Moved", "ESP", "MF", "Team C", "27", "6", "500", "0", "7", "N/a"},
			{"Z. Iron", "N/a", "GK", "Team B", "31", "12", "1080", "N/a", "1", "0"},
		},
		table.Records(),
	)
	if diff != "" {
		t.Fatal(diff)
	}

	minutes, err := table.Column("Minutes")
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range minutes {
		v, ok := dataset.ParseNumber(c)
		require.True(t, ok)
		require.Greater(t, v, float64(90))
	}
	players, err := table.Column("Player")
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(players); i++ {
		require.LessOrEqual(t, players[i-1].Text, players[i].Text)
	}
}

func TestStepNoMatch(t *testing.T) {
	dir := testutil.WriteFiles(t, testPages())
	renderer := DirRenderer{Dir: dir}
	l := testLayout()

	acc, err := Step(context.Background(), dataset.Table{}, l.Categories[0], renderer)
	if err != nil {
		t.Fatal(err)
	}
	merged, err := Step(context.Background(), acc, l.Categories[1], renderer)
	if err != nil {
		t.Fatal(err)
	}

	require.Equal(t, acc.Len(), merged.Len())
	for i := 0; i < merged.Len(); i++ {
		if merged.Get(i, "Player").Text == "J. Doe" {
			require.Equal(t, dataset.NA, merged.Get(i, "Tkl"))
		}
	}
	// R. Roe only plays in the incoming table
	for _, record := range merged.Records() {
		require.NotEqual(t, "R. Roe", record[0])
	}
}

func TestBuildExtractionError(t *testing.T) {
	pages := testPages()
	pages["defense.html"] = strings.ReplaceAll(pages["defense.html"], "stats_defense", "stats_defence")
	dir := testutil.WriteFiles(t, pages)

	_, err := Build(context.Background(), testLayout(), DirRenderer{Dir: dir})
	var extractErr *htmltable.ExtractionError
	require.ErrorAs(t, err, &extractErr)
	require.Equal(t, "defense", extractErr.Category)
	require.Contains(t, err.Error(), "stats_defense")
}

func TestBuildMissingColumn(t *testing.T) {
	l := testLayout()
	// the prefix now lands on the wrong column
	l.Categories[2].Rules = []htmltable.HeaderRule{htmltable.Prefix(13, "Take-Ons_")}
	dir := testutil.WriteFiles(t, testPages())

	_, err := Build(context.Background(), l, DirRenderer{Dir: dir})
	var missing *dataset.MissingColumnError
	require.ErrorAs(t, err, &missing)
	require.Equal(t, "possession", missing.Category)
	require.Equal(t, "Take-Ons_Att", missing.Column)
	require.Contains(t, err.Error(), "table#stats_possession")
}

func TestBuildRenderError(t *testing.T) {
	pages := testPages()
	delete(pages, "possession.html")
	dir := testutil.WriteFiles(t, pages)

	_, err := Build(context.Background(), testLayout(), DirRenderer{Dir: dir})
	require.ErrorIs(t, err, os.ErrNotExist)
	require.Contains(t, err.Error(), "possession")
}

func TestPostProcess(t *testing.T) {
	merged, err := dataset.New(
		[]string{"Player", "Pos", "Squad", "Minutes", "Gls"},
		[][]dataset.Cell{
			{dataset.Value("b"), dataset.Value("FW"), dataset.Value("X"), dataset.Value("91"), dataset.Value("1")},
			{dataset.Value("B"), dataset.Value(""), dataset.Value("X"), dataset.Value("2,000"), dataset.Value("x")},
			{dataset.Value("a"), dataset.Value("DF"), dataset.Value("X"), dataset.Value("90"), dataset.Value("0")},
			{dataset.Value("c"), dataset.Value("DF"), dataset.Value("X"), dataset.Value("n/a"), dataset.Value("0")},
			{dataset.Value("b"), dataset.Value("MF"), dataset.Value("Y"), dataset.Value("95.5"), dataset.NA},
		},
	)
	if err != nil {
		t.Fatal(err)
	}
	out, err := PostProcess(context.Background(), merged, testLayout())
	if err != nil {
		t.Fatal(err)
	}

	require.Equal(t, []string{"Player", "Position", "Team", "Minutes", "Gls"}, out.Columns())
	require.Equal(t, [][]string{
		{"B", "N/a", "X", "2000", "N/a"},
		{"b", "FW", "X", "91", "1"},
		{"b", "MF", "Y", "95.5", "N/a"},
	}, out.Records())
}

func TestPostProcessMissingMinutes(t *testing.T) {
	merged, err := dataset.Strings([]string{"Player", "Squad"}, [][]string{{"a", "X"}})
	if err != nil {
		t.Fatal(err)
	}
	_, err = PostProcess(context.Background(), merged, testLayout())
	var missing *dataset.MissingColumnError
	require.True(t, errors.As(err, &missing))
}

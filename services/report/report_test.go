package report

import (
	"bytes"
	"context"
	"footstats/lib/dataset"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

func testInput(t testing.TB) Input {
	table, err := dataset.New(
		[]string{"Player", "Nation", "Team", "Age", "Goals", "Save%"},
		[][]dataset.Cell{
			{dataset.Value("A"), dataset.Value("ENG"), dataset.Value("Red"), dataset.Value("20"), dataset.Value("4"), dataset.NA},
			{dataset.Value("B"), dataset.Value("FRA"), dataset.Value("Red"), dataset.Value("21"), dataset.Value("2"), dataset.NA},
			{dataset.Value("C"), dataset.Value("ESP"), dataset.Value("Blue"), dataset.Value("22"), dataset.Value("6"), dataset.Value("70.5")},
			{dataset.Value("D"), dataset.NA, dataset.Value("Blue"), dataset.Value("23"), dataset.NA, dataset.NA},
			{dataset.Value("E"), dataset.Value("GER"), dataset.Value("Blue"), dataset.Value("24"), dataset.Value("0"), dataset.NA},
		},
	)
	if err != nil {
		t.Fatal(err)
	}
	in, err := Prepare(table, DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	return in
}

func TestPrepare(t *testing.T) {
	in := testInput(t)
	require.Equal(t, []string{"Goals", "Save%"}, in.Fields)
	require.Equal(t, []string{"Blue", "Red"}, in.TeamNames())
	require.True(t, math.IsNaN(in.Values["Goals"][3]))

	_, err := Prepare(dataset.Table{}, DefaultParams())
	require.Error(t, err)
}

func TestExtremes(t *testing.T) {
	in := testInput(t)
	top, bottom := in.Extremes("Goals", 3)
	require.Equal(t, []Performer{
		{Player: "C", Team: "Blue", Value: 6},
		{Player: "A", Team: "Red", Value: 4},
		{Player: "B", Team: "Red", Value: 2},
	}, top)
	require.Equal(t, []Performer{
		{Player: "E", Team: "Blue", Value: 0},
		{Player: "B", Team: "Red", Value: 2},
		{Player: "A", Team: "Red", Value: 4},
	}, bottom)

	top, bottom = in.Extremes("Save%", 3)
	require.Len(t, top, 1)
	require.Len(t, bottom, 1)
}

func TestSummarize(t *testing.T) {
	testCases := []struct {
		name     string
		values   []float64
		expected Summary
	}{
		{
			name:     "odd",
			values:   []float64{3, 1, 2},
			expected: Summary{Median: 2, Mean: 2, Std: 1},
		},
		{
			name:     "even with missing",
			values:   []float64{4, math.NaN(), 2},
			expected: Summary{Median: 3, Mean: 3, Std: math.Sqrt2},
		},
		{
			name:     "single",
			values:   []float64{5},
			expected: Summary{Median: 5, Mean: 5, Std: math.NaN()},
		},
		{
			name:     "empty",
			values:   []float64{math.NaN()},
			expected: Summary{Median: math.NaN(), Mean: math.NaN(), Std: math.NaN()},
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			diff := cmp.Diff(test.expected, Summarize(test.values), cmpopts.EquateNaNs(), cmpopts.EquateApprox(0, 1e-9))
			if diff != "" {
				t.Fatal(diff)
			}
		})
	}
}

func TestStatistics(t *testing.T) {
	in := testInput(t)
	stats, err := in.Statistics(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, []string{
		"Index", "Team",
		"Median of Goals", "Mean of Goals", "Std of Goals",
		"Median of Save%", "Mean of Save%", "Std of Save%",
	}, stats.Columns())
	expected := [][]string{
		{"0", "All", "3", "3", "2.5819888974716", "70.5", "70.5", "N/a"},
		{"1", "Blue", "3", "3", "4.2426406871193", "70.5", "70.5", "N/a"},
		{"2", "Red", "3", "3", "1.4142135623731", "N/a", "N/a", "N/a"},
	}
	records := stats.Records()
	require.Len(t, records, len(expected))
	for i := range expected {
		for j := range expected[i] {
			want, wantErr := strconv.ParseFloat(expected[i][j], 64)
			got, gotErr := strconv.ParseFloat(records[i][j], 64)
			if wantErr != nil || gotErr != nil {
				require.Equal(t, expected[i][j], records[i][j])
				continue
			}
			require.InDelta(t, want, got, 1e-9)
		}
	}
}

func TestLeaders(t *testing.T) {
	in := testInput(t)
	require.Equal(t, []Leader{
		{Field: "Save%", Team: "Blue", Mean: 70.5},
	}, in.Leaders()[1:])

	// both teams average 3 goals, the first by name leads
	require.Equal(t, Leader{Field: "Goals", Team: "Blue", Mean: 3}, in.Leaders()[0])

	zero := Input{
		Players: []string{"A"},
		Teams:   []string{"Red"},
		Fields:  []string{"Own Goals"},
		Values:  map[string][]float64{"Own Goals": {0}},
	}
	require.Empty(t, zero.Leaders())
}

func TestWrite(t *testing.T) {
	in := testInput(t)
	dir := filepath.Join(t.TempDir(), "report")
	err := Write(context.Background(), dir, in)
	if err != nil {
		t.Fatal(err)
	}

	top, err := os.ReadFile(filepath.Join(dir, TopFile))
	if err != nil {
		t.Fatal(err)
	}
	require.True(t, strings.HasPrefix(string(top),
		"Metric: Goals\nTop Performers:\n 1. C (Blue): 6\n 2. A (Red): 4\n 3. B (Red): 2\nLowest Performers:\n 1. E (Blue): 0\n",
	))

	stats, err := dataset.ReadCSVFile(filepath.Join(dir, StatisticsFile))
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, 3, stats.Len())

	leaders, err := os.ReadFile(filepath.Join(dir, LeadersFile))
	if err != nil {
		t.Fatal(err)
	}
	require.Contains(t, string(leaders), "Metric: Save%, Leading Team: Blue, Average: 70.50")
}

func TestWriteLeadersEmpty(t *testing.T) {
	var b bytes.Buffer
	err := WriteLeaders(&b, nil)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "Teams with Highest Average Performance by Metric\n"+strings.Repeat("=", 50)+"\n\n", b.String())
}

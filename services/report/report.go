// Package report summarizes a scraped dataset: per metric extremes, per
// team statistics and the team leading each metric.
package report

import (
	"context"
	"fmt"
	"footstats/lib/dataset"
	"log/slog"
	"math"
	"slices"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var tracer = otel.Tracer("footstats.services.report")

// AllTeams names the summary row computed over every player.
const AllTeams = "All"

type Params struct {
	PlayerColumn string
	TeamColumn   string
	// columns removed before numeric fields are detected
	Drop []string
}

func DefaultParams() Params {
	return Params{
		PlayerColumn: "Player",
		TeamColumn:   "Team",
		Drop:         []string{"Age"},
	}
}

// Input is a dataset prepared for the report.
type Input struct {
	Players []string
	Teams   []string
	// numeric fields in column order
	Fields []string
	// Values[field][i] is NaN when the cell is missing
	Values map[string][]float64
}

func Prepare(t dataset.Table, params Params) (Input, error) {
	for _, c := range []string{params.PlayerColumn, params.TeamColumn} {
		if t.Index(c) < 0 {
			return Input{}, fmt.Errorf("input has no column '%s'", c)
		}
	}
	t = t.Drop(params.Drop...)

	in := Input{
		Players: make([]string, t.Len()),
		Teams:   make([]string, t.Len()),
		Fields:  dataset.NumericColumns(t, params.PlayerColumn, params.TeamColumn),
		Values:  map[string][]float64{},
	}
	for i := 0; i < t.Len(); i++ {
		in.Players[i] = t.Get(i, params.PlayerColumn).Text
		in.Teams[i] = t.Get(i, params.TeamColumn).Text
	}
	for _, field := range in.Fields {
		values := make([]float64, t.Len())
		for i := range values {
			v, ok := dataset.ParseNumber(t.Get(i, field))
			if !ok {
				v = math.NaN()
			}
			values[i] = v
		}
		in.Values[field] = values
	}
	return in, nil
}

// Performer is one player's value of a metric.
type Performer struct {
	Player string
	Team   string
	Value  float64
}

// Extremes returns the `n` highest and `n` lowest players of `field`,
// ignoring missing values. Ties keep the dataset order.
func (in Input) Extremes(field string, n int) (top, bottom []Performer) {
	var present []Performer
	for i, v := range in.Values[field] {
		if math.IsNaN(v) {
			continue
		}
		present = append(present, Performer{
			Player: in.Players[i],
			Team:   in.Teams[i],
			Value:  v,
		})
	}

	top = slices.Clone(present)
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].Value > top[j].Value
	})
	bottom = slices.Clone(present)
	sort.SliceStable(bottom, func(i, j int) bool {
		return bottom[i].Value < bottom[j].Value
	})
	return top[:min(n, len(top))], bottom[:min(n, len(bottom))]
}

// Summary holds the median, mean and sample standard deviation of a
// metric, NaN when undefined.
type Summary struct {
	Median float64
	Mean   float64
	Std    float64
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// Summarize ignores NaN values.
func Summarize(values []float64) Summary {
	var present []float64
	for _, v := range values {
		if !math.IsNaN(v) {
			present = append(present, v)
		}
	}
	if len(present) == 0 {
		return Summary{Median: math.NaN(), Mean: math.NaN(), Std: math.NaN()}
	}
	sort.Float64s(present)
	s := Summary{
		Median: median(present),
		Mean:   stat.Mean(present, nil),
		Std:    math.NaN(),
	}
	if len(present) > 1 {
		s.Std = stat.StdDev(present, nil)
	}
	return s
}

// TeamNames returns the distinct teams, sorted.
func (in Input) TeamNames() []string {
	var out []string
	for _, t := range in.Teams {
		if !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}

func (in Input) teamValues(field, team string) []float64 {
	var out []float64
	for i, v := range in.Values[field] {
		if in.Teams[i] == team {
			out = append(out, v)
		}
	}
	return out
}

// Statistics returns an AllTeams row computed over every player followed by
// one row per team, with a median, mean and std column per field.
func (in Input) Statistics(ctx context.Context) (dataset.Table, error) {
	_, span := tracer.Start(ctx, "Statistics")
	defer span.End()

	teams := in.TeamNames()
	span.SetAttributes(
		attribute.Int("fields", len(in.Fields)),
		attribute.Int("teams", len(teams)),
	)

	columns := []string{"Index", "Team"}
	for _, field := range in.Fields {
		columns = append(columns,
			fmt.Sprintf("Median of %s", field),
			fmt.Sprintf("Mean of %s", field),
			fmt.Sprintf("Std of %s", field),
		)
	}

	groups := append([]string{AllTeams}, teams...)
	rows := make([][]dataset.Cell, len(groups))
	for i, group := range groups {
		row := []dataset.Cell{
			dataset.Value(fmt.Sprint(i)),
			dataset.Value(group),
		}
		for _, field := range in.Fields {
			values := in.Values[field]
			if group != AllTeams {
				values = in.teamValues(field, group)
			}
			s := Summarize(values)
			row = append(row, numberCell(s.Median), numberCell(s.Mean), numberCell(s.Std))
		}
		rows[i] = row
	}
	return dataset.New(columns, rows)
}

func numberCell(v float64) dataset.Cell {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return dataset.NA
	}
	return dataset.Value(dataset.FormatNumber(v))
}

// Leader is the team with the highest mean of a metric.
type Leader struct {
	Field string
	Team  string
	Mean  float64
}

// Leaders returns the leading team of every field. Fields whose best mean
// is 0 or undefined have no leader. Ties go to the first team by name.
func (in Input) Leaders() []Leader {
	teams := in.TeamNames()
	var out []Leader
	for _, field := range in.Fields {
		means := make([]float64, len(teams))
		for i, team := range teams {
			means[i] = Summarize(in.teamValues(field, team)).Mean
		}

		best := -1
		for i, m := range means {
			if math.IsNaN(m) {
				continue
			}
			if best < 0 || m > means[best] {
				best = i
			}
		}
		if best < 0 || means[best] == 0 {
			slog.Debug("no leading team", "field", field)
			continue
		}
		out = append(out, Leader{Field: field, Team: teams[best], Mean: means[best]})
	}
	return out
}

// Spread is the range of a metric over every player, used when listing
// fields.
func (in Input) Spread(field string) (lo, hi float64) {
	var present []float64
	for _, v := range in.Values[field] {
		if !math.IsNaN(v) {
			present = append(present, v)
		}
	}
	if len(present) == 0 {
		return math.NaN(), math.NaN()
	}
	return floats.Min(present), floats.Max(present)
}

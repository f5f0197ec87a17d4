// Package cluster groups players by their statistics with k-means and
// projects them on their first two principal components.
package cluster

import (
	"context"
	"errors"
	"fmt"
	"footstats/lib/dataset"
	"log/slog"
	"math"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var tracer = otel.Tracer("footstats.services.cluster")

type Params struct {
	PlayerColumn string
	TeamColumn   string
	// identifier and goalkeeper columns left out of the features
	Exclude []string
	// largest cluster count tried when picking k
	MaxClusters int
	// 0 picks k at the elbow of the wcss curve
	K      int
	KMeans KMeansOptions
}

func DefaultParams() Params {
	return Params{
		PlayerColumn: "Player",
		TeamColumn:   "Team",
		Exclude: []string{
			"Player", "Nation", "Position", "Team",
			"GA90", "Save%", "CS%", "Penalty_Save%",
		},
		MaxClusters: 10,
		KMeans: KMeansOptions{
			MaxIter: 400,
			Inits:   20,
			Seed:    42,
		},
	}
}

// Features is the standardized feature matrix of a dataset.
type Features struct {
	Players []string
	Teams   []string
	Columns []string
	Data    *mat.Dense
}

// Prepare selects the numeric columns outside of params.Exclude, fills
// missing cells with the column mean and standardizes every column to zero
// mean and unit variance.
func Prepare(t dataset.Table, params Params) (Features, error) {
	for _, c := range []string{params.PlayerColumn, params.TeamColumn} {
		if t.Index(c) < 0 {
			return Features{}, fmt.Errorf("input has no column '%s'", c)
		}
	}
	if t.Len() == 0 {
		return Features{}, errors.New("input has no rows")
	}

	columns := dataset.NumericColumns(t, params.Exclude...)
	if len(columns) == 0 {
		return Features{}, errors.New("input has no numeric columns")
	}
	if skipped := len(t.Columns()) - len(columns); skipped > 0 {
		slog.Debug("columns left out of the features", "count", skipped)
	}

	n := t.Len()
	f := Features{
		Players: make([]string, n),
		Teams:   make([]string, n),
		Columns: columns,
		Data:    mat.NewDense(n, len(columns), nil),
	}
	for i := 0; i < n; i++ {
		f.Players[i] = t.Get(i, params.PlayerColumn).Text
		f.Teams[i] = t.Get(i, params.TeamColumn).Text
	}

	for j, name := range columns {
		col := make([]float64, n)
		var present []float64
		for i := range col {
			v, ok := dataset.ParseNumber(t.Get(i, name))
			if !ok {
				v = math.NaN()
			} else {
				present = append(present, v)
			}
			col[i] = v
		}

		fill := stat.Mean(present, nil)
		for i, v := range col {
			if math.IsNaN(v) {
				col[i] = fill
			}
		}

		mean, std := stat.PopMeanStdDev(col, nil)
		for i, v := range col {
			if std > 0 {
				col[i] = (v - mean) / std
			} else {
				col[i] = v - mean
			}
		}
		f.Data.SetCol(j, col)
	}
	return f, nil
}

// WCSS returns the inertia of k-means for k = 1..maxClusters.
func WCSS(data *mat.Dense, maxClusters int, opts KMeansOptions) []float64 {
	n, _ := data.Dims()
	maxClusters = min(maxClusters, n)
	out := make([]float64, maxClusters)
	for k := 1; k <= maxClusters; k++ {
		out[k-1] = KMeans(data, k, opts).Inertia
	}
	return out
}

// Project returns the coordinates of every row on the first `components`
// principal components. Missing components are left at 0.
func Project(data *mat.Dense, components int) (*mat.Dense, error) {
	n, d := data.Dims()
	out := mat.NewDense(n, components, nil)
	if n < 2 {
		return out, nil
	}

	var pc stat.PC
	ok := pc.PrincipalComponents(data, nil)
	if !ok {
		return nil, errors.New("principal component analysis failed")
	}
	var vectors mat.Dense
	pc.VectorsTo(&vectors)
	_, available := vectors.Dims()
	keep := min(components, available, d)

	centered := mat.DenseCopyOf(data)
	for j := 0; j < d; j++ {
		mean := stat.Mean(mat.Col(nil, j, data), nil)
		for i := 0; i < n; i++ {
			centered.Set(i, j, centered.At(i, j)-mean)
		}
	}

	var projected mat.Dense
	projected.Mul(centered, vectors.Slice(0, d, 0, keep))
	for j := 0; j < keep; j++ {
		out.SetCol(j, mat.Col(nil, j, &projected))
	}
	return out, nil
}

// Result is the outcome of a clustering run.
type Result struct {
	WCSS []float64
	// the cluster count used
	K          int
	Silhouette float64
	// Player, Team, Cluster, PC1, PC2
	Table dataset.Table
}

func Run(ctx context.Context, t dataset.Table, params Params) (Result, error) {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()

	fail := func(err error) (Result, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Result{}, err
	}

	features, err := Prepare(t, params)
	if err != nil {
		return fail(err)
	}

	result := Result{
		WCSS: WCSS(features.Data, params.MaxClusters, params.KMeans),
		K:    params.K,
	}
	if result.K <= 0 {
		result.K = Elbow(result.WCSS)
	}
	span.SetAttributes(
		attribute.Int("players", len(features.Players)),
		attribute.Int("features", len(features.Columns)),
		attribute.Int("k", result.K),
	)

	clusters := KMeans(features.Data, result.K, params.KMeans)
	result.Silhouette = Silhouette(features.Data, clusters.Labels)

	projected, err := Project(features.Data, 2)
	if err != nil {
		return fail(err)
	}

	rows := make([][]dataset.Cell, len(features.Players))
	for i := range rows {
		rows[i] = []dataset.Cell{
			dataset.Value(features.Players[i]),
			dataset.Value(features.Teams[i]),
			dataset.Value(strconv.Itoa(clusters.Labels[i])),
			dataset.Value(dataset.FormatNumber(projected.At(i, 0))),
			dataset.Value(dataset.FormatNumber(projected.At(i, 1))),
		}
	}
	result.Table, err = dataset.New([]string{"Player", "Team", "Cluster", "PC1", "PC2"}, rows)
	if err != nil {
		return fail(err)
	}

	slog.InfoContext(ctx, "clustered players",
		"k", result.K,
		"silhouette", result.Silhouette,
	)
	return result, nil
}

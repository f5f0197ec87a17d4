package cluster

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// KMeansOptions configures a k-means run.
type KMeansOptions struct {
	MaxIter int
	// number of seeded restarts, the one with the lowest inertia is kept
	Inits int
	Seed  int64
}

type KMeansResult struct {
	Labels    []int
	Centroids *mat.Dense
	// sum of squared distances of every point to its centroid
	Inertia float64
}

func squaredDistance(a, b []float64) float64 {
	d := floats.Distance(a, b, 2)
	return d * d
}

// seedCentroids picks k rows with k-means++: the first uniformly, the next
// ones with a probability proportional to their squared distance to the
// closest centroid already picked.
func seedCentroids(data *mat.Dense, k int, rng *rand.Rand) *mat.Dense {
	n, d := data.Dims()
	centroids := mat.NewDense(k, d, nil)
	centroids.SetRow(0, data.RawRowView(rng.Intn(n)))

	closest := make([]float64, n)
	for i := range closest {
		closest[i] = squaredDistance(data.RawRowView(i), centroids.RawRowView(0))
	}

	for c := 1; c < k; c++ {
		total := floats.Sum(closest)
		pick := n - 1
		if total > 0 {
			target := rng.Float64() * total
			for i, w := range closest {
				target -= w
				if target < 0 {
					pick = i
					break
				}
			}
		} else {
			pick = rng.Intn(n)
		}
		centroids.SetRow(c, data.RawRowView(pick))

		for i := range closest {
			dist := squaredDistance(data.RawRowView(i), centroids.RawRowView(c))
			if dist < closest[i] {
				closest[i] = dist
			}
		}
	}
	return centroids
}

func assign(data, centroids *mat.Dense, labels []int) (changed bool, inertia float64) {
	n, _ := data.Dims()
	k, _ := centroids.Dims()
	for i := 0; i < n; i++ {
		row := data.RawRowView(i)
		best := 0
		bestDist := math.Inf(1)
		for c := 0; c < k; c++ {
			dist := squaredDistance(row, centroids.RawRowView(c))
			if dist < bestDist {
				best = c
				bestDist = dist
			}
		}
		if labels[i] != best {
			labels[i] = best
			changed = true
		}
		inertia += bestDist
	}
	return changed, inertia
}

// recenter moves every centroid to the mean of its points, a centroid
// without points stays where it is.
func recenter(data, centroids *mat.Dense, labels []int) {
	k, d := centroids.Dims()
	sums := mat.NewDense(k, d, nil)
	counts := make([]float64, k)
	for i, label := range labels {
		floats.Add(sums.RawRowView(label), data.RawRowView(i))
		counts[label]++
	}
	for c := 0; c < k; c++ {
		if counts[c] == 0 {
			continue
		}
		row := sums.RawRowView(c)
		floats.Scale(1/counts[c], row)
		centroids.SetRow(c, row)
	}
}

func lloyd(data *mat.Dense, k int, opts KMeansOptions, rng *rand.Rand) KMeansResult {
	n, _ := data.Dims()
	centroids := seedCentroids(data, k, rng)
	labels := make([]int, n)
	for i := range labels {
		labels[i] = -1
	}

	for iter := 0; iter < opts.MaxIter; iter++ {
		changed, _ := assign(data, centroids, labels)
		if !changed {
			break
		}
		recenter(data, centroids, labels)
	}
	_, inertia := assign(data, centroids, labels)
	return KMeansResult{Labels: labels, Centroids: centroids, Inertia: inertia}
}

// KMeans clusters the rows of `data` into k groups. Runs are deterministic
// for a given seed.
func KMeans(data *mat.Dense, k int, opts KMeansOptions) KMeansResult {
	n, _ := data.Dims()
	if k > n {
		k = n
	}
	inits := max(opts.Inits, 1)
	rng := rand.New(rand.NewSource(opts.Seed))

	var best KMeansResult
	for i := 0; i < inits; i++ {
		result := lloyd(data, k, opts, rng)
		if i == 0 || result.Inertia < best.Inertia {
			best = result
		}
	}
	return best
}

// Elbow returns the cluster count (1-based index into wcss) furthest from
// the chord joining the first and last points of the curve. Ties go to the
// smaller count.
func Elbow(wcss []float64) int {
	n := len(wcss)
	if n <= 2 {
		return n
	}
	x1, y1 := 1.0, wcss[0]
	x2, y2 := float64(n), wcss[n-1]
	norm := math.Hypot(y2-y1, x2-x1)

	best := 1
	bestDist := -1.0
	for i, y := range wcss {
		x := float64(i + 1)
		dist := math.Abs((y2-y1)*x-(x2-x1)*y+x2*y1-y2*x1) / norm
		if dist > bestDist {
			best = i + 1
			bestDist = dist
		}
	}
	return best
}

// Silhouette returns the mean silhouette coefficient of a labelling, NaN
// when there are fewer than two clusters or as many clusters as points.
// Points alone in their cluster score 0.
func Silhouette(data *mat.Dense, labels []int) float64 {
	n, _ := data.Dims()
	clusters := map[int]int{}
	for _, l := range labels {
		clusters[l]++
	}
	if len(clusters) < 2 || len(clusters) >= n {
		return math.NaN()
	}

	var total float64
	for i := 0; i < n; i++ {
		if clusters[labels[i]] == 1 {
			continue
		}
		sums := map[int]float64{}
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			sums[labels[j]] += floats.Distance(data.RawRowView(i), data.RawRowView(j), 2)
		}

		a := sums[labels[i]] / float64(clusters[labels[i]]-1)
		b := math.Inf(1)
		for label, count := range clusters {
			if label == labels[i] {
				continue
			}
			b = math.Min(b, sums[label]/float64(count))
		}
		if m := math.Max(a, b); m > 0 {
			total += (b - a) / m
		}
	}
	return total / float64(n)
}

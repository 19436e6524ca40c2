package cluster

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"

	"github.com/JaimeStill/segmenter/internal/model"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// KMeans holds the parameters of one K-Means fit.
type KMeans struct {
	K       int
	NInit   int
	Seed    uint64
	MaxIter int
	Tol     float64
}

// Fitted is the best restart of a K-Means fit and its training labels.
type Fitted struct {
	Model  *model.KMeans
	Labels []int
}

// Fit runs NInit k-means++ initialized Lloyd restarts concurrently and keeps
// the one with the lowest inertia. Restart i draws from a PCG source seeded
// with (Seed, i), so the result does not depend on scheduling.
func (km KMeans) Fit(ctx context.Context, X *mat.Dense) (*Fitted, error) {
	if X == nil {
		return nil, fmt.Errorf("%w: no samples", ErrConfiguration)
	}
	n, _ := X.Dims()
	if km.K < 1 || n < km.K {
		return nil, fmt.Errorf("%w: cannot fit %d clusters to %d samples", ErrConfiguration, km.K, n)
	}
	if km.NInit < 1 || km.MaxIter < 1 {
		return nil, fmt.Errorf("%w: n_init and max_iter must be positive", ErrConfiguration)
	}

	tol := km.Tol * meanVariance(X)
	restarts := make([]*Fitted, km.NInit)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount(km.NInit))

	for i := range km.NInit {
		g.Go(func() error {
			rng := rand.New(rand.NewPCG(km.Seed, uint64(i)))
			fit, err := lloyd(gctx, X, seedCentroids(X, km.K, rng), km.MaxIter, tol)
			if err != nil {
				return err
			}
			restarts[i] = fit
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	best := restarts[0]
	for _, r := range restarts[1:] {
		if r.Model.Inertia < best.Model.Inertia {
			best = r
		}
	}
	return best, nil
}

// seedCentroids picks k initial centroids with k-means++: the first uniformly,
// each next with probability proportional to its squared distance from the
// nearest centroid chosen so far.
func seedCentroids(X *mat.Dense, k int, rng *rand.Rand) *mat.Dense {
	n, d := X.Dims()
	centroids := mat.NewDense(k, d, nil)

	centroids.SetRow(0, X.RawRowView(rng.IntN(n)))

	dist := make([]float64, n)
	for i := range n {
		dist[i] = squaredDistance(X.RawRowView(i), centroids.RawRowView(0))
	}

	for c := 1; c < k; c++ {
		var total float64
		for _, v := range dist {
			total += v
		}

		pick := rng.IntN(n)
		if total > 0 {
			target := rng.Float64() * total
			var cum float64
			for i, v := range dist {
				cum += v
				if cum > target {
					pick = i
					break
				}
			}
		}

		centroids.SetRow(c, X.RawRowView(pick))
		for i := range n {
			if v := squaredDistance(X.RawRowView(i), centroids.RawRowView(c)); v < dist[i] {
				dist[i] = v
			}
		}
	}

	return centroids
}

// lloyd alternates assignment and centroid updates until the total squared
// centroid shift is at most tol or maxIter is reached. Labels and inertia
// are recomputed against the final centroids.
func lloyd(ctx context.Context, X *mat.Dense, centroids *mat.Dense, maxIter int, tol float64) (*Fitted, error) {
	n, d := X.Dims()
	k, _ := centroids.Dims()

	labels := make([]int, n)
	dists := make([]float64, n)
	next := mat.NewDense(k, d, nil)
	counts := make([]int, k)

	iterations := 0
	for iterations < maxIter {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		iterations++

		assign(X, centroids, labels, dists)

		next.Zero()
		clear(counts)
		for i := range n {
			row := next.RawRowView(labels[i])
			for j, v := range X.RawRowView(i) {
				row[j] += v
			}
			counts[labels[i]]++
		}
		for c := range k {
			if counts[c] > 0 {
				row := next.RawRowView(c)
				for j := range row {
					row[j] /= float64(counts[c])
				}
			}
		}
		relocateEmpty(X, next, counts, dists)

		var shift float64
		for c := range k {
			shift += squaredDistance(centroids.RawRowView(c), next.RawRowView(c))
		}
		centroids, next = next, centroids

		if shift <= tol {
			break
		}
	}

	inertia := assign(X, centroids, labels, dists)

	return &Fitted{
		Model: &model.KMeans{
			K:          k,
			Centroids:  centroids,
			Inertia:    inertia,
			Iterations: iterations,
		},
		Labels: labels,
	}, nil
}

// assign writes each row's nearest centroid and squared distance, returning
// the total squared distance.
func assign(X, centroids *mat.Dense, labels []int, dists []float64) float64 {
	var inertia float64
	for i := range labels {
		labels[i], dists[i] = model.Nearest(centroids, X.RawRowView(i))
		inertia += dists[i]
	}
	return inertia
}

// relocateEmpty moves each empty cluster's centroid onto the sample farthest
// from its assigned centroid. A sample is used at most once.
func relocateEmpty(X, centroids *mat.Dense, counts []int, dists []float64) {
	used := make(map[int]bool)
	for c, count := range counts {
		if count > 0 {
			continue
		}

		far, farDist := -1, -1.0
		for i, d := range dists {
			if !used[i] && d > farDist {
				far, farDist = i, d
			}
		}
		if far < 0 {
			return
		}

		used[far] = true
		centroids.SetRow(c, X.RawRowView(far))
	}
}

func meanVariance(X *mat.Dense) float64 {
	n, d := X.Dims()
	col := make([]float64, n)

	var sum float64
	for j := range d {
		mat.Col(col, j, X)
		sum += stat.PopVariance(col, nil)
	}
	return sum / float64(d)
}

func squaredDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

func workerCount(n int) int {
	return max(min(runtime.NumCPU(), n), 1)
}

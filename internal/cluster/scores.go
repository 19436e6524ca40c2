package cluster

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const silhouetteBlock = 256

// Silhouette returns the mean silhouette coefficient of labels over X.
// For a sample with mean intra-cluster distance a and mean distance b to the
// nearest other cluster, s = (b - a) / max(a, b); a sample alone in its
// cluster scores 0. ok is false unless 2 <= clusters <= n-1.
//
// Rows are scored concurrently in blocks and summed in row order.
func Silhouette(ctx context.Context, X *mat.Dense, labels []int) (score float64, ok bool, err error) {
	n, _ := X.Dims()
	if len(labels) != n {
		return 0, false, fmt.Errorf("%w: %d labels for %d samples", ErrConfiguration, len(labels), n)
	}

	counts := clusterCounts(labels)
	clusters := 0
	for _, c := range counts {
		if c > 0 {
			clusters++
		}
	}
	if clusters < 2 || clusters > n-1 {
		return 0, false, nil
	}

	samples := make([]float64, n)
	blocks := (n + silhouetteBlock - 1) / silhouetteBlock

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount(blocks))

	for b := range blocks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			sums := make([]float64, len(counts))
			lo, hi := b*silhouetteBlock, min((b+1)*silhouetteBlock, n)
			for i := lo; i < hi; i++ {
				samples[i] = sampleSilhouette(X, labels, counts, sums, i)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return 0, false, err
	}

	return floats.Sum(samples) / float64(n), true, nil
}

func sampleSilhouette(X *mat.Dense, labels, counts []int, sums []float64, i int) float64 {
	own := labels[i]
	if counts[own] < 2 {
		return 0
	}

	clear(sums)
	row := X.RawRowView(i)
	n, _ := X.Dims()
	for j := range n {
		if j != i {
			sums[labels[j]] += floats.Distance(row, X.RawRowView(j), 2)
		}
	}

	a := sums[own] / float64(counts[own]-1)
	b := math.Inf(1)
	for c, count := range counts {
		if c != own && count > 0 {
			b = min(b, sums[c]/float64(count))
		}
	}

	denom := max(a, b)
	if denom == 0 {
		return 0
	}
	return (b - a) / denom
}

// CalinskiHarabasz returns the ratio of between-cluster to within-cluster
// dispersion, scaled by (n - k) / (k - 1). It is 1 when the within-cluster
// dispersion is zero.
func CalinskiHarabasz(X *mat.Dense, labels []int) (float64, error) {
	n, d := X.Dims()
	if len(labels) != n {
		return 0, fmt.Errorf("%w: %d labels for %d samples", ErrConfiguration, len(labels), n)
	}

	counts := clusterCounts(labels)
	k := 0
	for _, c := range counts {
		if c > 0 {
			k++
		}
	}
	if k < 2 || k > n-1 {
		return 0, fmt.Errorf("%w: calinski-harabasz needs 2 to %d clusters, got %d", ErrConfiguration, n-1, k)
	}

	mean := make([]float64, d)
	centers := mat.NewDense(len(counts), d, nil)
	for i := range n {
		row := X.RawRowView(i)
		floats.Add(mean, row)
		floats.Add(centers.RawRowView(labels[i]), row)
	}
	floats.Scale(1/float64(n), mean)
	for c, count := range counts {
		if count > 0 {
			floats.Scale(1/float64(count), centers.RawRowView(c))
		}
	}

	var between, within float64
	for c, count := range counts {
		if count > 0 {
			between += float64(count) * squaredDistance(centers.RawRowView(c), mean)
		}
	}
	for i := range n {
		within += squaredDistance(X.RawRowView(i), centers.RawRowView(labels[i]))
	}

	if within == 0 {
		return 1, nil
	}
	return between * float64(n-k) / (within * float64(k-1)), nil
}

func clusterCounts(labels []int) []int {
	size := 0
	for _, l := range labels {
		size = max(size, l+1)
	}

	counts := make([]int, size)
	for _, l := range labels {
		counts[l]++
	}
	return counts
}

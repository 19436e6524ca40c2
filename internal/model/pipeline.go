// Package model defines the fitted scaler and K-Means stages, their composed
// Pipeline and the persisted Artifact used for inference.
package model

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// FeatureColumns is the feature order every fitted pipeline expects.
var FeatureColumns = []string{"log_Recency", "log_Frequency", "log_Monetary", "log_Tenure"}

// Transformer maps a feature matrix to another feature matrix.
type Transformer interface {
	Transform(X mat.Matrix) (*mat.Dense, error)
}

// Predictor assigns each row of a feature matrix to a cluster.
type Predictor interface {
	Predict(X mat.Matrix) ([]int, error)
}

// Scaler standardizes each column as (x - Mean) / Scale.
type Scaler struct {
	Mean  []float64
	Scale []float64
}

// Transform returns a standardized copy of X.
func (s *Scaler) Transform(X mat.Matrix) (*mat.Dense, error) {
	r, c := X.Dims()
	if c != len(s.Mean) {
		return nil, fmt.Errorf("%w: scaler fitted on %d columns, got %d", ErrShape, len(s.Mean), c)
	}

	out := mat.NewDense(r, c, nil)
	out.Apply(func(_, j int, v float64) float64 {
		return (v - s.Mean[j]) / s.Scale[j]
	}, X)
	return out, nil
}

// KMeans is a fitted K-Means model. Centroids are K×features in scaled space.
type KMeans struct {
	K          int
	Centroids  *mat.Dense
	Inertia    float64
	Iterations int
}

// Predict assigns each row of X to its nearest centroid.
func (k *KMeans) Predict(X mat.Matrix) ([]int, error) {
	r, c := X.Dims()
	if _, cc := k.Centroids.Dims(); c != cc {
		return nil, fmt.Errorf("%w: centroids have %d columns, got %d", ErrShape, cc, c)
	}

	labels := make([]int, r)
	row := make([]float64, c)
	for i := range r {
		mat.Row(row, i, X)
		labels[i], _ = Nearest(k.Centroids, row)
	}
	return labels, nil
}

// Transform returns the identity of X; a fitted K-Means stage does not
// change the feature space.
func (k *KMeans) Transform(X mat.Matrix) (*mat.Dense, error) {
	return mat.DenseCopyOf(X), nil
}

// Nearest returns the index of the centroid closest to row by Euclidean
// distance and the squared distance to it. The lowest index wins ties.
func Nearest(centroids *mat.Dense, row []float64) (int, float64) {
	k, _ := centroids.Dims()

	best, bestDist := -1, 0.0
	for c := range k {
		d := squaredDistance(centroids.RawRowView(c), row)
		if best < 0 || d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, bestDist
}

func squaredDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// Pipeline is the ordered composition scale → cluster.
type Pipeline struct {
	Scaler *Scaler
	KMeans *KMeans
}

// Transform applies the scaling stage.
func (p *Pipeline) Transform(X mat.Matrix) (*mat.Dense, error) {
	return p.Scaler.Transform(X)
}

// Predict scales X and assigns clusters.
func (p *Pipeline) Predict(X mat.Matrix) ([]int, error) {
	scaled, err := p.Transform(X)
	if err != nil {
		return nil, err
	}
	return p.KMeans.Predict(scaled)
}

var (
	_ Transformer = (*Scaler)(nil)
	_ Transformer = (*KMeans)(nil)
	_ Transformer = (*Pipeline)(nil)
	_ Predictor   = (*KMeans)(nil)
	_ Predictor   = (*Pipeline)(nil)
)

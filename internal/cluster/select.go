// Package cluster scales the feature matrix, sweeps K-Means over a range of
// cluster counts and selects the candidate with the best silhouette score.
package cluster

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/segmenter/internal/model"
	"gonum.org/v1/gonum/mat"
)

// Score is one candidate's result in the sweep.
type Score struct {
	K          int
	Silhouette float64
	Valid      bool
	Inertia    float64
}

// Selection is the winning candidate of a sweep.
type Selection struct {
	K                int
	Scaler           *model.Scaler
	Model            *model.KMeans
	Labels           []int
	Silhouette       float64
	CalinskiHarabasz float64
	Scores           []Score
}

// Best returns the index of the score with the strictly highest valid
// silhouette. The first of equal scores wins. ok is false when no score is valid.
func Best(scores []Score) (index int, ok bool) {
	index = -1
	for i, s := range scores {
		if !s.Valid {
			continue
		}
		if index < 0 || s.Silhouette > scores[index].Silhouette {
			index = i
		}
	}
	return index, index >= 0
}

// Selector runs the cluster-count sweep.
type Selector struct {
	cfg    *Config
	logger *slog.Logger
}

// New creates a Selector for the given config.
func New(cfg *Config, logger *slog.Logger) *Selector {
	return &Selector{
		cfg:    cfg,
		logger: logger.With("system", "cluster"),
	}
}

// Select fits a scaler on X, fits K-Means for every k in [MinK, MaxK] on the
// scaled matrix and returns the candidate with the best silhouette, scored
// additionally with Calinski-Harabasz.
func (s *Selector) Select(ctx context.Context, X *mat.Dense) (*Selection, error) {
	if X == nil {
		return nil, fmt.Errorf("%w: no samples", ErrConfiguration)
	}
	n, _ := X.Dims()
	if n < s.cfg.MinK {
		return nil, fmt.Errorf("%w: %d samples for min_k %d", ErrConfiguration, n, s.cfg.MinK)
	}

	scaler := FitScaler(X)
	scaled, err := scaler.Transform(X)
	if err != nil {
		return nil, err
	}

	scores := make([]Score, 0, s.cfg.MaxK-s.cfg.MinK+1)
	fits := make([]*Fitted, 0, cap(scores))

	for k := s.cfg.MinK; k <= s.cfg.MaxK; k++ {
		if k > n {
			s.logger.Warn("candidate skipped", "k", k, "samples", n)
			scores = append(scores, Score{K: k})
			fits = append(fits, nil)
			continue
		}

		fit, err := s.cfg.KMeans(k).Fit(ctx, scaled)
		if err != nil {
			return nil, fmt.Errorf("fit k=%d: %w", k, err)
		}

		sil, ok, err := Silhouette(ctx, scaled, fit.Labels)
		if err != nil {
			return nil, fmt.Errorf("score k=%d: %w", k, err)
		}

		score := Score{K: k, Silhouette: sil, Valid: ok, Inertia: fit.Model.Inertia}
		scores = append(scores, score)
		fits = append(fits, fit)

		if ok {
			s.logger.Info("candidate scored", "k", k, "silhouette", sil, "inertia", fit.Model.Inertia, "iterations", fit.Model.Iterations)
		} else {
			s.logger.Warn("candidate has no valid silhouette", "k", k)
		}
	}

	best, ok := Best(scores)
	if !ok {
		return nil, fmt.Errorf("%w: no valid silhouette score for k in [%d, %d]", ErrConfiguration, s.cfg.MinK, s.cfg.MaxK)
	}

	winner := fits[best]
	ch, err := CalinskiHarabasz(scaled, winner.Labels)
	if err != nil {
		return nil, err
	}

	s.logger.Info(
		"cluster count selected",
		"k", scores[best].K,
		"silhouette", scores[best].Silhouette,
		"calinski_harabasz", ch,
	)

	return &Selection{
		K:                scores[best].K,
		Scaler:           scaler,
		Model:            winner.Model,
		Labels:           winner.Labels,
		Silhouette:       scores[best].Silhouette,
		CalinskiHarabasz: ch,
		Scores:           scores,
	}, nil
}

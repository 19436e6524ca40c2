// Package segments is the inference adapter: it validates prediction
// requests, applies the training feature transform, predicts through the
// loaded model artifact and maps clusters to segment names.
package segments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/JaimeStill/segmenter/internal/model"
)

// State is the adapter's availability.
type State string

// Adapter states.
const (
	StateReady       State = "Ready"
	StateUnavailable State = "Unavailable"
)

// System defines the public contract for prediction operations.
type System interface {
	Handler() *Handler

	State() State
	Ready() bool
	Metadata() (*model.Metadata, error)
	Predict(ctx context.Context, req Request) (*Prediction, error)
}

type adapter struct {
	artifact *model.Artifact
	labels   Labels
	metrics  *metrics
	logger   *slog.Logger
}

// New creates an adapter over artifact. A nil artifact leaves the adapter
// Unavailable for its lifetime.
func New(
	artifact *model.Artifact,
	labels Labels,
	logger *slog.Logger,
	reg prometheus.Registerer,
) System {
	a := &adapter{
		artifact: artifact,
		labels:   labels,
		metrics:  newMetrics(reg),
		logger:   logger.With("system", "segments"),
	}

	if artifact != nil {
		a.metrics.loaded.Set(1)
		a.metrics.info.WithLabelValues(a.version(), strconv.Itoa(artifact.Metadata.K)).Set(1)

		if unnamed := labels.Unnamed(artifact.Metadata.K); len(unnamed) > 0 {
			a.logger.Warn("clusters without a segment name", "version", a.version(), "clusters", unnamed)
		}
	}

	return a
}

// Open loads the artifact in cfg.ModelDir and creates an adapter over it.
// A missing or corrupt artifact is logged and yields an Unavailable adapter.
func Open(
	cfg *Config,
	labels Labels,
	logger *slog.Logger,
	reg prometheus.Registerer,
) System {
	path := cfg.ArtifactPath()

	artifact, err := model.LoadFile(path)
	if err != nil {
		logger.Error("model artifact unavailable", "path", path, "error", err)
		if errors.Is(err, model.ErrNotFound) {
			logger.Info("fetch the latest registered model before starting the server")
		}
		return New(nil, labels, logger, reg)
	}

	logger.Info(
		"model artifact loaded",
		"path", path,
		"version", artifact.Metadata.Version,
		"k", artifact.Metadata.K,
	)
	return New(artifact, labels, logger, reg)
}

func (a *adapter) Handler() *Handler {
	return NewHandler(a, a.logger)
}

func (a *adapter) State() State {
	if a.artifact == nil {
		return StateUnavailable
	}
	return StateReady
}

func (a *adapter) Ready() bool {
	return a.State() == StateReady
}

func (a *adapter) Metadata() (*model.Metadata, error) {
	if a.artifact == nil {
		return nil, ErrUnavailable
	}
	md := a.artifact.Metadata
	return &md, nil
}

func (a *adapter) Predict(ctx context.Context, req Request) (*Prediction, error) {
	if a.artifact == nil {
		a.metrics.fail("unavailable")
		return nil, ErrUnavailable
	}

	if err := req.Validate(); err != nil {
		a.metrics.fail("validation")
		return nil, err
	}

	features := Features(req)
	cluster, err := a.artifact.PredictOne(features[:])
	if err != nil {
		a.metrics.fail("prediction")
		return nil, fmt.Errorf("%w: %w", ErrPrediction, err)
	}

	a.metrics.observe(cluster)
	a.logger.DebugContext(ctx, "prediction served", "cluster", cluster, "features", features)

	return &Prediction{
		ClusterID:    cluster,
		ClusterName:  a.labels.Name(cluster),
		ModelVersion: a.version(),
	}, nil
}

func (a *adapter) version() string {
	if a.artifact.Metadata.Version == "" {
		return "unregistered"
	}
	return a.artifact.Metadata.Version
}

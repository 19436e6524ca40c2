// Package training runs the end-to-end training job: feature pipeline,
// cluster selection, artifact registration and the local outputs.
package training

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/segmenter/internal/cluster"
	"github.com/JaimeStill/segmenter/internal/features"
	"github.com/JaimeStill/segmenter/internal/model"
	"github.com/JaimeStill/segmenter/internal/registry"
)

// Result summarizes a completed training run.
type Result struct {
	RunID            uuid.UUID
	K                int
	Silhouette       float64
	CalinskiHarabasz float64
	Samples          int
	Dropped          int
	Version          *registry.Version
	ModelPath        string
	ReportPath       string
}

// Run executes one training run. Any failure aborts the run; outputs written
// before the failure are left in place.
func Run(ctx context.Context, rt *Runtime) (*Result, error) {
	runID := uuid.New()
	logger := rt.Logger.With("system", "training", "run_id", runID)
	logger.Info("training run started", "model", rt.ModelName)

	processed, err := features.New(rt.Features, rt.Logger).Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("feature pipeline: %w", err)
	}

	X := features.Matrix(processed.Rows)
	sel, err := cluster.New(rt.Cluster, rt.Logger).Select(ctx, X)
	if err != nil {
		return nil, fmt.Errorf("cluster selection: %w", err)
	}

	artifact := &model.Artifact{
		Pipeline: &model.Pipeline{
			Scaler: sel.Scaler,
			KMeans: sel.Model,
		},
		Metadata: metadata(rt, runID, sel, len(processed.Rows)),
	}

	v, err := rt.Registry.Register(ctx, registry.RegisterCommand{
		Name:     rt.ModelName,
		Artifact: artifact,
	})
	if err != nil {
		return nil, fmt.Errorf("register model: %w", err)
	}

	modelPath := rt.Training.ModelPath()
	if err := artifact.SaveFile(modelPath); err != nil {
		return nil, fmt.Errorf("save local model: %w", err)
	}
	logger.Info("model saved", "path", modelPath, "version", artifact.Metadata.Version)

	if err := ExportReport(rt.Training.ReportPath, processed.Rows, sel.Labels); err != nil {
		return nil, fmt.Errorf("cluster report: %w", err)
	}
	logger.Info("cluster report exported", "path", rt.Training.ReportPath)

	logger.Info(
		"training run complete",
		"k", sel.K,
		"silhouette", sel.Silhouette,
		"calinski_harabasz", sel.CalinskiHarabasz,
		"version", v.Version,
	)

	return &Result{
		RunID:            runID,
		K:                sel.K,
		Silhouette:       sel.Silhouette,
		CalinskiHarabasz: sel.CalinskiHarabasz,
		Samples:          len(processed.Rows),
		Dropped:          processed.Dropped,
		Version:          v,
		ModelPath:        modelPath,
		ReportPath:       rt.Training.ReportPath,
	}, nil
}

func metadata(rt *Runtime, runID uuid.UUID, sel *cluster.Selection, samples int) model.Metadata {
	scores := make([]model.Score, len(sel.Scores))
	for i, s := range sel.Scores {
		scores[i] = model.Score{K: s.K}
		if s.Valid {
			sil := s.Silhouette
			scores[i].Silhouette = &sil
		}
	}

	return model.Metadata{
		Name:             rt.ModelName,
		RunID:            runID.String(),
		K:                sel.K,
		Features:         model.FeatureColumns,
		Silhouette:       sel.Silhouette,
		CalinskiHarabasz: sel.CalinskiHarabasz,
		Scores:           scores,
		Params: model.Params{
			AnalysisDate:   rt.Features.AnalysisDate,
			IQRThreshold:   rt.Features.IQRThreshold,
			OutlierColumns: rt.Features.OutlierColumns,
			Seed:           rt.Cluster.Seed,
			NInit:          rt.Cluster.NInit,
			MinK:           rt.Cluster.MinK,
			MaxK:           rt.Cluster.MaxK,
		},
		Samples:   samples,
		CreatedAt: time.Now().UTC(),
	}
}

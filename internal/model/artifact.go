package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gonum.org/v1/gonum/mat"
)

// FormatVersion is the artifact document version written by Save.
const FormatVersion = 1

// FileName is the artifact file name inside a model directory.
const FileName = "model.json"

// Score is one candidate's silhouette in a selection sweep.
// Silhouette is nil when the candidate had no valid score.
type Score struct {
	K          int      `json:"k"`
	Silhouette *float64 `json:"silhouette"`
}

// Params are the training parameters recorded with an artifact.
type Params struct {
	AnalysisDate   string   `json:"analysis_date"`
	IQRThreshold   float64  `json:"iqr_threshold"`
	OutlierColumns []string `json:"outlier_columns"`
	Seed           uint64   `json:"seed"`
	NInit          int      `json:"n_init"`
	MinK           int      `json:"min_k"`
	MaxK           int      `json:"max_k"`
}

// Metadata describes how and when an artifact was produced.
type Metadata struct {
	Name             string    `json:"name"`
	Version          string    `json:"version"`
	RunID            string    `json:"run_id"`
	K                int       `json:"k"`
	Features         []string  `json:"features"`
	Silhouette       float64   `json:"silhouette"`
	CalinskiHarabasz float64   `json:"calinski_harabasz"`
	Scores           []Score   `json:"scores"`
	Params           Params    `json:"params"`
	Samples          int       `json:"samples"`
	CreatedAt        time.Time `json:"created_at"`
}

// Artifact is a fitted pipeline with its metadata.
type Artifact struct {
	Pipeline *Pipeline
	Metadata Metadata
}

// VersionTag formats the version tag stamped on a registered artifact.
func VersionTag(name string, version int) string {
	return fmt.Sprintf("%s v%d", name, version)
}

type document struct {
	FormatVersion int       `json:"format_version"`
	Metadata      Metadata  `json:"metadata"`
	Scaler        scalerDoc `json:"scaler"`
	KMeans        kmeansDoc `json:"kmeans"`
}

type scalerDoc struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

type kmeansDoc struct {
	K          int         `json:"k"`
	Centroids  [][]float64 `json:"centroids"`
	Inertia    float64     `json:"inertia"`
	Iterations int         `json:"iterations"`
}

// Save encodes the artifact as a JSON document.
func (a *Artifact) Save(w io.Writer) error {
	if a.Pipeline == nil || a.Pipeline.Scaler == nil || a.Pipeline.KMeans == nil {
		return fmt.Errorf("save artifact: incomplete pipeline")
	}

	km := a.Pipeline.KMeans
	centroids := make([][]float64, km.K)
	for i := range km.K {
		centroids[i] = mat.Row(nil, i, km.Centroids)
	}

	doc := document{
		FormatVersion: FormatVersion,
		Metadata:      a.Metadata,
		Scaler: scalerDoc{
			Mean:  a.Pipeline.Scaler.Mean,
			Scale: a.Pipeline.Scaler.Scale,
		},
		KMeans: kmeansDoc{
			K:          km.K,
			Centroids:  centroids,
			Inertia:    km.Inertia,
			Iterations: km.Iterations,
		},
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode artifact: %w", err)
	}
	return nil
}

// Load decodes an artifact and verifies its shape.
func Load(r io.Reader) (*Artifact, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	if err := doc.validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	nf := len(FeatureColumns)
	centroids := mat.NewDense(doc.KMeans.K, nf, nil)
	for i, row := range doc.KMeans.Centroids {
		centroids.SetRow(i, row)
	}

	return &Artifact{
		Pipeline: &Pipeline{
			Scaler: &Scaler{
				Mean:  doc.Scaler.Mean,
				Scale: doc.Scaler.Scale,
			},
			KMeans: &KMeans{
				K:          doc.KMeans.K,
				Centroids:  centroids,
				Inertia:    doc.KMeans.Inertia,
				Iterations: doc.KMeans.Iterations,
			},
		},
		Metadata: doc.Metadata,
	}, nil
}

func (d *document) validate() error {
	if d.FormatVersion != FormatVersion {
		return fmt.Errorf("unsupported format_version %d", d.FormatVersion)
	}
	if !slices.Equal(d.Metadata.Features, FeatureColumns) {
		return fmt.Errorf("feature columns %v, want %v", d.Metadata.Features, FeatureColumns)
	}

	nf := len(FeatureColumns)
	if len(d.Scaler.Mean) != nf || len(d.Scaler.Scale) != nf {
		return fmt.Errorf("scaler has %d means and %d scales, want %d", len(d.Scaler.Mean), len(d.Scaler.Scale), nf)
	}
	for i, s := range d.Scaler.Scale {
		if s == 0 || !finite(s) || !finite(d.Scaler.Mean[i]) {
			return fmt.Errorf("scaler column %d is not finite and non-zero", i)
		}
	}

	if d.KMeans.K < 1 {
		return fmt.Errorf("k must be positive, got %d", d.KMeans.K)
	}
	if d.Metadata.K != d.KMeans.K {
		return fmt.Errorf("metadata k %d does not match model k %d", d.Metadata.K, d.KMeans.K)
	}
	if len(d.KMeans.Centroids) != d.KMeans.K {
		return fmt.Errorf("%d centroids for k %d", len(d.KMeans.Centroids), d.KMeans.K)
	}
	for i, c := range d.KMeans.Centroids {
		if len(c) != nf {
			return fmt.Errorf("centroid %d has %d dimensions, want %d", i, len(c), nf)
		}
		for _, v := range c {
			if !finite(v) {
				return fmt.Errorf("centroid %d is not finite", i)
			}
		}
	}

	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// SaveFile writes the artifact to path, creating parent directories.
func (a *Artifact) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if err := a.Save(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadFile reads the artifact at path.
func LoadFile(path string) (*Artifact, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return Load(f)
}

// PredictOne assigns a single feature row, in FeatureColumns order, to a cluster.
func (a *Artifact) PredictOne(row []float64) (int, error) {
	if len(row) != len(FeatureColumns) {
		return 0, fmt.Errorf("%w: got %d features, want %d", ErrShape, len(row), len(FeatureColumns))
	}
	for i, v := range row {
		if !finite(v) {
			return 0, fmt.Errorf("%w: %s is %v", ErrNonFinite, FeatureColumns[i], v)
		}
	}

	labels, err := a.Pipeline.Predict(mat.NewDense(1, len(row), slices.Clone(row)))
	if err != nil {
		return 0, err
	}
	return labels[0], nil
}

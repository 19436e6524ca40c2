package config

import (
	"github.com/JaimeStill/segmenter/internal/cluster"
	"github.com/JaimeStill/segmenter/internal/features"
	"github.com/JaimeStill/segmenter/internal/registry"
	"github.com/JaimeStill/segmenter/internal/segments"
	"github.com/JaimeStill/segmenter/internal/training"
)

var pipelineEnv = &features.Env{
	RawDataPath:       "SEGMENTER_PIPELINE_RAW_DATA_PATH",
	ProcessedDataPath: "SEGMENTER_PIPELINE_PROCESSED_DATA_PATH",
	AnalysisDate:      "SEGMENTER_PIPELINE_ANALYSIS_DATE",
	OutlierColumns:    "SEGMENTER_PIPELINE_OUTLIER_COLUMNS",
	IQRThreshold:      "SEGMENTER_PIPELINE_IQR_THRESHOLD",
}

var selectionEnv = &cluster.Env{
	MinK:    "SEGMENTER_SELECTION_MIN_K",
	MaxK:    "SEGMENTER_SELECTION_MAX_K",
	NInit:   "SEGMENTER_SELECTION_N_INIT",
	Seed:    "SEGMENTER_SELECTION_SEED",
	MaxIter: "SEGMENTER_SELECTION_MAX_ITER",
	Tol:     "SEGMENTER_SELECTION_TOL",
}

var registryEnv = &registry.Env{
	ModelName: "SEGMENTER_REGISTRY_MODEL_NAME",
}

var servingEnv = &segments.Env{
	ModelDir:    "SEGMENTER_SERVING_MODEL_DIR",
	ServiceName: "SEGMENTER_SERVING_SERVICE_NAME",
}

var trainingEnv = &training.Env{
	ModelDir:   "SEGMENTER_TRAINING_MODEL_DIR",
	ReportPath: "SEGMENTER_TRAINING_REPORT_PATH",
}

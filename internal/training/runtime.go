package training

import (
	"log/slog"

	"github.com/JaimeStill/segmenter/internal/cluster"
	"github.com/JaimeStill/segmenter/internal/features"
	"github.com/JaimeStill/segmenter/internal/registry"
)

// Runtime bundles the configuration and systems a training run requires.
// It is constructed by cmd/train from the application config and infrastructure.
type Runtime struct {
	Features  *features.Config
	Cluster   *cluster.Config
	Training  *Config
	ModelName string
	Registry  registry.System
	Logger    *slog.Logger
}

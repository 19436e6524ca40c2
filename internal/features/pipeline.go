package features

import (
	"context"
	"fmt"
	"log/slog"
)

// Pipeline runs the feature steps from the raw source file to the exported
// processed table.
type Pipeline struct {
	cfg    *Config
	logger *slog.Logger
}

// New creates a Pipeline for the given config.
func New(cfg *Config, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		cfg:    cfg,
		logger: logger.With("system", "features"),
	}
}

// Run loads, processes and exports the feature table.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	p.logger.Info("loading raw data", "path", p.cfg.RawDataPath)

	records, err := Load(p.cfg.RawDataPath)
	if err != nil {
		return nil, err
	}
	p.logger.Info("raw data loaded", "rows", len(records))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := Process(records, p.cfg.Options())
	if err != nil {
		return nil, err
	}

	for _, b := range result.Bounds {
		p.logger.Info(
			"outlier bounds",
			"column", b.Column,
			"q1", b.Q1,
			"q3", b.Q3,
			"lower", b.Lower,
			"upper", b.Upper,
		)
	}
	p.logger.Info(
		"outlier removal complete",
		"threshold", p.cfg.IQRThreshold,
		"dropped", result.Dropped,
		"kept", len(result.Rows),
	)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := Export(p.cfg.ProcessedDataPath, result.Rows); err != nil {
		return nil, fmt.Errorf("export processed data: %w", err)
	}
	p.logger.Info("processed data exported", "path", p.cfg.ProcessedDataPath)

	return result, nil
}

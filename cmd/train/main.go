package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/JaimeStill/segmenter/internal/config"
	"github.com/JaimeStill/segmenter/internal/infrastructure"
	"github.com/JaimeStill/segmenter/internal/registry"
	"github.com/JaimeStill/segmenter/internal/training"
)

func main() {
	source := flag.String("source", "", "Raw customer CSV (overrides pipeline.raw_data_path)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config load failed:", err)
	}
	if *source != "" {
		cfg.Pipeline.RawDataPath = *source
	}

	infra, err := infrastructure.New(cfg)
	if err != nil {
		log.Fatal("infrastructure init failed:", err)
	}

	stop, err := infra.Run(cfg.ShutdownTimeoutDuration())
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	result, err := training.Run(ctx, &training.Runtime{
		Features:  &cfg.Pipeline,
		Cluster:   &cfg.Selection,
		Training:  &cfg.Training,
		ModelName: cfg.Registry.ModelName,
		Registry: registry.New(
			infra.Database.Connection(),
			infra.Storage,
			infra.Logger,
			cfg.API.Pagination,
		),
		Logger: infra.Logger,
	})
	cancel()
	stop()

	if err != nil {
		infra.Logger.Error("training failed", "error", err)
		os.Exit(1)
	}

	infra.Logger.Info(
		"training complete",
		"version", result.Version.Tag(),
		"k", result.K,
		"silhouette", result.Silhouette,
		"calinski_harabasz", result.CalinskiHarabasz,
		"model", result.ModelPath,
		"report", result.ReportPath,
	)
}

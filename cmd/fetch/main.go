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
	"github.com/JaimeStill/segmenter/pkg/formatting"
)

func main() {
	name := flag.String("name", "", "Registered model name (overrides registry.model_name)")
	version := flag.Int("version", 0, "Model version to fetch (default latest)")
	dest := flag.String("dest", "", "Destination directory (overrides serving.model_dir)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config load failed:", err)
	}
	if *name == "" {
		*name = cfg.Registry.ModelName
	}
	if *dest == "" {
		*dest = cfg.Serving.ModelDir
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

	path, err := fetch(ctx, registry.New(
		infra.Database.Connection(),
		infra.Storage,
		infra.Logger,
		cfg.API.Pagination,
	), *name, *version, *dest)
	cancel()
	stop()

	if err != nil {
		infra.Logger.Error("fetch failed", "name", *name, "error", err)
		os.Exit(1)
	}

	attrs := []any{"path", path}
	if info, err := os.Stat(path); err == nil {
		attrs = append(attrs, "size", formatting.FormatBytes(info.Size(), 1))
	}
	infra.Logger.Info("model ready for serving", attrs...)
}

func fetch(ctx context.Context, reg registry.System, name string, version int, dest string) (string, error) {
	var (
		v   *registry.Version
		err error
	)
	if version > 0 {
		v, err = reg.Find(ctx, name, version)
	} else {
		v, err = reg.Latest(ctx, name)
	}
	if err != nil {
		return "", err
	}

	return reg.Download(ctx, v, dest)
}

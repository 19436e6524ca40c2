package main

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JaimeStill/segmenter/internal/api"
	"github.com/JaimeStill/segmenter/internal/config"
	"github.com/JaimeStill/segmenter/internal/infrastructure"
	"github.com/JaimeStill/segmenter/internal/segments"
	"github.com/JaimeStill/segmenter/pkg/middleware"
	"github.com/JaimeStill/segmenter/pkg/module"
	"github.com/JaimeStill/segmenter/web/app"
)

type Modules struct {
	API      *module.Module
	App      *module.Module
	Segments segments.System
}

func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	runtime := api.NewRuntime(cfg, infra)
	domain := api.NewDomain(runtime)

	apiModule, err := api.NewModule(cfg, runtime, domain)
	if err != nil {
		return nil, err
	}

	appModule, err := app.NewModule("/app", domain.Segments, infra.Logger.With("module", "app"))
	if err != nil {
		return nil, err
	}
	appModule.Use(middleware.Logger(infra.Logger))
	appModule.Use(middleware.MaxBody(cfg.API.MaxBodySizeBytes()))

	return &Modules{
		API:      apiModule,
		App:      appModule,
		Segments: domain.Segments,
	}, nil
}

func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
	router.Mount(m.App)
}

type status struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

func buildRouter(infra *infrastructure.Infrastructure, modules *Modules, cfg *config.Config) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		s := status{Status: "Inactive", Service: cfg.Serving.ServiceName}
		if modules.Segments.Ready() {
			s.Status = "Active"
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(s)
	})

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if !infra.Lifecycle.Ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "not ready"})
			return
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
	})

	router.Handle("GET /metrics", promhttp.HandlerFor(infra.Metrics, promhttp.HandlerOpts{Registry: infra.Metrics}))

	return router
}

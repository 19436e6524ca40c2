package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/segmenter/internal/config"
	"github.com/JaimeStill/segmenter/internal/registry"
	"github.com/JaimeStill/segmenter/internal/segments"
	"github.com/JaimeStill/segmenter/pkg/openapi"
	"github.com/JaimeStill/segmenter/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
) error {
	groups := []routes.Group{
		domain.Segments.Handler().Routes(),
		domain.Registry.Handler().Routes(),
	}

	routes.Register(mux, groups...)

	spec, err := buildSpec(cfg, groups)
	if err != nil {
		return err
	}
	mux.HandleFunc("GET /openapi.json", openapi.ServeSpec(spec))

	return nil
}

// buildSpec documents every route group under the API base path.
func buildSpec(cfg *config.Config, groups []routes.Group) ([]byte, error) {
	spec := openapi.NewSpec(cfg.API.OpenAPI.Title, cfg.Version)
	spec.SetDescription(cfg.API.OpenAPI.Description)
	for _, url := range cfg.API.OpenAPI.ServerURLs(cfg.API.BasePath) {
		spec.AddServer(url)
	}

	spec.Components.AddSchemas(segments.Schemas())
	spec.Components.AddSchemas(registry.Schemas())

	routes.Document(spec, "", groups...)

	data, err := openapi.MarshalJSON(spec)
	if err != nil {
		return nil, fmt.Errorf("marshal openapi spec: %w", err)
	}
	return data, nil
}

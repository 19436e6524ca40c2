package routes_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/segmenter/pkg/openapi"
	"github.com/JaimeStill/segmenter/pkg/routes"
)

func TestRegisterHandlers(t *testing.T) {
	mux := http.NewServeMux()

	routes.Register(mux, routes.Group{
		Prefix: "/models",
		Routes: []routes.Route{
			{
				Method:  "GET",
				Pattern: "",
				Handler: func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusOK)
				},
			},
			{
				Method:  "GET",
				Pattern: "/{id}",
				Handler: func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusOK)
				},
			},
		},
	})

	tests := []struct {
		name   string
		method string
		path   string
		wantOK bool
	}{
		{"list models", "GET", "/models", true},
		{"get model", "GET", "/models/customer-segmentation", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, tt.path, nil)
			mux.ServeHTTP(rec, req)

			if tt.wantOK && rec.Code != http.StatusOK {
				t.Errorf("status: got %d, want 200", rec.Code)
			}
		})
	}
}

func TestNestedGroups(t *testing.T) {
	mux := http.NewServeMux()

	routes.Register(mux, routes.Group{
		Prefix: "/api",
		Children: []routes.Group{
			{
				Prefix: "/v1",
				Routes: []routes.Route{
					{
						Method:  "GET",
						Pattern: "/models",
						Handler: func(w http.ResponseWriter, r *http.Request) {
							w.WriteHeader(http.StatusOK)
						},
					},
				},
			},
		},
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/models", nil)
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("nested route: got %d, want 200", rec.Code)
	}
}

func TestDocument(t *testing.T) {
	noop := func(w http.ResponseWriter, r *http.Request) {}

	group := routes.Group{
		Prefix: "/models",
		Tags:   []string{"Registry"},
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: noop, OpenAPI: &openapi.Operation{Summary: "List versions"}},
			{Method: "GET", Pattern: "/{name}/versions/latest", Handler: noop, OpenAPI: &openapi.Operation{Summary: "Latest version"}},
			{Method: "DELETE", Pattern: "/{name}", Handler: noop},
		},
	}

	spec := openapi.NewSpec("Test", "1.0.0")
	routes.Document(spec, "/api", group)

	if len(spec.Paths) != 2 {
		t.Fatalf("paths: got %d, want 2", len(spec.Paths))
	}

	list, ok := spec.Paths["/api/models"]
	if !ok || list.Get == nil {
		t.Fatal("missing GET /api/models")
	}
	if len(list.Get.Tags) != 1 || list.Get.Tags[0] != "Registry" {
		t.Errorf("tags: got %v, want [Registry]", list.Get.Tags)
	}

	if group.Routes[0].OpenAPI.Tags != nil {
		t.Error("Document should not mutate the route's operation")
	}
}

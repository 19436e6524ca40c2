package routes

import (
	"net/http"
	"slices"

	"github.com/JaimeStill/segmenter/pkg/openapi"
)

// Group organizes routes under a common prefix with shared tags.
type Group struct {
	Prefix   string
	Tags     []string
	Routes   []Route
	Children []Group
}

// Register adds all routes from the given groups to the mux.
func Register(mux *http.ServeMux, groups ...Group) {
	for _, group := range groups {
		registerGroup(mux, "", group)
	}
}

// Document adds every route carrying an OpenAPI operation to spec.
// Paths are prefixed with basePath; group tags are added to each operation.
func Document(spec *openapi.Spec, basePath string, groups ...Group) {
	for _, group := range groups {
		documentGroup(spec, basePath, nil, group)
	}
}

func registerGroup(mux *http.ServeMux, parentPrefix string, group Group) {
	fullPrefix := parentPrefix + group.Prefix
	for _, route := range group.Routes {
		pattern := route.Method + " " + fullPrefix + route.Pattern
		mux.HandleFunc(pattern, route.Handler)
	}
	for _, child := range group.Children {
		registerGroup(mux, fullPrefix, child)
	}
}

func documentGroup(spec *openapi.Spec, parentPrefix string, parentTags []string, group Group) {
	fullPrefix := parentPrefix + group.Prefix
	tags := append(slices.Clone(parentTags), group.Tags...)

	for _, route := range group.Routes {
		if route.OpenAPI == nil {
			continue
		}
		op := *route.OpenAPI
		for _, tag := range tags {
			if !slices.Contains(op.Tags, tag) {
				op.Tags = append(slices.Clone(op.Tags), tag)
			}
		}
		path := fullPrefix + route.Pattern
		if path == "" {
			path = "/"
		}
		spec.AddOperation(path, route.Method, &op)
	}
	for _, child := range group.Children {
		documentGroup(spec, fullPrefix, tags, child)
	}
}
